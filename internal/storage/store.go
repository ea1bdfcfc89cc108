package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/relsim/internal/config"
	"github.com/san-kum/relsim/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string             `json:"id"`
	Timestamp        time.Time          `json:"timestamp"`
	Layers           int                `json:"layers"`
	Binding          float64            `json:"binding"`
	Diffusion        float64            `json:"diffusion"`
	Capacity         float64            `json:"capacity"`
	Loading          float64            `json:"loading"`
	BoundaryReaction bool               `json:"boundary_reaction"`
	Duration         float64            `json:"duration"`
	OutputDt         float64            `json:"output_dt"`
	Solver           string             `json:"solver"`
	DerivEvals       int                `json:"deriv_evals"`
	StepsTaken       int                `json:"steps_taken"`
	StepsRejected    int                `json:"steps_rejected"`
	Metrics          map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and states.csv. The CSV
// columns are time, l0..l{N-1}, c0..c{N-1}, released.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:               runID,
		Timestamp:        time.Now(),
		Layers:           cfg.Layers,
		Binding:          cfg.Binding,
		Diffusion:        cfg.Diffusion,
		Capacity:         cfg.Capacity,
		Loading:          cfg.Loading,
		BoundaryReaction: cfg.BoundaryReaction,
		Duration:         cfg.Duration,
		OutputDt:         cfg.OutputDt,
		Solver:           cfg.Solver,
		DerivEvals:       result.DerivEvals,
		StepsTaken:       result.StepsTaken,
		StepsRejected:    result.StepsRejected,
		Metrics:          result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.States) == 0 {
		return runID, nil
	}

	n := cfg.Layers
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("l%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("c%d", i))
	}
	header = append(header, "released")
	if err := w.Write(header); err != nil {
		return "", err
	}

	row := make([]string, 0, len(header))
	for k, state := range result.States {
		row = row[:0]
		row = append(row, strconv.FormatFloat(result.Times[k], 'g', -1, 64))
		for _, v := range state {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads a run's trajectory back from states.csv.
func (s *Store) LoadStates(runID string) (*dynamo.Result, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("run %s has no recorded states", runID)
	}

	result := &dynamo.Result{
		Times:  make([]float64, 0, len(rows)-1),
		States: make([]dynamo.State, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, err
		}
		state := make(dynamo.State, len(row)-1)
		for i, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, err
			}
			state[i] = v
		}
		result.Times = append(result.Times, t)
		result.States = append(result.States, state)
	}

	return result, nil
}
