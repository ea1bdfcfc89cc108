package optim

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/relsim/internal/analysis"
	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/integrators"
	"github.com/san-kum/relsim/internal/polymer"
	"github.com/san-kum/relsim/internal/sim"
)

func TestLoadObservations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	content := "time,fraction\n0.1,0.05\n0.5,0.3\n1.0,0.55\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	obs, err := LoadObservations(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(obs))
	}
	if obs[1].Time != 0.5 || obs[1].Fraction != 0.3 {
		t.Errorf("unexpected observation: %+v", obs[1])
	}
}

func TestLoadObservationsNoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte("0.1,0.05\n0.5,0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	obs, err := LoadObservations(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(obs) != 2 {
		t.Errorf("expected 2 observations, got %d", len(obs))
	}
}

func TestLoadObservationsBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte("0.1,0.05\nnope,0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadObservations(path); err == nil {
		t.Error("expected error for unparseable row")
	}
}

func TestLoadObservationsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte("time,fraction\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadObservations(path); err == nil {
		t.Error("expected error for empty data")
	}
}

func fitConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Duration = 1.0
	cfg.OutputDt = 0.05
	return cfg
}

func newStepper() dynamo.Stepper { return integrators.NewRosenbrock() }

func TestFitRecoversBinding(t *testing.T) {
	truth := polymer.NewFilm(8)
	truth.Binding = 4.0

	// Synthesize observations from the true film.
	s := sim.New(truth, newStepper())
	res, err := s.Run(context.Background(), truth.DefaultState(), fitConfig())
	if err != nil {
		t.Fatalf("reference run failed: %v", err)
	}
	fractions, err := analysis.Fractions(res, truth.N, truth.Delta())
	if err != nil {
		t.Fatal(err)
	}
	var obs []Observation
	for k := 2; k < len(res.Times); k += 4 {
		obs = append(obs, Observation{Time: res.Times[k], Fraction: fractions[k]})
	}

	search := &GridSearch{
		Bindings:   []float64{0.5, 4.0, 16.0},
		Diffusions: []float64{1.0},
	}
	fit, err := search.Fit(context.Background(), polymer.NewFilm(8), fitConfig(), newStepper, obs)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if fit.Binding != 4.0 {
		t.Errorf("expected binding 4.0, got %g (rmse %g)", fit.Binding, fit.RMSE)
	}
	if fit.RMSE > 1e-3 {
		t.Errorf("matching candidate should fit tightly, rmse %g", fit.RMSE)
	}
}

func TestFitEmptyGrid(t *testing.T) {
	search := &GridSearch{}
	if _, err := search.Fit(context.Background(), polymer.NewFilm(8), fitConfig(), newStepper, nil); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestFitRejectsInvalidCandidate(t *testing.T) {
	search := &GridSearch{Bindings: []float64{-1}, Diffusions: []float64{1}}
	if _, err := search.Fit(context.Background(), polymer.NewFilm(8), fitConfig(), newStepper, nil); err == nil {
		t.Error("expected error for invalid candidate parameters")
	}
}

func TestInterpolate(t *testing.T) {
	times := []float64{0, 1, 2}
	values := []float64{0, 10, 20}

	if v := interpolate(times, values, 0.5); v != 5 {
		t.Errorf("expected 5, got %g", v)
	}
	if v := interpolate(times, values, -1); v != 0 {
		t.Errorf("clamp below: expected 0, got %g", v)
	}
	if v := interpolate(times, values, 5); v != 20 {
		t.Errorf("clamp above: expected 20, got %g", v)
	}
}
