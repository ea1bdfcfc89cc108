package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

const (
	DefaultLayers    = 60
	DefaultBinding   = 4.0
	DefaultDiffusion = 1.0
	DefaultCapacity  = 2.0
	DefaultLoading   = 1.0
	DefaultDuration  = 2.0
	DefaultOutputDt  = 0.02
	DefaultSolver    = "rosenbrock"
	DefaultRelTol    = 1e-6
	DefaultAbsTol    = 1e-9
	DefaultMaxSteps  = 200000
	DefaultThreshold = 1e-3
)

type Config struct {
	Layers           int     `yaml:"layers"`
	Binding          float64 `yaml:"binding"`
	Diffusion        float64 `yaml:"diffusion"`
	Capacity         float64 `yaml:"capacity"`
	Loading          float64 `yaml:"loading"`
	BoundaryReaction bool    `yaml:"boundary_reaction"`

	Duration float64 `yaml:"duration"`
	OutputDt float64 `yaml:"output_dt"`
	Solver   string  `yaml:"solver"`
	RelTol   float64 `yaml:"rel_tol"`
	AbsTol   float64 `yaml:"abs_tol"`
	MaxSteps int     `yaml:"max_steps"`

	// DriftThreshold is the relative mass drift above which the conservation
	// audit reports a violation.
	DriftThreshold float64 `yaml:"drift_threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Layers:         DefaultLayers,
		Binding:        DefaultBinding,
		Diffusion:      DefaultDiffusion,
		Capacity:       DefaultCapacity,
		Loading:        DefaultLoading,
		Duration:       DefaultDuration,
		OutputDt:       DefaultOutputDt,
		Solver:         DefaultSolver,
		RelTol:         DefaultRelTol,
		AbsTol:         DefaultAbsTol,
		MaxSteps:       DefaultMaxSteps,
		DriftThreshold: DefaultThreshold,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Film builds the polymer model this config describes.
func (c *Config) Film() *polymer.Film {
	f := polymer.NewFilm(c.Layers)
	f.Binding = c.Binding
	f.Diffusion = c.Diffusion
	f.Capacity = c.Capacity
	f.Loading = c.Loading
	f.BoundaryReaction = c.BoundaryReaction
	return f
}

// SimConfig translates the run section into solver settings.
func (c *Config) SimConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.Duration = c.Duration
	sc.OutputDt = c.OutputDt
	sc.RelTol = c.RelTol
	sc.AbsTol = c.AbsTol
	sc.MaxSteps = c.MaxSteps
	return sc
}
