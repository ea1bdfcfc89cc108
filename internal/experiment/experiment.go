package experiment

import (
	"context"

	"github.com/san-kum/relsim/internal/config"
	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
	"github.com/san-kum/relsim/internal/sim"
)

// Experiment assembles a film, a stepper and the default metrics from a
// config and runs the simulation end to end.
type Experiment struct {
	cfg       *config.Config
	film      *polymer.Film
	simulator *sim.Simulator
}

func New(cfg *config.Config) (*Experiment, error) {
	film := cfg.Film()
	if err := film.Validate(); err != nil {
		return nil, err
	}

	stepper, err := NewRegistry().GetStepper(cfg.Solver)
	if err != nil {
		return nil, err
	}

	s := sim.New(film, stepper)
	for _, m := range DefaultMetrics(film) {
		s.AddMetric(m)
	}

	return &Experiment{cfg: cfg, film: film, simulator: s}, nil
}

func (e *Experiment) Film() *polymer.Film { return e.film }

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.film.DefaultState(), e.cfg.SimConfig())
}
