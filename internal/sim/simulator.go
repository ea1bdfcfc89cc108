package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/relsim/internal/dynamo"
)

// Simulator advances a system through an evenly spaced sequence of output
// times, taking as many internal steps between them as the stepper needs.
type Simulator struct {
	sys       dynamo.System
	stepper   dynamo.Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(sys dynamo.System, stepper dynamo.Stepper) *Simulator {
	return &Simulator{
		sys:       sys,
		stepper:   stepper,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// countingSystem wraps a system so the run owns its evaluation counter.
type countingSystem struct {
	sys   dynamo.System
	evals *int
}

func (c countingSystem) Derive(x dynamo.State, t float64) dynamo.State {
	*c.evals++
	return c.sys.Derive(x, t)
}

func (c countingSystem) Dim() int { return c.sys.Dim() }

// Run integrates from t=0 to cfg.Duration, recording the state at every
// multiple of cfg.OutputDt. On failure the returned Result still holds the
// trajectory up to the last reached output time, and the error wraps a
// SolveError carrying the last accepted state.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.Dim() {
		return nil, fmt.Errorf("initial state length %d, system dimension %d: %w",
			len(x0), s.sys.Dim(), dynamo.ErrDimensionMismatch)
	}

	outputs := int(cfg.Duration/cfg.OutputDt + 0.5)
	result := &dynamo.Result{
		Times:   make([]float64, 0, outputs+1),
		States:  make([]dynamo.State, 0, outputs+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	sys := countingSystem{sys: s.sys, evals: &result.DerivEvals}
	adaptive, isAdaptive := s.stepper.(dynamo.AdaptiveStepper)

	// Fixed-step methods march at InitialDt; adaptive ones treat it as the
	// first trial size only.
	x := x0.Clone()
	t := 0.0
	dt := cfg.InitialDt

	s.record(result, x, t)

	for k := 1; k <= outputs; k++ {
		target := float64(k) * cfg.OutputDt

		for t < target-1e-12*cfg.OutputDt {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			if result.StepsTaken >= cfg.MaxSteps {
				return result, &dynamo.SolveError{
					Step: result.StepsTaken, Time: t, State: x,
					Wrapped: fmt.Errorf("step budget %d exhausted: %w", cfg.MaxSteps, dynamo.ErrIntegrationFailure),
				}
			}

			var newX dynamo.State
			if isAdaptive {
				try := dt
				if t+try > target {
					try = target - t
				}
				var used float64
				var err error
				newX, used, dt, err = adaptive.StepAdaptive(sys, x, t, try, cfg.RelTol, cfg.AbsTol)
				if err != nil {
					return result, &dynamo.SolveError{Step: result.StepsTaken, Time: t, State: x, Wrapped: err}
				}
				t += used
			} else {
				step := dt
				if t+step > target {
					step = target - t
				}
				newX = s.stepper.Step(sys, x, t, step)
				t += step
			}

			if cfg.ValidateState && !newX.IsValid() {
				return result, &dynamo.SolveError{Step: result.StepsTaken, Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
			}

			x = newX
			result.StepsTaken++
		}

		t = target
		s.record(result, x, t)
	}

	if rj, ok := s.stepper.(interface{ Rejected() int }); ok {
		result.StepsRejected = rj.Rejected()
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback integrates like Run but hands every output point to the
// callback instead of retaining a trajectory. Returning false stops the run
// without error.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(x dynamo.State, t float64) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := false
	sub := New(s.sys, s.stepper)
	sub.AddObserver(callbackObserver{fn: func(x dynamo.State, t float64) {
		if !callback(x, t) {
			stopped = true
			cancel()
		}
	}})

	if _, err := sub.Run(ctx, x0, cfg); err != nil {
		if stopped && errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

type callbackObserver struct {
	fn func(x dynamo.State, t float64)
}

func (o callbackObserver) OnStep(x dynamo.State, t float64) {
	o.fn(x, t)
}

func (s *Simulator) record(result *dynamo.Result, x dynamo.State, t float64) {
	result.Times = append(result.Times, t)
	result.States = append(result.States, x.Clone())
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	switch {
	case cfg.OutputDt <= 0:
		return fmt.Errorf("output dt %g, must be positive: %w", cfg.OutputDt, dynamo.ErrInvalidParameter)
	case cfg.Duration <= 0:
		return fmt.Errorf("duration %g, must be positive: %w", cfg.Duration, dynamo.ErrInvalidParameter)
	case cfg.InitialDt <= 0:
		return fmt.Errorf("initial dt %g, must be positive: %w", cfg.InitialDt, dynamo.ErrInvalidParameter)
	case cfg.RelTol <= 0 || cfg.AbsTol <= 0:
		return fmt.Errorf("tolerances rel=%g abs=%g, must be positive: %w", cfg.RelTol, cfg.AbsTol, dynamo.ErrInvalidParameter)
	case cfg.MaxSteps <= 0:
		return fmt.Errorf("step budget %d, must be positive: %w", cfg.MaxSteps, dynamo.ErrInvalidParameter)
	}
	return nil
}
