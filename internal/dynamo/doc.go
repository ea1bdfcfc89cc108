// Package dynamo provides core simulation primitives for ODE systems.
//
// The package defines the fundamental interfaces and types used across the
// release simulator:
//
//   - [State]: flat vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Stepper] and [AdaptiveStepper]: numerical integrator interfaces
//   - [Metric]: streaming diagnostics observed along a trajectory
//   - [Result]: trajectory at the requested output times plus run counters
//
// # Example
//
//	film := polymer.NewFilm(60)
//	stepper := integrators.NewRosenbrock()
//	s := sim.New(film, stepper)
//	result, _ := s.Run(ctx, film.DefaultState(), cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parameter sweeps use
// [github.com/san-kum/relsim/internal/sim.RunSweep], which gives every run its
// own simulator and stepper.
package dynamo
