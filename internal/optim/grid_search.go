// Package optim fits model parameters to measured release data by exhaustive
// grid search. The search space is tiny (two parameters, tens of candidates)
// and every evaluation is a full stiff integration, so anything cleverer than
// a grid buys nothing.
package optim

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/relsim/internal/analysis"
	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
	"github.com/san-kum/relsim/internal/sim"
)

// Observation is one measured point of the cumulative release curve.
type Observation struct {
	Time     float64
	Fraction float64
}

// LoadObservations reads a two-column CSV (time, release fraction). A header
// row is skipped when its first cell does not parse as a number.
func LoadObservations(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var obs []Observation
	for k, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: want 2 columns, got %d", k+1, len(row))
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			if k == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", k+1, err)
		}
		frac, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", k+1, err)
		}
		obs = append(obs, Observation{Time: t, Fraction: frac})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observations in %s", path)
	}
	return obs, nil
}

// GridSearch enumerates candidate (binding, diffusion) pairs.
type GridSearch struct {
	Bindings   []float64
	Diffusions []float64
}

// FitResult is the best candidate found and its root-mean-square error
// against the observations.
type FitResult struct {
	Binding   float64
	Diffusion float64
	RMSE      float64
}

// Fit simulates every candidate pair on a copy of the base film and returns
// the one whose release curve is closest to the observations.
func (g *GridSearch) Fit(ctx context.Context, base *polymer.Film, cfg dynamo.Config,
	newStepper func() dynamo.Stepper, obs []Observation) (*FitResult, error) {

	if len(g.Bindings) == 0 || len(g.Diffusions) == 0 {
		return nil, fmt.Errorf("empty search grid: %w", dynamo.ErrInvalidParameter)
	}

	best := &FitResult{RMSE: math.Inf(1)}
	var lastErr error

	for _, binding := range g.Bindings {
		for _, diffusion := range g.Diffusions {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			film := *base
			film.Binding = binding
			film.Diffusion = diffusion
			if err := film.Validate(); err != nil {
				return nil, err
			}

			s := sim.New(&film, newStepper())
			res, err := s.Run(ctx, film.DefaultState(), cfg)
			if err != nil {
				lastErr = err
				continue
			}

			rmse, err := g.score(res, &film, obs)
			if err != nil {
				lastErr = err
				continue
			}

			if rmse < best.RMSE {
				best.Binding = binding
				best.Diffusion = diffusion
				best.RMSE = rmse
			}
		}
	}

	if math.IsInf(best.RMSE, 1) {
		if lastErr != nil {
			return nil, fmt.Errorf("no candidate succeeded: %w", lastErr)
		}
		return nil, fmt.Errorf("no candidate succeeded")
	}
	return best, nil
}

func (g *GridSearch) score(res *dynamo.Result, film *polymer.Film, obs []Observation) (float64, error) {
	fractions, err := analysis.Fractions(res, film.N, film.Delta())
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, o := range obs {
		diff := interpolate(res.Times, fractions, o.Time) - o.Fraction
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(obs))), nil
}

// interpolate evaluates the piecewise-linear curve at t, clamping outside the
// simulated range.
func interpolate(times, values []float64, t float64) float64 {
	if t <= times[0] {
		return values[0]
	}
	for k := 1; k < len(times); k++ {
		if t <= times[k] {
			frac := (t - times[k-1]) / (times[k] - times[k-1])
			return values[k-1] + frac*(values[k]-values[k-1])
		}
	}
	return values[len(values)-1]
}
