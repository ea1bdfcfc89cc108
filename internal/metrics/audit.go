package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

// Report is the outcome of a mass-conservation audit over a full trajectory.
// Violated is a finding, not an error: drift within solver tolerance is
// expected, growing drift points at the discretization or boundary policy.
type Report struct {
	Initial      float64
	Totals       []float64
	MaxDrift     float64
	MaxDriftTime float64
	Threshold    float64
	Violated     bool
}

// Audit recomputes total[t] = sum(ligand) + sum(bound) + released (in layer
// units) for every output time and compares against total[0]. This is the
// acceptance check for the whole discretization: the core must hold the total
// constant within integration tolerance.
func Audit(res *dynamo.Result, n int, delta, threshold float64) (*Report, error) {
	if len(res.States) == 0 {
		return nil, fmt.Errorf("audit of empty trajectory: %w", dynamo.ErrInvalidLength)
	}

	rep := &Report{
		Totals:    make([]float64, len(res.States)),
		Threshold: threshold,
	}

	for k, s := range res.States {
		total, err := polymer.TotalMass(s, n, delta)
		if err != nil {
			return nil, err
		}
		rep.Totals[k] = total

		if k == 0 {
			rep.Initial = total
			continue
		}
		if rep.Initial == 0 {
			continue
		}
		drift := math.Abs(total-rep.Initial) / math.Abs(rep.Initial)
		if drift > rep.MaxDrift {
			rep.MaxDrift = drift
			rep.MaxDriftTime = res.Times[k]
		}
	}

	rep.Violated = rep.MaxDrift > threshold
	return rep, nil
}
