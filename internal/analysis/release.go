// Package analysis derives release-kinetics quantities from a simulated
// trajectory: the cumulative release fraction curve, the half-release time
// and a Korsmeyer-Peppas power-law characterization of the early curve.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

// Fractions converts the released scalar of every output state into a
// fraction of the initial total ligand mass.
func Fractions(res *dynamo.Result, n int, delta float64) ([]float64, error) {
	if len(res.States) == 0 {
		return nil, fmt.Errorf("empty trajectory: %w", dynamo.ErrInvalidLength)
	}
	total0, err := polymer.TotalMass(res.States[0], n, delta)
	if err != nil {
		return nil, err
	}
	if total0 == 0 {
		return nil, fmt.Errorf("zero initial mass: %w", dynamo.ErrInvalidParameter)
	}

	fractions := make([]float64, len(res.States))
	for k, s := range res.States {
		released := s[len(s)-1]
		fractions[k] = 2 * released / delta / total0
	}
	return fractions, nil
}

// HalfTime interpolates the first crossing of release fraction 0.5. The
// second return is false when the curve never reaches it.
func HalfTime(times, fractions []float64) (float64, bool) {
	for k := 1; k < len(fractions); k++ {
		if fractions[k] >= 0.5 {
			f0, f1 := fractions[k-1], fractions[k]
			if f1 == f0 {
				return times[k], true
			}
			frac := (0.5 - f0) / (f1 - f0)
			return times[k-1] + frac*(times[k]-times[k-1]), true
		}
	}
	return 0, false
}

// PowerLaw is a Korsmeyer-Peppas fit f(t) = K * t^Exponent of the early
// release curve. Exponent near 0.5 indicates Fickian diffusion control;
// binding pushes it down and slows K.
type PowerLaw struct {
	K        float64
	Exponent float64
	R2       float64
}

// FitPowerLaw regresses log f against log t over the window 0 < f <= 0.6,
// where the power law is considered valid.
func FitPowerLaw(times, fractions []float64) (PowerLaw, error) {
	var logT, logF []float64
	for k := range fractions {
		if times[k] <= 0 || fractions[k] <= 0 || fractions[k] > 0.6 {
			continue
		}
		logT = append(logT, math.Log(times[k]))
		logF = append(logF, math.Log(fractions[k]))
	}
	if len(logT) < 3 {
		return PowerLaw{}, fmt.Errorf("power-law fit needs at least 3 points in (0, 0.6], got %d: %w",
			len(logT), dynamo.ErrInvalidParameter)
	}

	alpha, beta := stat.LinearRegression(logT, logF, nil, false)
	r2 := stat.RSquared(logT, logF, nil, alpha, beta)

	return PowerLaw{
		K:        math.Exp(alpha),
		Exponent: beta,
		R2:       r2,
	}, nil
}
