package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

func TestFractions(t *testing.T) {
	n := 4
	delta := 1.0 / float64(n)

	res := &dynamo.Result{
		Times: []float64{0, 1},
		States: []dynamo.State{
			polymer.Pack([]float64{1, 1, 1, 1}, []float64{0, 0, 0, 0}, 0),
			polymer.Pack([]float64{1, 1, 0, 0}, []float64{0, 0, 0, 0}, delta),
		},
	}

	fractions, err := Fractions(res, n, delta)
	if err != nil {
		t.Fatalf("fractions failed: %v", err)
	}

	if fractions[0] != 0 {
		t.Errorf("expected initial fraction 0, got %g", fractions[0])
	}
	// released=delta is two layer units out of four initial.
	if math.Abs(fractions[1]-0.5) > 1e-12 {
		t.Errorf("expected fraction 0.5, got %g", fractions[1])
	}
}

func TestFractionsEmpty(t *testing.T) {
	if _, err := Fractions(&dynamo.Result{}, 4, 0.25); err == nil {
		t.Error("expected error for empty trajectory")
	}
}

func TestHalfTime(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	fractions := []float64{0, 0.25, 0.75, 0.9}

	ht, ok := HalfTime(times, fractions)
	if !ok {
		t.Fatal("expected a half-time")
	}
	// Linear interpolation between (1, 0.25) and (2, 0.75).
	if math.Abs(ht-1.5) > 1e-12 {
		t.Errorf("expected half-time 1.5, got %g", ht)
	}
}

func TestHalfTimeNeverReached(t *testing.T) {
	if _, ok := HalfTime([]float64{0, 1}, []float64{0, 0.4}); ok {
		t.Error("curve below 0.5 should report no half-time")
	}
}

func TestFitPowerLawRecoversExponent(t *testing.T) {
	// f(t) = 0.3 * t^0.5 sampled well inside the fit window.
	var times, fractions []float64
	for i := 1; i <= 40; i++ {
		tm := float64(i) * 0.05
		times = append(times, tm)
		fractions = append(fractions, 0.3*math.Sqrt(tm))
	}

	fit, err := FitPowerLaw(times, fractions)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if math.Abs(fit.K-0.3) > 1e-6 {
		t.Errorf("expected K=0.3, got %g", fit.K)
	}
	if math.Abs(fit.Exponent-0.5) > 1e-6 {
		t.Errorf("expected exponent 0.5, got %g", fit.Exponent)
	}
	if fit.R2 < 0.999999 {
		t.Errorf("exact power law should fit perfectly, R2=%g", fit.R2)
	}
}

func TestFitPowerLawIgnoresLateCurve(t *testing.T) {
	// Power law early, saturation later; the window must cut the plateau off.
	var times, fractions []float64
	for i := 1; i <= 100; i++ {
		tm := float64(i) * 0.05
		f := 0.4 * math.Sqrt(tm)
		if f > 0.95 {
			f = 0.95
		}
		times = append(times, tm)
		fractions = append(fractions, f)
	}

	fit, err := FitPowerLaw(times, fractions)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(fit.Exponent-0.5) > 1e-6 {
		t.Errorf("plateau leaked into the fit window: exponent %g", fit.Exponent)
	}
}

func TestFitPowerLawTooFewPoints(t *testing.T) {
	if _, err := FitPowerLaw([]float64{0, 1}, []float64{0, 0.9}); err == nil {
		t.Error("expected error with too few points in the window")
	}
}
