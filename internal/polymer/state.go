package polymer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/relsim/internal/dynamo"
)

// Pack lays out the three physical fields as [ligand(0..n-1), bound(0..n-1),
// released]. The returned state owns its backing array.
func Pack(ligand, bound []float64, released float64) dynamo.State {
	n := len(ligand)
	s := make(dynamo.State, 2*n+1)
	copy(s[:n], ligand)
	copy(s[n:2*n], bound)
	s[2*n] = released
	return s
}

// Unpack recovers the free ligand profile, the bound complex profile and the
// released scalar from a flat state vector. The returned slices alias s;
// callers that mutate them mutate the state.
func Unpack(s dynamo.State, n int) (ligand, bound []float64, released float64, err error) {
	if len(s) != 2*n+1 {
		return nil, nil, 0, fmt.Errorf("unpack state of length %d, want %d: %w", len(s), 2*n+1, dynamo.ErrInvalidLength)
	}
	return s[:n], s[n : 2*n], s[2*n], nil
}

// TotalMass sums free and bound ligand over all layers plus the released
// amount converted to per-layer concentration units. The released scalar
// accumulates flux across the interface half-cell, so expressing it in layer
// units carries a factor 2/delta.
func TotalMass(s dynamo.State, n int, delta float64) (float64, error) {
	ligand, bound, released, err := Unpack(s, n)
	if err != nil {
		return 0, err
	}
	return floats.Sum(ligand) + floats.Sum(bound) + 2*released/delta, nil
}
