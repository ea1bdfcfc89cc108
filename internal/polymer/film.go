package polymer

import (
	"fmt"

	"github.com/san-kum/relsim/internal/dynamo"
)

// Film models axial transport through a thin cylindrical polymer matrix
// loaded with ligand and an immobile host. Free ligand diffuses between N
// layers and binds reversibly to the host; the complex never moves. Layer 0
// sits at the symmetry center, layer N-1 at the liquid interface, where
// escaping ligand accumulates into the released scalar.
//
// State layout: [ligand(0..N-1), bound(0..N-1), released], length 2N+1.
type Film struct {
	N         int
	Binding   float64 // dimensionless association strength (p1)
	Diffusion float64 // dimensionless diffusion coefficient (p2)
	Capacity  float64 // dimensionless host capacity (p3)
	Loading   float64 // initial free ligand concentration per layer

	// BoundaryReaction enables binding kinetics at the interface layer. The
	// reference model keeps the interface reaction-free; the switch exists so
	// the mass audit can separate that boundary policy from genuine
	// discretization drift.
	BoundaryReaction bool
}

func NewFilm(n int) *Film {
	if n < 3 {
		n = 3
	}
	return &Film{
		N:         n,
		Binding:   4.0,
		Diffusion: 1.0,
		Capacity:  2.0,
		Loading:   1.0,
	}
}

func (f *Film) Dim() int { return 2*f.N + 1 }

// Delta is the layer spacing of the unit-length half-thickness.
func (f *Film) Delta() float64 { return 1.0 / float64(f.N) }

func (f *Film) Validate() error {
	switch {
	case f.N < 3:
		return fmt.Errorf("layers %d, need at least 3: %w", f.N, dynamo.ErrInvalidParameter)
	case f.Diffusion <= 0:
		return fmt.Errorf("diffusion %g, must be positive: %w", f.Diffusion, dynamo.ErrInvalidParameter)
	case f.Binding < 0:
		return fmt.Errorf("binding %g, must be non-negative: %w", f.Binding, dynamo.ErrInvalidParameter)
	case f.Capacity < 0:
		return fmt.Errorf("capacity %g, must be non-negative: %w", f.Capacity, dynamo.ErrInvalidParameter)
	case f.Loading < 0:
		return fmt.Errorf("loading %g, must be non-negative: %w", f.Loading, dynamo.ErrInvalidParameter)
	}
	return nil
}

// Derive composes the diffusion and reaction terms into the full time
// derivative. Free ligand loses what the reaction binds, the complex gains
// it, and the released scalar integrates the flux leaving the outermost
// control volume (the half factor accounts for the interface half-cell).
func (f *Film) Derive(x dynamo.State, _ float64) dynamo.State {
	n := f.N
	d := make(dynamo.State, 2*n+1)
	ligand, bound, _, err := Unpack(x, n)
	if err != nil {
		return d
	}
	delta := f.Delta()

	for i := 0; i < n; i++ {
		rate := 0.0
		if i < n-1 || f.BoundaryReaction {
			rate = BindingRate(ligand[i], bound[i], f.Binding, f.Capacity)
		}
		d[i] = DiffusionTerm(ligand, i, f.Diffusion, delta) - rate
		d[n+i] = rate
	}
	d[2*n] = -0.5 * f.Diffusion * (ligand[n-1] - ligand[n-2]) / delta
	return d
}

// DefaultState loads every layer uniformly with free ligand except the
// interface layer, which starts drained, and puts the complex at binding
// equilibrium with the loading concentration.
func (f *Film) DefaultState() dynamo.State {
	ligand := make([]float64, f.N)
	bound := make([]float64, f.N)
	eq := EquilibriumBound(f.Loading, f.Binding, f.Capacity)
	for i := 0; i < f.N; i++ {
		ligand[i] = f.Loading
		bound[i] = eq
	}
	ligand[f.N-1] = 0
	return Pack(ligand, bound, 0)
}

func (f *Film) GetParams() map[string]float64 {
	return map[string]float64{
		"binding":   f.Binding,
		"diffusion": f.Diffusion,
		"capacity":  f.Capacity,
		"loading":   f.Loading,
	}
}

func (f *Film) SetParam(name string, v float64) error {
	switch name {
	case "binding":
		f.Binding = v
	case "diffusion":
		f.Diffusion = v
	case "capacity":
		f.Capacity = v
	case "loading":
		f.Loading = v
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}
