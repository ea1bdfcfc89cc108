package metrics

import (
	"math"

	"github.com/san-kum/relsim/internal/dynamo"
)

// ReleaseMonotonic watches the released scalar (last state entry) and records
// the largest backwards move it ever makes. Zero means release never
// decreased.
type ReleaseMonotonic struct {
	name    string
	prev    float64
	worst   float64
	samples int
}

func NewReleaseMonotonic() *ReleaseMonotonic {
	return &ReleaseMonotonic{name: "release_backstep"}
}

func (r *ReleaseMonotonic) Name() string { return r.name }

func (r *ReleaseMonotonic) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	released := x[len(x)-1]
	if r.samples > 0 && released < r.prev {
		r.worst = math.Max(r.worst, r.prev-released)
	}
	r.prev = released
	r.samples++
}

func (r *ReleaseMonotonic) Value() float64 { return r.worst }

func (r *ReleaseMonotonic) Reset() {
	r.prev = 0
	r.worst = 0
	r.samples = 0
}

// Negativity records the most negative concentration seen across both
// profiles. Small negative excursions are solver noise; large ones flag a
// discretization or tolerance problem.
type Negativity struct {
	name string
	min  float64
}

func NewNegativity() *Negativity {
	return &Negativity{name: "min_concentration"}
}

func (n *Negativity) Name() string { return n.name }

func (n *Negativity) Observe(x dynamo.State, t float64) {
	// Last entry is the released scalar, not a concentration.
	for _, v := range x[:len(x)-1] {
		if v < n.min {
			n.min = v
		}
	}
}

func (n *Negativity) Value() float64 { return n.min }

func (n *Negativity) Reset() { n.min = 0 }
