package metrics

import (
	"math"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

// MassBalance tracks the worst relative deviation of total ligand mass
// (free + bound + released) from its initial value as the trajectory streams
// by. It is the online companion of the Audit function.
type MassBalance struct {
	name     string
	n        int
	delta    float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassBalance(n int, delta float64) *MassBalance {
	return &MassBalance{
		name:  "mass_drift",
		n:     n,
		delta: delta,
	}
}

func (m *MassBalance) Name() string { return m.name }

func (m *MassBalance) Observe(x dynamo.State, t float64) {
	total, err := polymer.TotalMass(x, m.n, m.delta)
	if err != nil {
		return
	}

	if m.samples == 0 {
		m.initial = total
	}
	m.samples++

	if m.initial != 0 {
		drift := math.Abs(total-m.initial) / math.Abs(m.initial)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassBalance) Value() float64 {
	return m.maxDrift
}

func (m *MassBalance) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
