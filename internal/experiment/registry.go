package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/integrators"
	"github.com/san-kum/relsim/internal/metrics"
	"github.com/san-kum/relsim/internal/polymer"
)

type Registry struct {
	steppers map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		steppers: make(map[string]func() dynamo.Stepper),
	}

	r.steppers["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.steppers["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }
	r.steppers["rosenbrock"] = func() dynamo.Stepper { return integrators.NewRosenbrock() }

	return r
}

func (r *Registry) GetStepper(name string) (dynamo.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return fn(), nil
}

// NewStepperFunc returns a factory for sweeps, where every goroutine needs
// its own stepper instance.
func (r *Registry) NewStepperFunc(name string) (func() dynamo.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListSteppers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics builds the standard diagnostic set for a film run.
func DefaultMetrics(f *polymer.Film) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewMassBalance(f.N, f.Delta()),
		metrics.NewReleaseMonotonic(),
		metrics.NewNegativity(),
	}
}
