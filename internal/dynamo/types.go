package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous ODE system dX/dt = f(X, t). Derive must be a pure
// function of its arguments: adaptive steppers evaluate it at trial states
// that may later be rejected.
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

type Stepper interface {
	Step(sys System, x State, t float64, dt float64) State
}

// AdaptiveStepper attempts a step of at most dt, shrinking the trial size
// until the local error estimate meets rtol/atol. It reports the step size it
// actually advanced and the size it wants for the next attempt, and returns
// ErrStepTooSmall when the trial size collapses below the stepper minimum.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(sys System, x State, t, dt, rtol, atol float64) (newX State, used, next float64, err error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	OutputDt      float64
	Duration      float64
	InitialDt     float64
	RelTol        float64
	AbsTol        float64
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		OutputDt:      0.02,
		Duration:      2.0,
		InitialDt:     1e-4,
		RelTol:        1e-6,
		AbsTol:        1e-9,
		MaxSteps:      200000,
		ValidateState: true,
	}
}

// Result holds the trajectory at the requested output times. DerivEvals counts
// calls to System.Derive over the whole invocation, including rejected trial
// steps; it belongs to the run, not to the system.
type Result struct {
	Times         []float64
	States        []State
	Metrics       map[string]float64
	DerivEvals    int
	StepsTaken    int
	StepsRejected int
}

// SolveError reports where an integration stopped. State is the last state the
// solver accepted, so a caller can inspect or resume from it.
type SolveError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
