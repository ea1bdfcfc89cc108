package integrators

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/relsim/internal/dynamo"
)

// Rosenbrock coefficients (Shampine 2(3) pair, the ode23s scheme).
var (
	rosD   = 1.0 / (2.0 + math.Sqrt2)
	rosE32 = 6.0 + math.Sqrt2
)

// Rosenbrock is a linearly implicit second-order stepper with an embedded
// third-order error estimate. Being L-stable it handles the stiffness that
// fast binding kinetics induce without the step-size collapse an explicit
// method suffers. Each attempt costs one numerical Jacobian, one LU
// factorization and three linear solves.
type Rosenbrock struct {
	safety   float64
	minScale float64
	maxScale float64

	// MinStep bounds internal step shrinking; going below it surfaces
	// ErrStepTooSmall instead of looping forever.
	MinStep float64
	// MaxTries bounds rejected attempts within a single StepAdaptive call.
	MaxTries int

	rejected int

	jac *mat.Dense
	w   *mat.Dense
	lu  mat.LU
}

func NewRosenbrock() *Rosenbrock {
	return &Rosenbrock{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
		MinStep:  1e-14,
		MaxTries: 40,
	}
}

// Rejected reports how many trial steps the stepper has discarded since
// creation. The simulator folds it into Result.StepsRejected.
func (r *Rosenbrock) Rejected() int { return r.rejected }

func (r *Rosenbrock) ensureScratch(n int) {
	if r.jac == nil || r.jac.RawMatrix().Rows != n {
		r.jac = mat.NewDense(n, n, nil)
		r.w = mat.NewDense(n, n, nil)
	}
}

func (r *Rosenbrock) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	newX, _, _, err := r.StepAdaptive(sys, x, t, dt, 1e-6, 1e-9)
	if err != nil {
		return x.Clone()
	}
	return newX
}

// StepAdaptive attempts a step of dt, halving the trial size on every
// rejection, and advances by the first size the error estimate accepts. It
// returns the accepted state, the step actually taken, and the size to try
// next.
func (r *Rosenbrock) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt, rtol, atol float64) (dynamo.State, float64, float64, error) {
	n := len(x)
	r.ensureScratch(n)

	f0 := sys.Derive(x, t)
	numJacobian(sys, x, t, f0, r.jac)

	h := dt
	for try := 0; try < r.MaxTries; try++ {
		if h < r.MinStep {
			return nil, 0, h, dynamo.ErrStepTooSmall
		}

		// W = I - h*d*J
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				v := -h * rosD * r.jac.At(i, j)
				if i == j {
					v += 1
				}
				r.w.Set(i, j, v)
			}
		}
		r.lu.Factorize(r.w)

		k1, ok := r.solve(f0)
		if !ok {
			r.rejected++
			h *= 0.5
			continue
		}

		mid := make(dynamo.State, n)
		for i := 0; i < n; i++ {
			mid[i] = x[i] + 0.5*h*k1[i]
		}
		f1 := sys.Derive(mid, t+0.5*h)

		rhs := make(dynamo.State, n)
		for i := 0; i < n; i++ {
			rhs[i] = f1[i] - k1[i]
		}
		k2, ok := r.solve(rhs)
		if !ok {
			r.rejected++
			h *= 0.5
			continue
		}
		for i := 0; i < n; i++ {
			k2[i] += k1[i]
		}

		newX := make(dynamo.State, n)
		for i := 0; i < n; i++ {
			newX[i] = x[i] + h*k2[i]
		}
		f2 := sys.Derive(newX, t+h)

		for i := 0; i < n; i++ {
			rhs[i] = f2[i] - rosE32*(k2[i]-f1[i]) - 2*(k1[i]-f0[i])
		}
		k3, ok := r.solve(rhs)
		if !ok {
			r.rejected++
			h *= 0.5
			continue
		}

		errMax := 0.0
		for i := 0; i < n; i++ {
			est := h / 6.0 * (k1[i] - 2*k2[i] + k3[i])
			scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(newX[i]))
			errMax = math.Max(errMax, math.Abs(est)/scale)
		}

		if errMax <= 1 {
			var next float64
			if errMax == 0 {
				next = h * r.maxScale
			} else {
				next = h * math.Min(r.maxScale, math.Max(r.minScale, r.safety*math.Pow(errMax, -1.0/3.0)))
			}
			return newX, h, next, nil
		}

		r.rejected++
		h *= math.Max(r.minScale, r.safety*math.Pow(errMax, -1.0/3.0))
	}

	return nil, 0, h, dynamo.ErrIntegrationFailure
}

func (r *Rosenbrock) solve(b dynamo.State) (dynamo.State, bool) {
	out := mat.NewVecDense(len(b), nil)
	if err := r.lu.SolveVecTo(out, false, mat.NewVecDense(len(b), b)); err != nil {
		// A Condition error flags an ill-conditioned W but the solution is
		// still returned; only an exactly singular factorization is fatal.
		if _, ok := err.(mat.Condition); !ok {
			return nil, false
		}
	}
	return dynamo.State(out.RawVector().Data), true
}
