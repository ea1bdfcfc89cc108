package integrators

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/relsim/internal/dynamo"
)

// sqrt of float64 machine epsilon, the usual forward-difference increment.
var jacEps = math.Sqrt(2.220446049250313e-16)

// numJacobian fills dst with the forward-difference Jacobian of sys at (x, t),
// reusing f0 = sys.Derive(x, t). Returns the number of Derive calls made.
func numJacobian(sys dynamo.System, x dynamo.State, t float64, f0 dynamo.State, dst *mat.Dense) int {
	n := len(x)
	xp := x.Clone()
	for j := 0; j < n; j++ {
		h := jacEps * math.Max(math.Abs(x[j]), 1e-5)
		xp[j] = x[j] + h
		fp := sys.Derive(xp, t)
		for i := 0; i < n; i++ {
			dst.Set(i, j, (fp[i]-f0[i])/h)
		}
		xp[j] = x[j]
	}
	return n
}
