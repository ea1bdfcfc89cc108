package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidLength indicates a state vector whose length does not match
	// the 2N+1 layout the model expects.
	ErrInvalidLength = errors.New("dynamo: state vector length mismatch")

	// ErrInvalidParameter indicates a model or solver parameter outside its
	// valid range.
	ErrInvalidParameter = errors.New("dynamo: parameter out of valid bounds")

	// ErrIntegrationFailure indicates the solver could not reach the requested
	// time within its tolerance and step budget.
	ErrIntegrationFailure = errors.New("dynamo: integration failed to converge")

	// ErrStepTooSmall indicates the adaptive step size collapsed below the
	// solver minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive step below minimum")

	// ErrInvalidState indicates NaN or Inf appeared in the state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates the initial state does not match the
	// system dimension.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)
