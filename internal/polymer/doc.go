// Package polymer implements the method-of-lines model of ligand diffusion
// and reversible host binding inside a thin cylindrical polymer matrix.
//
// The axial coordinate is discretized into N layers; [Film] turns the
// diffusion-reaction PDE into an ODE system of dimension 2N+1 that the
// steppers in internal/integrators advance. [Pack] and [Unpack] translate
// between named fields and the flat state vector, [BindingRate] and
// [DiffusionTerm] are the two pure building blocks [Film.Derive] composes.
package polymer
