package polymer

// BindingRate computes the net forward-minus-reverse binding flux at one
// layer: binding*ligand*(capacity-bound) - bound. Positive rate moves free
// ligand into the bound complex at the same layer; there is no spatial
// coupling in the reaction term.
func BindingRate(ligand, bound, binding, capacity float64) float64 {
	return binding*ligand*(capacity-bound) - bound
}

// EquilibriumBound returns the bound concentration at which BindingRate
// vanishes for a given free ligand level.
func EquilibriumBound(ligand, binding, capacity float64) float64 {
	if binding == 0 {
		return 0
	}
	return binding * ligand * capacity / (1 + binding*ligand)
}
