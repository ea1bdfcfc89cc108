package polymer

// DiffusionTerm computes the discrete Laplacian of the profile at layer i,
// scaled by the diffusion coefficient. Layer 0 is the symmetry center
// (no-flux, one-sided stencil); layer n-1 touches the liquid, which absorbs
// ligand instantly (implicit zero-concentration exterior neighbor).
func DiffusionTerm(profile []float64, i int, diffusion, delta float64) float64 {
	n := len(profile)
	d2 := delta * delta
	switch {
	case i == 0:
		return diffusion * (profile[1] - profile[0]) / d2
	case i == n-1:
		return diffusion * (-2*profile[n-1] + profile[n-2]) / d2
	default:
		return diffusion * (profile[i+1] - 2*profile[i] + profile[i-1]) / d2
	}
}
