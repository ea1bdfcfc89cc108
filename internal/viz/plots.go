// Package viz renders trajectories in the terminal: asciigraph line plots
// for curves and a braille canvas for the space-time release map.
package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// ReleaseCurve renders the cumulative release fraction over time.
func ReleaseCurve(fractions []float64, height int) string {
	if len(fractions) == 0 {
		return ""
	}
	return asciigraph.Plot(fractions,
		asciigraph.Height(height),
		asciigraph.Width(80),
		asciigraph.Caption("release fraction over output times"),
	)
}

// Profile renders one concentration profile from center to interface.
func Profile(values []float64, name string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s (center -> interface)", name)),
	)
}
