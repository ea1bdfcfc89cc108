// Package export renders simulation results to PNG charts.
package export

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
)

// ReleaseChart plots the cumulative release fraction against time.
func ReleaseChart(path string, times, fractions []float64) error {
	if len(times) < 2 {
		return fmt.Errorf("release chart needs at least 2 points, got %d", len(times))
	}

	graph := chart.Chart{
		Title:  "cumulative release",
		XAxis:  chart.XAxis{Name: "dimensionless time"},
		YAxis:  chart.YAxis{Name: "release fraction"},
		Width:  900,
		Height: 500,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "released",
				XValues: times,
				YValues: fractions,
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.Render(chart.PNG, f)
}

// ProfileChart plots the free and bound concentration profiles across the
// matrix depth (0 = symmetry center, 1 = liquid interface).
func ProfileChart(path string, ligand, bound []float64) error {
	n := len(ligand)
	if n < 2 || len(bound) != n {
		return fmt.Errorf("profile chart needs matching profiles of at least 2 layers")
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n-1)
	}

	graph := chart.Chart{
		Title:  "concentration profiles",
		XAxis:  chart.XAxis{Name: "depth (center to interface)"},
		YAxis:  chart.YAxis{Name: "concentration"},
		Width:  900,
		Height: 500,
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "free ligand", XValues: xs, YValues: ligand},
			chart.ContinuousSeries{Name: "bound complex", XValues: xs, YValues: bound},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.Render(chart.PNG, f)
}
