package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReleaseChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.png")

	times := []float64{0, 0.5, 1, 1.5, 2}
	fractions := []float64{0, 0.3, 0.5, 0.6, 0.65}
	if err := ReleaseChart(path, times, fractions); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty PNG")
	}
}

func TestReleaseChartTooFewPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.png")
	if err := ReleaseChart(path, []float64{0}, []float64{0}); err == nil {
		t.Error("expected error for a single point")
	}
}

func TestProfileChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.png")

	ligand := []float64{1, 0.8, 0.4, 0.1}
	bound := []float64{1.6, 1.5, 1.1, 0.5}
	if err := ProfileChart(path, ligand, bound); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty PNG")
	}
}

func TestProfileChartMismatchedProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.png")
	if err := ProfileChart(path, []float64{1, 2, 3}, []float64{1}); err == nil {
		t.Error("expected error for mismatched profile lengths")
	}
}
