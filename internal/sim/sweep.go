package sim

import (
	"context"
	"sync"

	"github.com/san-kum/relsim/internal/dynamo"
)

// Variant is one member of a parameter sweep: its own system and initial
// state. Systems must not be shared between variants; each run mutates
// nothing but steppers carry scratch buffers.
type Variant struct {
	Name string
	Sys  dynamo.System
	X0   dynamo.State
}

type SweepResult struct {
	Name   string
	Result *dynamo.Result
	Err    error
}

// RunSweep integrates every variant concurrently under a shared config. Each
// goroutine gets a fresh stepper from newStepper and fresh metrics from
// newMetrics (either may be nil-safe factories returning nil slices). The
// returned slice preserves variant order; per-variant failures land in the
// corresponding SweepResult rather than aborting the sweep.
func RunSweep(ctx context.Context, variants []Variant, cfg dynamo.Config,
	newStepper func() dynamo.Stepper, newMetrics func(v Variant) []dynamo.Metric) []SweepResult {

	results := make([]SweepResult, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(idx int, v Variant) {
			defer wg.Done()

			s := New(v.Sys, newStepper())
			if newMetrics != nil {
				for _, m := range newMetrics(v) {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, v.X0, cfg)
			results[idx] = SweepResult{Name: v.Name, Result: res, Err: err}
		}(i, v)
	}
	wg.Wait()

	return results
}
