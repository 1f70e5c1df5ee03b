package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/fsutil"
)

// RoundTripFunc loads markdown into a fresh editing surface and returns
// the Markdown serialized back from it. It is called from several
// goroutines at once.
type RoundTripFunc func(ctx context.Context, markdown string) (string, error)

// Runner checks that documents survive a round trip through the editor.
type Runner struct {
	roundTrip RoundTripFunc
}

// New creates a Runner around roundTrip.
func New(roundTrip RoundTripFunc) *Runner {
	return &Runner{roundTrip: roundTrip}
}

// Run discovers the documents opts selects and checks them with a pool of
// workers. Outcomes are returned in discovery order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logging.FromContext(ctx).Debug("checking documents",
		logging.FieldFiles, len(files),
		logging.FieldJobs, jobs)

	workCh := make(chan int)
	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				outcomes[i] = r.check(ctx, files[i])
				done[i] = true
			}
		}()
	}

	go func() {
		defer close(workCh)
		for i := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- i:
			}
		}
	}()
	wg.Wait()

	for i, outcome := range outcomes {
		if done[i] {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func (r *Runner) check(ctx context.Context, path string) FileOutcome {
	outcome := FileOutcome{Path: path}

	content, _, err := fsutil.Open(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	got, err := r.roundTrip(ctx, string(content))
	if err != nil {
		outcome.Error = fmt.Errorf("round trip %s: %w", path, err)
		return outcome
	}

	outcome.Drift = compare(string(content), got)
	if outcome.Drift != nil {
		logging.FromContext(ctx).Debug("round trip drift",
			logging.FieldPath, path,
			logging.FieldLine, outcome.Drift.Line)
	}
	return outcome
}
