package compiler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Job is one input file and the target it compiles to.
type Job struct {
	Input  string
	Output string
	Force  bool
}

func (j Job) String() string {
	return fmt.Sprintf("%s -> %s", j.Input, j.Output)
}

// BatchResult summarizes a CompileAll run.
type BatchResult struct {
	// Written counts the targets that were regenerated.
	Written int
	// Skipped counts the targets that were already up to date.
	Skipped int
	// Failed counts the jobs that returned an error.
	Failed int
}

// CompileAll runs CompileFileTo for every job, at most limit at a time (no limit when
// limit < 1). Failing jobs do not stop the others; their errors are joined, each prefixed
// with its job. Jobs not yet started when ctx is done fail with the context's error.
func (c *Compiler) CompileAll(ctx context.Context, jobs []Job, limit int) (BatchResult, error) {
	if len(jobs) == 0 {
		return BatchResult{}, ErrNoJobs
	}
	logger := c.logger.WithGroup("compileAll")

	var written, skipped atomic.Int64
	// each job writes only its own slot
	errs := make([]error, len(jobs))

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", job, err)
				return nil
			}

			ok, err := c.CompileFileTo(job.Input, job.Output, job.Force)
			switch {
			case err != nil:
				logger.Error("Job failed", "job", job.String(), "error", err)
				errs[i] = fmt.Errorf("%s: %w", job, err)
			case ok:
				written.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Written: int(written.Load()), Skipped: int(skipped.Load())}
	for _, err := range errs {
		if err != nil {
			result.Failed++
		}
	}

	logger.Info("Batch finished",
		"jobs", len(jobs),
		"written", result.Written,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, errors.Join(errs...)
}
