package learner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/crillab/ncsort/ncs"
)

// A Job is an independent learning problem.
type Job struct {
	Name    string
	Variant ncs.Variant
	Dataset ncs.Dataset
}

// An Outcome is the result of a Job: either a model or an error.
type Outcome struct {
	Job   Job
	Model *ncs.Model
	Err   error
}

// A Factory returns a new learner for a job.
type Factory func(job Job) (*Learner, error)

// SolveAll runs every job concurrently, with a new learner per job, at most limit at a time
// (no limit if limit <= 0). Outcomes are returned in the order of jobs.
// A job failing does not stop the others; only an error of the factory, or ctx being done, does.
func SolveAll(ctx context.Context, jobs []Job, factory Factory, limit int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			l, err := factory(job)
			if err != nil {
				return err
			}
			m, err := l.Solve(ctx, job.Dataset)
			outcomes[i] = Outcome{Job: job, Model: m, Err: err}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
