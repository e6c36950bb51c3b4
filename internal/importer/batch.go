package importer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one statement to import.
type Job struct {
	Path        string
	Institution string
}

// JobResult pairs a Job with its outcome. Err is set when that job alone failed.
type JobResult struct {
	Job
	Result
	Err error
}

// ImportAll imports jobs concurrently, at most limit at a time (limit <= 0 means no limit).
// Results come back in job order. A failed job does not stop the others; jobs not yet
// started when ctx is cancelled report ctx.Err().
func (r *Registry) ImportAll(ctx context.Context, jobs []Job, limit int) []JobResult {
	results := make([]JobResult, len(jobs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i].Job = job
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result, results[i].Err = r.Import(job.Path, job.Institution)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
