package grading

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/domain"
)

// CodingJob is one independent coding submission of a batch
type CodingJob struct {
	Language  domain.Language
	Source    string
	TestCases []*domain.TestCase
}

// Batch grades independent submissions concurrently. Each submission is still graded
// sequentially by its grader.
type Batch struct {
	grader  ICodingGrader
	workers int
	logger  primary.Logger
}

func NewBatch(grader ICodingGrader, workers int, logger primary.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{grader: grader, workers: workers, logger: logger}
}

// GradeCoding returns one verdict per job, in job order
func (b *Batch) GradeCoding(ctx context.Context, jobs []CodingJob) []*domain.GradingVerdict {
	verdicts := make([]*domain.GradingVerdict, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, job := range jobs {
		g.Go(func() error {
			verdicts[i] = b.grader.GradeCoding(gctx, job.Language, job.Source, job.TestCases)
			return nil
		})
	}
	_ = g.Wait()

	b.logger.Info("Batch graded", "submissions", len(jobs), "workers", b.workers)
	return verdicts
}
