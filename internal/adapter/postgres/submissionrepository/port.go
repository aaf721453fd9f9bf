// Package submissionrepository persists graded submissions
package submissionrepository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
	querybuilder "gitlab.com/fcv-grader.net/internal/utils"
)

var _ secondary.SubmissionRepository = (*SubmissionRepository)(nil)

// SubmissionRepository implements the SubmissionRepository interface with sqlx
type SubmissionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sqlx.DB, logger primary.Logger, schema string) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

// SaveSubmission inserts a submission. Saving the same submission twice is a no-op.
func (r *SubmissionRepository) SaveSubmission(ctx context.Context, submission *domain.Submission) error {
	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(
			tbl.ID, tbl.AssignmentID, tbl.UserID,
			tbl.Code, tbl.Status, tbl.Output,
			tbl.Score, tbl.SubmittedAt,
		).
		Into(tbl.TableName()).
		Values(
			submission.ID.String(), submission.AssignmentID, submission.UserID,
			submission.Code, string(submission.Status), submission.Output,
			submission.Score, submission.SubmittedAt.UTC(),
		).
		OnConflict(tbl.ID).
		DoNothing().
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save submission", "submission_id", submission.ID, "error", err)
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

// GetStats counts submissions of an assignment
func (r *SubmissionRepository) GetStats(ctx context.Context, assignmentID int64) (*domain.AssignmentStats, error) {
	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(
			"COUNT(*) AS total_submissions",
			fmt.Sprintf("COALESCE(SUM(CASE WHEN %s = '%s' THEN 1 ELSE 0 END), 0) AS passed_submissions", tbl.Status, domain.SubmissionStatusPass),
			fmt.Sprintf("COALESCE(SUM(CASE WHEN %s = '%s' THEN 0 ELSE 1 END), 0) AS failed_submissions", tbl.Status, domain.SubmissionStatusPass),
			fmt.Sprintf("COUNT(DISTINCT %s) AS unique_submitters", tbl.UserID),
		).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.AssignmentID), assignmentID).
		Build()

	var stats domain.AssignmentStats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to get submission stats", "assignment_id", assignmentID, "error", err)
		return nil, fmt.Errorf("failed to get submission stats: %w", err)
	}

	return &stats, nil
}
