package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/fcv-grader.net/internal/domain"
)

// SubmissionRepository stores the pass/fail summary derived from a verdict
type SubmissionRepository interface {
	// SaveSubmission saves a graded submission
	SaveSubmission(ctx context.Context, submission *domain.Submission) error

	// GetStats counts submissions of an assignment
	GetStats(ctx context.Context, assignmentID int64) (*domain.AssignmentStats, error)
}

// VerdictCache keeps recent verdicts for quick lookup by submission ID
type VerdictCache interface {
	// SaveVerdict stores the verdict of a submission
	SaveVerdict(ctx context.Context, submissionID uuid.UUID, verdict *domain.GradingVerdict) error

	// GetVerdict retrieves a verdict, nil when it is unknown or expired
	GetVerdict(ctx context.Context, submissionID uuid.UUID) (*domain.GradingVerdict, error)
}
