package submission

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/fcv-grader.net/internal/domain"
)

// ISubmissionService grades submissions against the test cases of their assignment
type ISubmissionService interface {
	// GetAssignment retrieves an assignment with its test cases
	GetAssignment(ctx context.Context, assignmentID int64) (*domain.Assignment, []*domain.TestCase, error)

	// SubmitCode grades a program submitted to a coding assignment
	SubmitCode(ctx context.Context, assignmentID, userID int64, code string) (*Graded, error)

	// SubmitCodeBatch grades many programs submitted to the same coding assignment
	SubmitCodeBatch(ctx context.Context, assignmentID int64, entries []CodeEntry) ([]*Graded, error)

	// SubmitSQL grades a query submitted to a SQL assignment
	SubmitSQL(ctx context.Context, assignmentID, userID int64, query string) (*Graded, error)

	// GetStats counts the submissions of an assignment
	GetStats(ctx context.Context, assignmentID int64) (*domain.AssignmentStats, error)

	// GetVerdict retrieves the cached verdict of a submission
	GetVerdict(ctx context.Context, submissionID uuid.UUID) (*domain.GradingVerdict, error)
}

// Graded is a persisted submission together with its full verdict
type Graded struct {
	Submission *domain.Submission
	Verdict    *domain.GradingVerdict
}

// CodeEntry is one program of a batch submission
type CodeEntry struct {
	UserID int64
	Code   string
}
