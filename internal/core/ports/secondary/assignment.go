package secondary

import (
	"context"

	"gitlab.com/fcv-grader.net/internal/domain"
)

type AssignmentRepository interface {
	// GetAssignment retrieves an assignment by ID, nil when it does not exist
	GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error)

	// GetTestCases retrieves the test cases of an assignment in creation order
	GetTestCases(ctx context.Context, assignmentID int64, kind domain.TestCaseKind) ([]*domain.TestCase, error)
}
