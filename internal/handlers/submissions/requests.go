package submissions

import (
	"github.com/google/uuid"

	"gitlab.com/fcv-grader.net/internal/domain"
)

// SubmitCodeRequest represents a request to grade a program
type SubmitCodeRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Code   string `json:"code" validate:"required"`
}

// SubmitSQLRequest represents a request to grade a query
type SubmitSQLRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	SQLQuery string `json:"sql_query" validate:"required"`
}

// SubmitCodeBatchRequest represents a request to grade many programs at once
type SubmitCodeBatchRequest struct {
	Submissions []SubmitCodeRequest `json:"submissions" validate:"required,min=1,max=100,dive"`
}

// SubmissionResponse represents a graded submission
type SubmissionResponse struct {
	SubmissionID uuid.UUID               `json:"submission_id"`
	Status       domain.SubmissionStatus `json:"status"`
	Score        int                     `json:"score"`
	Result       *domain.GradingVerdict  `json:"result"`
}

// AssignmentResponse represents an assignment with its test cases
type AssignmentResponse struct {
	*domain.Assignment
	TestCases []domain.TestCase `json:"test_cases"`
}
