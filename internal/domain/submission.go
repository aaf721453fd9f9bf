package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the persisted pass/fail summary of a verdict
type SubmissionStatus string

const (
	SubmissionStatusPass SubmissionStatus = "pass"
	SubmissionStatusFail SubmissionStatus = "fail"
)

// Submission represents a graded submission as persisted by the caller of the graders
type Submission struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	AssignmentID int64            `db:"assignment_id" json:"assignment_id"`
	UserID       int64            `db:"user_id" json:"user_id"`
	Code         string           `db:"code" json:"code"`
	Status       SubmissionStatus `db:"status" json:"status"`
	Output       string           `db:"output" json:"-"`
	Score        int              `db:"score" json:"score"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submitted_at"`
}

type SubmissionTable struct {
	ID           string
	AssignmentID string
	UserID       string
	Code         string
	Status       string
	Output       string
	Score        string
	SubmittedAt  string
}

func GetSubmissionTable() SubmissionTable {
	return SubmissionTable{
		ID:           "id",
		AssignmentID: "assignment_id",
		UserID:       "user_id",
		Code:         "code",
		Status:       "status",
		Output:       "output",
		Score:        "score",
		SubmittedAt:  "submitted_at",
	}
}

func (SubmissionTable) TableName() string {
	return "submissions"
}

// NewSubmission derives the persisted summary of a verdict
func NewSubmission(assignmentID, userID int64, code string, verdict *GradingVerdict) *Submission {
	status := SubmissionStatusFail
	if verdict.Success {
		status = SubmissionStatusPass
	}
	output, _ := json.Marshal(verdict)
	return &Submission{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		UserID:       userID,
		Code:         code,
		Status:       status,
		Output:       string(output),
		Score:        verdict.Score(),
		SubmittedAt:  time.Now(),
	}
}
