// Package grading turns submissions into verdicts by running them against the test
// cases of an assignment.
package grading

import (
	"context"

	"gitlab.com/fcv-grader.net/internal/domain"
)

// ICodingGrader grades a program against stdin/stdout test cases
type ICodingGrader interface {
	// GradeCoding runs every test case in order and never stops early
	GradeCoding(ctx context.Context, language domain.Language, source string, testCases []*domain.TestCase) *domain.GradingVerdict
}

// ISQLGrader grades a query against expected JSON results
type ISQLGrader interface {
	// GradeSQL runs the query once on a fresh database and compares it with every test case
	GradeSQL(ctx context.Context, schema, query string, testCases []*domain.TestCase) *domain.GradingVerdict
}
