// Package assignmentrepository reads assignments and their test cases
package assignmentrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
	querybuilder "gitlab.com/fcv-grader.net/internal/utils"
)

var _ secondary.AssignmentRepository = (*AssignmentRepository)(nil)

// AssignmentRepository implements the AssignmentRepository interface with sqlx
type AssignmentRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewAssignmentRepository creates a new assignment repository. An empty schema leaves
// table names unqualified.
func NewAssignmentRepository(db *sqlx.DB, logger primary.Logger, schema string) *AssignmentRepository {
	return &AssignmentRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func coalesce(col, fallback string) string {
	return fmt.Sprintf("COALESCE(%s, %s) AS %s", col, fallback, col)
}

// GetAssignment retrieves an assignment by ID
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error) {
	tbl := domain.GetAssignmentTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(
			tbl.ID, tbl.Title, tbl.Description,
			tbl.Domain, tbl.Difficulty,
			coalesce(tbl.ProblemType, "'coding'"),
			tbl.Language, tbl.SQLSchema, tbl.SQLQuery,
		).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), id).
		Build()

	var assignment domain.Assignment
	err := r.db.GetContext(ctx, &assignment, r.db.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get assignment", "assignment_id", id, "error", err)
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return &assignment, nil
}

// GetTestCases retrieves the test cases of an assignment ordered by ID
func (r *AssignmentRepository) GetTestCases(ctx context.Context, assignmentID int64, kind domain.TestCaseKind) ([]*domain.TestCase, error) {
	tbl := domain.GetTestCaseTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(
			tbl.ID, tbl.AssignmentID,
			coalesce(tbl.Input, "''"),
			coalesce(tbl.ExpectedOutput, "''"),
			coalesce(tbl.ExpectedResult, "''"),
			coalesce(tbl.Hidden, "FALSE"),
		).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.AssignmentID), assignmentID).
		OrderBy(tbl.ID, true).
		Build()

	var testCases []*domain.TestCase
	if err := r.db.SelectContext(ctx, &testCases, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to get test cases", "assignment_id", assignmentID, "error", err)
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	for _, tc := range testCases {
		tc.Kind = kind
	}
	return testCases, nil
}
