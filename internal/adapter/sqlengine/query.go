// Package sqlengine provides the ephemeral databases user SQL is graded against.
// Every Open returns a database no other grading run can see.
package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

// IsReadQuery reports whether a query produces rows rather than an affected-row count
func IsReadQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(q, "SELECT") || strings.HasPrefix(q, "WITH")
}

// valueConverter maps a scanned value to its JSON form given the engine's column type name
type valueConverter func(typeName string, value any) any

func engineValue(_ string, value any) any {
	return normalizer.EngineValue(value)
}

// execQueryer is satisfied by both *sqlx.Conn and *sqlx.Tx
type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

// runQuery executes the query once on conn and materializes its single result
func runQuery(ctx context.Context, conn execQueryer, query string, convert valueConverter) (*domain.QueryResult, error) {
	if !IsReadQuery(query) {
		res, err := conn.ExecContext(ctx, query)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read affected rows: %w", err)
		}
		return domain.NewMutationResult(affected), nil
	}

	rows, err := conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Row, 0)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = convert(colTypes[i].DatabaseTypeName(), values[i])
		}
		out = append(out, domain.Row{Columns: cols, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.NewRowsResult(out), nil
}
