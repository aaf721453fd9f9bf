package secondary

import (
	"context"

	"gitlab.com/fcv-grader.net/internal/domain"
)

// SQLEngine hands out one fresh, isolated database per grading run
type SQLEngine interface {
	Open(ctx context.Context) (SQLSession, error)
}

// SQLSession is a database owned by exactly one grading run
type SQLSession interface {
	// ApplySchema runs the schema script as a single multi-statement batch
	ApplySchema(ctx context.Context, script string) error

	// RunQuery executes the user query exactly once
	RunQuery(ctx context.Context, query string) (*domain.QueryResult, error)

	// Close releases the database and its connection
	Close() error
}
