package sqlengine

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.SQLEngine = (*SQLiteEngine)(nil)

// SQLiteEngine opens a private in-memory SQLite database per grading run
type SQLiteEngine struct {
	logger primary.Logger
}

func NewSQLiteEngine(logger primary.Logger) *SQLiteEngine {
	return &SQLiteEngine{logger: logger}
}

func (e *SQLiteEngine) Open(ctx context.Context) (secondary.SQLSession, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// each connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	return &sqliteSession{db: db, conn: conn, logger: e.logger}, nil
}

type sqliteSession struct {
	db     *sqlx.DB
	conn   *sqlx.Conn
	logger primary.Logger
}

func (s *sqliteSession) ApplySchema(ctx context.Context, script string) error {
	_, err := s.conn.ExecContext(ctx, script)
	return err
}

func (s *sqliteSession) RunQuery(ctx context.Context, query string) (*domain.QueryResult, error) {
	return runQuery(ctx, s.conn, query, engineValue)
}

func (s *sqliteSession) Close() error {
	connErr := s.conn.Close()
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite database", "error", err)
		return fmt.Errorf("failed to close sqlite database: %w", err)
	}
	return connErr
}
