package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.SQLEngine = (*PostgresEngine)(nil)

const cleanupTimeout = 10 * time.Second

// ErrTransactionEscaped is returned when user SQL ended the session transaction
var ErrTransactionEscaped = errors.New("transaction control statements are not allowed")

// PostgresEngine runs every grading session inside one transaction that is never committed.
// Uncommitted DDL is invisible to other sessions and disappears on rollback.
// The database must be dedicated to grading.
type PostgresEngine struct {
	db     *sqlx.DB
	logger primary.Logger
}

func NewPostgresEngine(db *sqlx.DB, logger primary.Logger) *PostgresEngine {
	return &PostgresEngine{db: db, logger: logger}
}

func (e *PostgresEngine) Open(ctx context.Context) (secondary.SQLSession, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin grading transaction: %w", err)
	}

	schema := pq.QuoteIdentifier("grading_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	s := &postgresSession{tx: tx, schema: schema, logger: e.logger}
	if _, err := tx.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create grading schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "SET LOCAL search_path TO "+schema); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to select grading schema: %w", err)
	}
	return s, nil
}

type postgresSession struct {
	tx      *sqlx.Tx
	schema  string
	escaped bool
	logger  primary.Logger
}

func (s *postgresSession) ApplySchema(ctx context.Context, script string) error {
	if _, err := s.tx.ExecContext(ctx, script); err != nil {
		return err
	}
	return s.checkTransaction(ctx)
}

func (s *postgresSession) RunQuery(ctx context.Context, query string) (*domain.QueryResult, error) {
	res, err := runQuery(ctx, s.tx, query, postgresValue)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransaction(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// checkTransaction fails once user SQL has run COMMIT, ROLLBACK or END.
// SAVEPOINT is only accepted inside a transaction block.
func (s *postgresSession) checkTransaction(ctx context.Context) error {
	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT grading_guard"); err != nil {
		s.escaped = true
		return ErrTransactionEscaped
	}
	return nil
}

// Close rolls back everything the session did
func (s *postgresSession) Close() error {
	if s.escaped {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if _, err := s.tx.ExecContext(ctx, "DROP SCHEMA IF EXISTS "+s.schema+" CASCADE"); err != nil {
			s.logger.Error("Failed to drop escaped grading schema", "schema", s.schema, "error", err)
		}
		s.logger.Warn("Grading session left its transaction", "schema", s.schema)
	}
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back grading transaction: %w", err)
	}
	return nil
}

// postgresValue turns the text lib/pq returns for numeric types into numbers
func postgresValue(typeName string, value any) any {
	b, ok := value.([]byte)
	if !ok {
		return normalizer.EngineValue(value)
	}
	switch typeName {
	case "NUMERIC", "DECIMAL":
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return f
		}
	}
	return string(b)
}
