package grading

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ ISQLGrader = (*SQLGrader)(nil)

const (
	msgResultsMatch  = "Results match!"
	msgInvalidConfig = "Invalid test case configuration"
)

type SQLGrader struct {
	engine  secondary.SQLEngine
	timeout time.Duration
	logger  primary.Logger
}

func NewSQLGrader(engine secondary.SQLEngine, cfg *config.GradingConfig, logger primary.Logger) *SQLGrader {
	return &SQLGrader{
		engine:  engine,
		timeout: cfg.PerTestTimeout,
		logger:  logger,
	}
}

func (g *SQLGrader) GradeSQL(ctx context.Context, schema, query string, testCases []*domain.TestCase) *domain.GradingVerdict {
	verdict := domain.NewGradingVerdict(domain.TestCaseKindSQL, len(testCases))

	actual, abort := g.run(ctx, schema, query)
	if abort != nil {
		g.logger.Info("SQL grading aborted", "error_kind", abort.kind, "error", abort.msg)
		return verdict.Abort(len(testCases), abort.kind, abort.msg)
	}

	for i, tc := range testCases {
		outcome := compare(i+1, tc, actual)
		g.logger.Debug("Graded SQL test case", "test_id", outcome.TestID, "passed", outcome.Passed)
		verdict.AddSQLOutcome(outcome)
	}

	return verdict.Finish()
}

type abortReason struct {
	kind domain.ErrorKind
	msg  string
}

// run applies the schema and executes the query once, returning the result as a JSON tree
func (g *SQLGrader) run(ctx context.Context, schema, query string) (any, *abortReason) {
	session, err := g.engine.Open(ctx)
	if err != nil {
		g.logger.Error("Failed to open grading database", "error", err)
		return nil, &abortReason{domain.ErrorKindSchemaSetup, fmt.Sprintf("Schema setup failed: %v", err)}
	}
	defer func() {
		if err := session.Close(); err != nil {
			g.logger.Error("Failed to close grading database", "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := session.ApplySchema(runCtx, schema); err != nil {
		return nil, &abortReason{domain.ErrorKindSchemaSetup, fmt.Sprintf("Schema setup failed: %v", err)}
	}

	result, err := session.RunQuery(runCtx, query)
	if err != nil {
		return nil, &abortReason{domain.ErrorKindQueryExecution, fmt.Sprintf("Query execution failed: %v", err)}
	}

	tree, err := normalizer.ToJSONTree(result)
	if err != nil {
		return nil, &abortReason{domain.ErrorKindQueryExecution, fmt.Sprintf("Query execution failed: %v", err)}
	}
	return tree, nil
}

func compare(testID int, tc *domain.TestCase, actual any) domain.SQLOutcome {
	outcome := domain.SQLOutcome{TestID: testID, Hidden: tc.Hidden}

	if normalizer.Trim(tc.ExpectedResult) == "" {
		outcome.Message = msgInvalidConfig
		return outcome
	}

	expected, err := normalizer.ParseJSON(tc.ExpectedResult)
	if err != nil {
		outcome.Message = fmt.Sprintf("Invalid JSON in expected result: %v", err)
		outcome.ActualResult = actual
		return outcome
	}

	outcome.ExpectedResult = expected
	outcome.ActualResult = actual
	if normalizer.EqualJSON(expected, actual) {
		outcome.Passed = true
		outcome.Message = msgResultsMatch
		return outcome
	}
	outcome.Message = fmt.Sprintf("Results don't match.\nExpected: %s\nActual: %s",
		normalizer.PrettyJSON(expected), normalizer.PrettyJSON(actual))
	return outcome
}
