package grading

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-grader.net/internal/adapter/logging"
	"gitlab.com/fcv-grader.net/internal/adapter/sqlengine"
	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
)

// scriptedExecutor answers by stdin, deterministically
type scriptedExecutor struct {
	mu       sync.Mutex
	byStdin  map[string]domain.ExecutionResult
	requests []domain.ExecutionRequest
}

func (s *scriptedExecutor) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if res, ok := s.byStdin[req.Stdin]; ok {
		return res
	}
	return domain.Failed(domain.ErrorKindTransport, "no script", "", 0)
}

func gradingConfig() *config.GradingConfig {
	return &config.GradingConfig{PerTestTimeout: 5 * time.Second, BatchWorkers: 2}
}

func codingCase(input, expected string) *domain.TestCase {
	return &domain.TestCase{Kind: domain.TestCaseKindCoding, Input: input, ExpectedOutput: expected}
}

func sqlCase(expected string) *domain.TestCase {
	return &domain.TestCase{Kind: domain.TestCaseKindSQL, ExpectedResult: expected}
}

func assertInvariants(t *testing.T, v *domain.GradingVerdict) {
	t.Helper()
	outcomes := len(v.CodingOutcomes) + len(v.SQLOutcomes)
	passed := 0
	for _, o := range v.CodingOutcomes {
		if o.Passed {
			passed++
		}
	}
	for _, o := range v.SQLOutcomes {
		if o.Passed {
			passed++
		}
	}
	assert.Equal(t, outcomes, v.TotalTests)
	assert.Equal(t, passed, v.PassedTests)
	assert.Equal(t, v.PassedTests == v.TotalTests, v.Success)
}

func TestGradeCodingIgnoresSurroundingWhitespace(t *testing.T) {
	exec := &scriptedExecutor{byStdin: map[string]domain.ExecutionResult{
		"1 2": domain.Succeeded("3\n", 0.01),
	}}
	grader := NewCodingGrader(exec, gradingConfig(), logging.NewNopLogger())

	v := grader.GradeCoding(t.Context(), domain.LanguagePython, "print(sum(map(int, input().split())))",
		[]*domain.TestCase{codingCase("1 2", "3")})

	require.Len(t, v.CodingOutcomes, 1)
	assert.True(t, v.CodingOutcomes[0].Passed)
	assert.Equal(t, "3\n", v.CodingOutcomes[0].ActualOutput)
	assert.Equal(t, 1, v.CodingOutcomes[0].TestID)
	assert.True(t, v.Success)
	assert.Nil(t, v.FirstCodeError)
	assertInvariants(t, v)

	require.Len(t, exec.requests, 1)
	assert.Equal(t, 5*time.Second, exec.requests[0].Timeout)
	assert.Equal(t, domain.LanguagePython, exec.requests[0].Language)
}

func TestGradeCodingKeepsFirstErrorAndEvaluatesTheRest(t *testing.T) {
	exec := &scriptedExecutor{byStdin: map[string]domain.ExecutionResult{
		"0": domain.Failed(domain.ErrorKindRuntime, "ZeroDivisionError: division by zero", "partial", 0.01),
		"1": domain.Succeeded("1\n", 0.01),
		"2": domain.Succeeded("3\n", 0.01),
	}}
	grader := NewCodingGrader(exec, gradingConfig(), logging.NewNopLogger())

	v := grader.GradeCoding(t.Context(), domain.LanguagePython, "src", []*domain.TestCase{
		codingCase("0", "0"),
		codingCase("1", "1"),
		codingCase("2", "2"),
	})

	require.Len(t, v.CodingOutcomes, 3)
	require.NotNil(t, v.FirstCodeError)
	assert.Equal(t, "ZeroDivisionError: division by zero", *v.FirstCodeError)
	assert.Equal(t, domain.ErrorKindRuntime, v.FirstErrorKind)

	first := v.CodingOutcomes[0]
	assert.False(t, first.Passed)
	require.NotNil(t, first.Error)
	assert.Equal(t, "partial", first.ActualOutput)

	assert.True(t, v.CodingOutcomes[1].Passed)
	assert.False(t, v.CodingOutcomes[2].Passed)
	assert.Nil(t, v.CodingOutcomes[2].Error)
	assert.Equal(t, 1, v.PassedTests)
	assertInvariants(t, v)
}

func TestGradeCodingFirstErrorIsNeverOverwritten(t *testing.T) {
	exec := &scriptedExecutor{byStdin: map[string]domain.ExecutionResult{
		"a": domain.Succeeded("x", 0),
		"b": domain.Failed(domain.ErrorKindWallTimeExceeded, "Execution timeout (>5s)", "", 5),
		"c": domain.Failed(domain.ErrorKindRuntime, "later", "", 0),
	}}
	grader := NewCodingGrader(exec, gradingConfig(), logging.NewNopLogger())

	v := grader.GradeCoding(t.Context(), domain.LanguageJavaScript, "src", []*domain.TestCase{
		codingCase("a", "x"), codingCase("b", "y"), codingCase("c", "z"),
	})

	require.NotNil(t, v.FirstCodeError)
	assert.Equal(t, "Execution timeout (>5s)", *v.FirstCodeError)
	assert.Equal(t, domain.ErrorKindWallTimeExceeded, v.FirstErrorKind)
	assertInvariants(t, v)
}

func TestGradeCodingWithoutTestCases(t *testing.T) {
	grader := NewCodingGrader(&scriptedExecutor{}, gradingConfig(), logging.NewNopLogger())

	v := grader.GradeCoding(t.Context(), domain.LanguagePython, "src", nil)

	assert.True(t, v.Success)
	assert.Zero(t, v.TotalTests)
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"coding","success":true,"total_tests":0,"passed_tests":0,"results":[],"code_error":null}`, string(out))
}

func TestGradeCodingIsIdempotent(t *testing.T) {
	exec := &scriptedExecutor{byStdin: map[string]domain.ExecutionResult{
		"1": domain.Succeeded("1", 0.5),
		"2": domain.Failed(domain.ErrorKindCompile, "SyntaxError", "", 0.1),
	}}
	grader := NewCodingGrader(exec, gradingConfig(), logging.NewNopLogger())
	tests := []*domain.TestCase{codingCase("1", "1"), codingCase("2", "2")}

	first, err := json.Marshal(grader.GradeCoding(t.Context(), domain.LanguagePython, "src", tests))
	require.NoError(t, err)
	second, err := json.Marshal(grader.GradeCoding(t.Context(), domain.LanguagePython, "src", tests))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

const employees = `
CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, salary INTEGER);
INSERT INTO employees VALUES (1, 'Ann', 5000);
INSERT INTO employees VALUES (2, 'Bob', 4000);
`

func newSQLGrader() *SQLGrader {
	logger := logging.NewNopLogger()
	return NewSQLGrader(sqlengine.NewSQLiteEngine(logger), gradingConfig(), logger)
}

func TestGradeSQLIgnoresKeyOrder(t *testing.T) {
	v := newSQLGrader().GradeSQL(t.Context(), employees,
		"SELECT name, salary FROM employees ORDER BY id",
		[]*domain.TestCase{sqlCase(`[{"salary":5000,"name":"Ann"},{"salary":4000,"name":"Bob"}]`)})

	require.Len(t, v.SQLOutcomes, 1)
	assert.True(t, v.SQLOutcomes[0].Passed)
	assert.Equal(t, "Results match!", v.SQLOutcomes[0].Message)
	assert.True(t, v.Success)
	assertInvariants(t, v)
}

func TestGradeSQLMismatchMessage(t *testing.T) {
	v := newSQLGrader().GradeSQL(t.Context(), employees,
		"SELECT name FROM employees WHERE salary > 4500",
		[]*domain.TestCase{sqlCase(`[{"name":"Bob"}]`)})

	require.Len(t, v.SQLOutcomes, 1)
	assert.False(t, v.SQLOutcomes[0].Passed)
	assert.Equal(t,
		"Results don't match.\nExpected: [\n  {\n    \"name\": \"Bob\"\n  }\n]\nActual: [\n  {\n    \"name\": \"Ann\"\n  }\n]",
		v.SQLOutcomes[0].Message)
	assertInvariants(t, v)
}

func TestGradeSQLSchemaFailureAborts(t *testing.T) {
	v := newSQLGrader().GradeSQL(t.Context(), "CREATE TABLE broken (;", "SELECT 1",
		[]*domain.TestCase{sqlCase(`[]`), sqlCase(`[]`)})

	assert.False(t, v.Success)
	assert.Equal(t, 2, v.TotalTests)
	assert.Zero(t, v.PassedTests)
	assert.Empty(t, v.SQLOutcomes)
	require.NotNil(t, v.FirstCodeError)
	assert.Contains(t, *v.FirstCodeError, "Schema setup failed: ")
	assert.Equal(t, domain.ErrorKindSchemaSetup, v.FirstErrorKind)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"results":[]`)
}

func TestGradeSQLQueryFailureAborts(t *testing.T) {
	v := newSQLGrader().GradeSQL(t.Context(), employees, "SELECT nope FROM employees",
		[]*domain.TestCase{sqlCase(`[]`)})

	assert.False(t, v.Success)
	assert.Equal(t, 1, v.TotalTests)
	assert.Empty(t, v.SQLOutcomes)
	require.NotNil(t, v.FirstCodeError)
	assert.Contains(t, *v.FirstCodeError, "Query execution failed: ")
	assert.Equal(t, domain.ErrorKindQueryExecution, v.FirstErrorKind)
}

func TestGradeSQLBadTestCasesDoNotAbort(t *testing.T) {
	v := newSQLGrader().GradeSQL(t.Context(), employees,
		"SELECT COUNT(*) AS n FROM employees",
		[]*domain.TestCase{sqlCase(""), sqlCase("{not json"), sqlCase(`[{"n":2}]`)})

	require.Len(t, v.SQLOutcomes, 3)
	assert.False(t, v.SQLOutcomes[0].Passed)
	assert.Equal(t, "Invalid test case configuration", v.SQLOutcomes[0].Message)
	assert.False(t, v.SQLOutcomes[1].Passed)
	assert.Contains(t, v.SQLOutcomes[1].Message, "Invalid JSON in expected result: ")
	assert.True(t, v.SQLOutcomes[2].Passed)
	assert.Equal(t, []int{1, 2, 3}, []int{v.SQLOutcomes[0].TestID, v.SQLOutcomes[1].TestID, v.SQLOutcomes[2].TestID})
	assert.Equal(t, 1, v.PassedTests)
	assertInvariants(t, v)
}

func TestGradeSQLMutation(t *testing.T) {
	v := newSQLGrader().GradeSQL(t.Context(), employees,
		"DELETE FROM employees WHERE salary < 4500",
		[]*domain.TestCase{sqlCase(`{"affected_rows": 1}`)})

	assert.True(t, v.Success)
}

type failingEngine struct{}

func (failingEngine) Open(ctx context.Context) (secondary.SQLSession, error) {
	return nil, errors.New("out of connections")
}

func TestGradeSQLOpenFailureAborts(t *testing.T) {
	grader := NewSQLGrader(failingEngine{}, gradingConfig(), logging.NewNopLogger())

	v := grader.GradeSQL(t.Context(), employees, "SELECT 1", []*domain.TestCase{sqlCase(`[]`)})

	assert.Equal(t, 1, v.TotalTests)
	require.NotNil(t, v.FirstCodeError)
	assert.Equal(t, "Schema setup failed: out of connections", *v.FirstCodeError)
}

// slowExecutor tracks how many submissions run at once
type slowExecutor struct {
	running atomic.Int32
	peak    atomic.Int32
}

func (s *slowExecutor) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	n := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return domain.Succeeded(req.Stdin, 0.02)
}

func TestBatchKeepsOrderAndBoundsWorkers(t *testing.T) {
	exec := &slowExecutor{}
	logger := logging.NewNopLogger()
	batch := NewBatch(NewCodingGrader(exec, gradingConfig(), logger), 2, logger)

	jobs := make([]CodingJob, 6)
	for i := range jobs {
		expected := "ok"
		if i%2 == 1 {
			expected = "nope"
		}
		jobs[i] = CodingJob{
			Language:  domain.LanguagePython,
			Source:    "print(input())",
			TestCases: []*domain.TestCase{codingCase("ok", expected)},
		}
	}

	verdicts := batch.GradeCoding(t.Context(), jobs)

	require.Len(t, verdicts, 6)
	for i, v := range verdicts {
		assert.Equal(t, i%2 == 0, v.Success, "job %d", i)
	}
	assert.LessOrEqual(t, exec.peak.Load(), int32(2))
}
