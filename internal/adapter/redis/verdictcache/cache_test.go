package verdictcache

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-grader.net/internal/adapter/logging"
	"gitlab.com/fcv-grader.net/internal/domain"
)

func newCache(t *testing.T) (*VerdictCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewVerdictCache(client, time.Hour, logging.NewNopLogger()), mr
}

func TestSaveAndGetCodingVerdict(t *testing.T) {
	cache, mr := newCache(t)
	id := uuid.New()

	msg := "NameError: x"
	verdict := domain.NewGradingVerdict(domain.TestCaseKindCoding, 2)
	verdict.AddCodingOutcome(domain.CodingOutcome{TestID: 1, Input: "1", ExpectedOutput: "2", ActualOutput: "2\n", Passed: true})
	verdict.AddCodingOutcome(domain.CodingOutcome{TestID: 2, Input: "2", ExpectedOutput: "3", Error: &msg})
	verdict.RecordCodeError(domain.ErrorKindRuntime, msg)
	verdict.Finish()

	require.NoError(t, cache.SaveVerdict(t.Context(), id, verdict))
	assert.Equal(t, time.Hour, mr.TTL("verdict:"+id.String()))

	got, err := cache.GetVerdict(t.Context(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TotalTests)
	assert.Equal(t, 1, got.PassedTests)
	require.Len(t, got.CodingOutcomes, 2)
	assert.Equal(t, "2\n", got.CodingOutcomes[0].ActualOutput)
	require.NotNil(t, got.FirstCodeError)
	assert.Equal(t, msg, *got.FirstCodeError)
	assert.Equal(t, domain.ErrorKindRuntime, got.FirstErrorKind)
}

func TestSaveAndGetSQLVerdict(t *testing.T) {
	cache, _ := newCache(t)
	id := uuid.New()

	verdict := domain.NewGradingVerdict(domain.TestCaseKindSQL, 1)
	verdict.AddSQLOutcome(domain.SQLOutcome{TestID: 1, Passed: true, Message: "Results match!"})
	verdict.Finish()
	require.NoError(t, cache.SaveVerdict(t.Context(), id, verdict))

	got, err := cache.GetVerdict(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, got.SQLOutcomes, 1)
	assert.Empty(t, got.CodingOutcomes)
	assert.True(t, got.Success)
}

func TestSaveAndGetAbortedSQLVerdict(t *testing.T) {
	cache, _ := newCache(t)
	id := uuid.New()

	verdict := domain.NewGradingVerdict(domain.TestCaseKindSQL, 3).Abort(3, domain.ErrorKindSchemaSetup, "Schema setup failed: near \"CREAT\": syntax error")
	require.NoError(t, cache.SaveVerdict(t.Context(), id, verdict))

	got, err := cache.GetVerdict(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.TestCaseKindSQL, got.Kind)
	assert.NotNil(t, got.SQLOutcomes)
	assert.Nil(t, got.CodingOutcomes)
	assert.Equal(t, 3, got.TotalTests)
	assert.Equal(t, domain.ErrorKindSchemaSetup, got.FirstErrorKind)
}

func TestGetUnknownVerdict(t *testing.T) {
	cache, _ := newCache(t)

	got, err := cache.GetVerdict(t.Context(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVerdictExpires(t *testing.T) {
	cache, mr := newCache(t)
	id := uuid.New()

	require.NoError(t, cache.SaveVerdict(t.Context(), id, domain.NewGradingVerdict(domain.TestCaseKindCoding, 0).Finish()))
	mr.FastForward(2 * time.Hour)

	got, err := cache.GetVerdict(t.Context(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}
