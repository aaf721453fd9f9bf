package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-grader.net/internal/adapter/logging"
	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/services/submission"
	"gitlab.com/fcv-grader.net/internal/domain"
)

type panickingService struct {
	submission.ISubmissionService
}

func (panickingService) GetStats(context.Context, int64) (*domain.AssignmentStats, error) {
	panic("stats exploded")
}

func (panickingService) GetVerdict(context.Context, uuid.UUID) (*domain.GradingVerdict, error) {
	return &domain.GradingVerdict{Success: true}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(config.NewHTTPConfig(), *NewServiceProvider(panickingService{}), logging.NewNopLogger())
	require.NoError(t, s.Init())
	return s
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/submissions/"+uuid.NewString()+"/verdict", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestServerRecoversFromHandlerPanic(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assignments/1/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInitRequiresSubmissionService(t *testing.T) {
	s := NewServer(config.NewHTTPConfig(), ServiceProvider{}, logging.NewNopLogger())
	assert.Error(t, s.Init())
}
