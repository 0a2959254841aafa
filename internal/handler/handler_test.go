package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/hr-service-desk/internal/middleware"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/service"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
	"github.com/capitalize-ai/hr-service-desk/internal/tools"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

const testSecret = "handler-secret"

type fakeJournal struct {
	events map[string][]model.CaseEvent
}

func (j *fakeJournal) CaseEvents(ctx context.Context, caseID string, after uint64, limit int) ([]model.CaseEvent, uint64, error) {
	var out []model.CaseEvent
	var last uint64
	for _, e := range j.events[caseID] {
		if e.Sequence > after && len(out) < limit {
			out = append(out, e)
			last = e.Sequence
		}
	}
	return out, last, nil
}

type testServer struct {
	handler http.Handler
	store   *store.MemoryStore
	journal *fakeJournal
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newLimitedTestServer(t, 1000)
}

func newLimitedTestServer(t *testing.T, requestLimit int) *testServer {
	t.Helper()

	log := logger.NewNop()
	caseStore := store.NewMemory()
	journal := &fakeJournal{events: make(map[string][]model.CaseEvent)}
	dispatcher := service.NewDispatcher(caseStore, tools.NewMockRegistry(), nil, service.DispatcherConfig{}, log)
	frontDesk := service.NewFrontDesk(nil, service.NewThreadCache(service.ThreadCacheConfig{}), log)

	h := NewRouter(RouterConfig{
		Health:            NewHealthHandler(caseStore, nil),
		Chat:              NewChatHandler(frontDesk, dispatcher, log),
		Cases:             NewCaseHandler(caseStore, dispatcher, journal, log),
		Logger:            log,
		JWTSecret:         testSecret,
		RateLimitRequests: requestLimit,
		RateLimitWindow:   time.Minute,
	})

	return &testServer{handler: h, store: caseStore, journal: journal}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := middleware.IssueToken(testSecret, userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ready")
}

func TestHealthRateLimitedPerIP(t *testing.T) {
	s := newLimitedTestServer(t, 2)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/ready", "", nil).Code)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// The health endpoint limit is separate from the per-user API limit.
	rec = s.do(t, http.MethodGet, "/api/v1/cases", "emp-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/cases", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProcessAndReadCases(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/cases", "emp-1", model.ProcessRequest{Text: "necesito un certificado y mis vacaciones"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	processed := decode[model.ProcessResponse](t, rec)
	require.Len(t, processed.Cases, 2)
	assert.Equal(t, model.IntentGenerateCertificate, processed.Cases[0].Intent)
	assert.Equal(t, model.IntentCheckVacationBalance, processed.Cases[1].Intent)
	for _, c := range processed.Cases {
		assert.Equal(t, model.CaseStatusCompleted, c.Status)
		assert.NotNil(t, c.AgentResponse)
		assert.Empty(t, c.Error)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/cases", "emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[model.ListCasesResponse](t, rec)
	assert.Equal(t, 2, list.Total)

	rec = s.do(t, http.MethodGet, "/api/v1/cases", "emp-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[model.ListCasesResponse](t, rec).Total)

	caseID := processed.Cases[0].ID
	rec = s.do(t, http.MethodGet, "/api/v1/cases/"+caseID, "emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Case](t, rec)
	assert.Equal(t, caseID, got.ID)

	rec = s.do(t, http.MethodGet, "/api/v1/cases/"+caseID, "emp-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cases/not-a-uuid", "emp-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cases/0190f3c4-7a1b-7cde-8f00-123456789abc", "emp-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessRejectsEmptyText(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/cases", "emp-1", model.ProcessRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewBufferString("{"))
	token, err := middleware.IssueToken(testSecret, "emp-1", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCaseEvents(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/cases", "emp-1", model.ProcessRequest{Text: "pago"})
	require.Equal(t, http.StatusCreated, rec.Code)
	caseID := decode[model.ProcessResponse](t, rec).Cases[0].ID

	s.journal.events[caseID] = []model.CaseEvent{
		{CaseID: caseID, Status: model.CaseStatusOpen, Sequence: 4},
		{CaseID: caseID, Status: model.CaseStatusInProgress, Sequence: 5},
		{CaseID: caseID, Status: model.CaseStatusCompleted, Sequence: 9},
	}

	rec = s.do(t, http.MethodGet, "/api/v1/cases/"+caseID+"/events?after_sequence=4", "emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[model.ListCaseEventsResponse](t, rec)
	require.Len(t, events.Events, 2)
	assert.Equal(t, uint64(9), events.LastSequence)

	rec = s.do(t, http.MethodGet, "/api/v1/cases/"+caseID+"/events", "emp-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/chat", "emp-1", model.ChatRequest{Message: "hola"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[model.ChatResponse](t, rec)
	assert.False(t, reply.RequiresCase)
	assert.True(t, reply.Fallback)
	assert.Empty(t, reply.Cases)

	rec = s.do(t, http.MethodPost, "/api/v1/chat", "emp-1", model.ChatRequest{Message: "necesito una constancia"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply = decode[model.ChatResponse](t, rec)
	assert.True(t, reply.RequiresCase)
	assert.Equal(t, model.IntentGenerateCertificate, reply.CaseType)
	assert.Empty(t, reply.Cases)

	rec = s.do(t, http.MethodPost, "/api/v1/chat", "emp-1", model.ChatRequest{Message: "necesito una constancia", Dispatch: true})
	require.Equal(t, http.StatusOK, rec.Code)
	reply = decode[model.ChatResponse](t, rec)
	require.Len(t, reply.Cases, 1)
	assert.Equal(t, model.CaseStatusCompleted, reply.Cases[0].Status)

	cases, err := s.store.ListByUser(context.Background(), "emp-1", 10)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}
