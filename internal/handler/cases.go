package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/middleware"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/service"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

// CaseJournal reads the transitions recorded for a case.
type CaseJournal interface {
	CaseEvents(ctx context.Context, caseID string, afterSequence uint64, limit int) ([]model.CaseEvent, uint64, error)
}

// CaseHandler handles case endpoints.
type CaseHandler struct {
	store      store.CaseStore
	dispatcher *service.Dispatcher
	journal    CaseJournal
	logger     *logger.Logger
}

// NewCaseHandler creates a new case handler. journal may be nil.
func NewCaseHandler(caseStore store.CaseStore, dispatcher *service.Dispatcher, journal CaseJournal, log *logger.Logger) *CaseHandler {
	return &CaseHandler{
		store:      caseStore,
		dispatcher: dispatcher,
		journal:    journal,
		logger:     log,
	}
}

// Process handles POST /api/v1/cases
func (h *CaseHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.ProcessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcomes := h.dispatcher.ProcessUserInput(ctx, userID, req.Text)
	writeJSON(w, http.StatusCreated, model.ProcessResponse{Cases: service.Views(outcomes)})
}

// List handles GET /api/v1/cases
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	limit := queryInt(r, "limit", 20, 100)

	cases, err := h.store.ListByUser(ctx, userID, limit)
	if err != nil {
		h.logger.Error("failed to list cases", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}
	if cases == nil {
		cases = []model.Case{}
	}

	writeJSON(w, http.StatusOK, model.ListCasesResponse{Cases: cases, Total: len(cases)})
}

// Get handles GET /api/v1/cases/{id}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCase(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Events handles GET /api/v1/cases/{id}/events
func (h *CaseHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotImplemented, "case journal not enabled")
		return
	}

	c, ok := h.ownedCase(w, r)
	if !ok {
		return
	}

	afterSequence := uint64(0)
	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}
	limit := queryInt(r, "limit", 50, 500)

	events, lastSeq, err := h.journal.CaseEvents(r.Context(), c.ID, afterSequence, limit)
	if err != nil {
		h.logger.Error("failed to read case events", zap.String("case_id", c.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read case events")
		return
	}
	if events == nil {
		events = []model.CaseEvent{}
	}

	writeJSON(w, http.StatusOK, model.ListCaseEventsResponse{Events: events, LastSequence: lastSeq})
}

// ownedCase loads the case named in the URL, answering 404 when it does not
// exist or belongs to another user.
func (h *CaseHandler) ownedCase(w http.ResponseWriter, r *http.Request) (*model.Case, bool) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "id")

	if err := middleware.ValidateCaseID(caseID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	c, err := h.store.Get(ctx, caseID)
	if errors.Is(err, store.ErrCaseNotFound) {
		writeError(w, http.StatusNotFound, "case not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load case", zap.String("case_id", caseID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load case")
		return nil, false
	}

	if c.UserID != middleware.GetUserID(ctx) {
		writeError(w, http.StatusNotFound, "case not found")
		return nil, false
	}

	return c, true
}
