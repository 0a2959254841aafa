package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/middleware"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/service"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

// ChatHandler handles conversational turns.
type ChatHandler struct {
	frontDesk  *service.FrontDesk
	dispatcher *service.Dispatcher
	logger     *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(frontDesk *service.FrontDesk, dispatcher *service.Dispatcher, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		frontDesk:  frontDesk,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := model.ChatResponse{ChatReply: h.frontDesk.Chat(ctx, userID, req.Message)}

	if req.Dispatch && resp.RequiresCase {
		outcomes := h.dispatcher.ProcessUserInput(ctx, userID, req.Message)
		resp.Cases = service.Views(outcomes)

		h.logger.WithContext(middleware.GetCorrelationID(ctx), userID).Info("chat turn dispatched",
			zap.Int("cases", len(outcomes)),
			zap.String("case_type", string(resp.CaseType)),
		)
	}

	writeJSON(w, http.StatusOK, resp)
}
