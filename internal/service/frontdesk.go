package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/agent"
	"github.com/capitalize-ai/hr-service-desk/internal/intent"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
	"github.com/capitalize-ai/hr-service-desk/pkg/metrics"
)

const (
	replyCaseNeeded = "Entiendo que necesitas ayuda con esto. Voy a crear un caso para procesarlo correctamente."
	replyGreeting   = "¡Hola! Soy tu asistente de Recursos Humanos. ¿En qué puedo ayudarte hoy?"
	replyQuestion   = "Esa es una buena pregunta. ¿Podrías darme más detalles para ayudarte mejor?"
	replyDefault    = "Estoy aquí para ayudarte con tus consultas de Recursos Humanos. ¿Hay algo específico en lo que pueda asistirte?"
)

var greetings = []string{"hola", "buenos", "buenas", "hey"}

// FrontDesk is the conversational front controller. It keeps one thread per
// user and decides whether a turn needs a case; opening the case is left to
// the caller.
type FrontDesk struct {
	runtime agent.Runtime
	threads *ThreadCache
	logger  *logger.Logger
}

// NewFrontDesk creates a front desk. A nil runtime answers every turn from
// the local heuristic.
func NewFrontDesk(runtime agent.Runtime, threads *ThreadCache, log *logger.Logger) *FrontDesk {
	return &FrontDesk{
		runtime: runtime,
		threads: threads,
		logger:  log,
	}
}

// Threads returns the conversation thread cache.
func (f *FrontDesk) Threads() *ThreadCache {
	return f.threads
}

// Chat runs one conversational turn for userID. It never fails: any agent
// error is answered from the local heuristic.
func (f *FrontDesk) Chat(ctx context.Context, userID, message string) model.ChatReply {
	ctx, span := tracer.Start(ctx, "frontdesk.chat")
	defer span.End()

	if f.runtime == nil {
		span.SetAttributes(attribute.String("chat.path", "fallback"))
		metrics.RecordChatTurn("fallback")
		return heuristicReply(message, "")
	}

	log := f.logger.With(zap.String("user_id", userID))

	threadID, err := f.threads.GetOrCreate(ctx, userID, f.runtime.CreateThread)
	if err != nil {
		log.Warn("could not open conversation thread, answering locally", zap.Error(err))
		span.RecordError(err)
		span.SetAttributes(attribute.String("chat.path", "fallback"))
		metrics.RecordChatTurn("fallback")
		return heuristicReply(message, "")
	}
	span.SetAttributes(attribute.String("chat.thread_id", threadID))

	reply, err := f.runtime.Send(ctx, threadID, message)
	if err != nil {
		log.Warn("conversational agent failed, answering locally",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetAttributes(attribute.String("chat.path", "fallback"))
		metrics.RecordChatTurn("fallback")
		return heuristicReply(message, threadID)
	}

	visible, requiresCase, caseType := parseDirective(reply)
	span.SetAttributes(
		attribute.String("chat.path", "agent"),
		attribute.Bool("chat.requires_case", requiresCase),
	)
	metrics.RecordChatTurn("agent")

	log.Debug("chat turn answered",
		zap.String("thread_id", threadID),
		zap.Bool("requires_case", requiresCase),
		zap.String("case_type", string(caseType)),
	)

	return model.ChatReply{
		Response:     visible,
		RequiresCase: requiresCase,
		CaseType:     caseType,
		ThreadID:     threadID,
	}
}

// heuristicReply answers a turn with the intent trigger table.
func heuristicReply(message, threadID string) model.ChatReply {
	out := model.ChatReply{ThreadID: threadID, Fallback: true}

	if intent.Matches(message) {
		out.Response = replyCaseNeeded
		out.RequiresCase = true
		out.CaseType = intent.DetectCaseType(message)
		return out
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, greetings):
		out.Response = replyGreeting
	case strings.Contains(message, "?"):
		out.Response = replyQuestion
	default:
		out.Response = replyDefault
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
