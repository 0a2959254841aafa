package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/llm"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
	"github.com/capitalize-ai/hr-service-desk/pkg/metrics"
)

const defaultMaxHistory = 40

// LLMRuntimeConfig configures an LLMRuntime.
type LLMRuntimeConfig struct {
	Model        string
	Instructions string
	MaxTokens    int
	// MaxHistory caps the messages kept per thread; older turns are dropped.
	MaxHistory int
}

// LLMRuntime keeps per-thread history in memory and completes each turn
// against an LLM provider.
type LLMRuntime struct {
	client llm.Client
	cfg    LLMRuntimeConfig
	logger *logger.Logger

	threads map[string][]llm.ChatMessage
	mu      sync.Mutex
}

// NewLLMRuntime creates a runtime over client.
func NewLLMRuntime(client llm.Client, cfg LLMRuntimeConfig, log *logger.Logger) *LLMRuntime {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = defaultMaxHistory
	}
	// History is stored in user/assistant pairs; an even cap keeps a user turn first.
	if cfg.MaxHistory%2 != 0 {
		cfg.MaxHistory++
	}
	return &LLMRuntime{
		client:  client,
		cfg:     cfg,
		logger:  log,
		threads: make(map[string][]llm.ChatMessage),
	}
}

// CreateThread opens an empty thread.
func (r *LLMRuntime) CreateThread(ctx context.Context) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()

	r.mu.Lock()
	r.threads[id] = nil
	r.mu.Unlock()

	return id, nil
}

// Send appends message to the thread and returns the model's reply. The turn
// is only recorded in the history once the provider answers.
func (r *LLMRuntime) Send(ctx context.Context, threadID, message string) (string, error) {
	r.mu.Lock()
	history, ok := r.threads[threadID]
	if !ok {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}
	messages := make([]llm.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	r.mu.Unlock()

	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: message})

	start := time.Now()
	resp, err := r.client.Complete(ctx, &llm.CompletionRequest{
		Model:     r.cfg.Model,
		System:    r.cfg.Instructions,
		Messages:  messages,
		MaxTokens: r.cfg.MaxTokens,
	})
	if err != nil {
		metrics.RecordLLMCall(r.modelLabel(), "error", time.Since(start).Seconds(), 0, 0)
		return "", fmt.Errorf("%s completion failed: %w", r.client.Name(), err)
	}
	metrics.RecordLLMCall(r.modelLabel(), "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)

	r.logger.Debug("agent turn completed",
		zap.String("thread_id", threadID),
		zap.String("provider", r.client.Name()),
		zap.String("model", resp.Model),
		zap.Int("tokens_in", resp.TokensIn),
		zap.Int("tokens_out", resp.TokensOut),
		zap.Int64("latency_ms", resp.LatencyMs),
	)

	messages = append(messages, llm.ChatMessage{Role: llm.RoleAssistant, Content: resp.Content})
	if len(messages) > r.cfg.MaxHistory {
		messages = messages[len(messages)-r.cfg.MaxHistory:]
	}

	// A thread forgotten while the provider was answering stays forgotten.
	r.mu.Lock()
	if _, ok := r.threads[threadID]; ok {
		r.threads[threadID] = messages
	}
	r.mu.Unlock()

	return resp.Content, nil
}

// History returns a copy of a thread's messages.
func (r *LLMRuntime) History(threadID string) []llm.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]llm.ChatMessage, len(r.threads[threadID]))
	copy(out, r.threads[threadID])
	return out
}

// Forget drops a thread and its history.
func (r *LLMRuntime) Forget(threadID string) {
	r.mu.Lock()
	delete(r.threads, threadID)
	r.mu.Unlock()
}

func (r *LLMRuntime) modelLabel() string {
	if r.cfg.Model != "" {
		return r.cfg.Model
	}
	return r.client.Name()
}
