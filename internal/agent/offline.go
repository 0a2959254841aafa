package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OfflineRuntime answers without any provider. It lets cases run end to end
// when no LLM is configured.
type OfflineRuntime struct{}

// NewOfflineRuntime creates an offline runtime.
func NewOfflineRuntime() *OfflineRuntime {
	return &OfflineRuntime{}
}

// CreateThread returns a fresh local thread ID.
func (OfflineRuntime) CreateThread(ctx context.Context) (string, error) {
	return uuid.Must(uuid.NewV7()).String(), nil
}

// Send echoes the message back.
func (OfflineRuntime) Send(ctx context.Context, threadID, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[MOCK RESPONSE] I received your message: '%s'. (agent connection pending)", message), nil
}
