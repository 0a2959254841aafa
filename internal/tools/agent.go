package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/capitalize-ai/hr-service-desk/internal/agent"
)

// AgentTool runs a case on the agent runtime, one fresh thread per case.
type AgentTool struct {
	runtime agent.Runtime
}

// NewAgentTool creates a tool backed by runtime.
func NewAgentTool(runtime agent.Runtime) *AgentTool {
	return &AgentTool{runtime: runtime}
}

// Name returns the tool name.
func (t *AgentTool) Name() string { return "agent" }

// Execute posts the case to a new thread and returns the agent's answer.
func (t *AgentTool) Execute(ctx context.Context, task Task) (Result, error) {
	threadID, err := t.runtime.CreateThread(ctx)
	if err != nil {
		return Result{}, &HandlerError{Tool: t.Name(), Reason: "could not create thread: " + err.Error(), Err: err}
	}

	if f, ok := t.runtime.(forgetter); ok {
		defer f.Forget(threadID)
	}

	reply, err := t.runtime.Send(ctx, threadID, casePrompt(task))
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "agent run timed out"
		}
		return Result{ThreadID: threadID}, &HandlerError{Tool: t.Name(), Reason: reason, Err: err}
	}
	if strings.TrimSpace(reply) == "" {
		return Result{ThreadID: threadID}, Fail(t.Name(), "agent returned an empty response")
	}

	return Result{Text: reply, ThreadID: threadID}, nil
}

// forgetter is implemented by runtimes that keep per-thread state. Case
// threads are single-use, so their state is released after the run.
type forgetter interface {
	Forget(threadID string)
}

func casePrompt(task Task) string {
	return fmt.Sprintf("Caso %s\nEmpleado: %s\nTipo: %s\nDescripción: %s",
		task.CaseID, task.UserID, task.Intent, task.Description)
}
