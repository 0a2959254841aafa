// Package tools implements the per-intent handlers that execute HR cases.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

// Task is the work handed to a tool for one case.
type Task struct {
	CaseID      string
	UserID      string
	Intent      model.IntentType
	Description string
}

// Result is a tool's output. ThreadID is set when the work ran inside an
// agent thread the case should reference.
type Result struct {
	Text     string
	ThreadID string
}

// Tool executes the work for one intent type.
type Tool interface {
	Name() string
	Execute(ctx context.Context, task Task) (Result, error)
}

// HandlerError is a tool failure with a human-readable reason.
type HandlerError struct {
	Tool   string
	Reason string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Fail builds a HandlerError for tool.
func Fail(tool, reason string) *HandlerError {
	return &HandlerError{Tool: tool, Reason: reason}
}

// Registry maps intent types onto the tools that handle them.
type Registry struct {
	tools    map[model.IntentType]Tool
	fallback Tool
}

// NewRegistry creates an empty registry. fallback, when non-nil, handles
// intents with no registered tool.
func NewRegistry(fallback Tool) *Registry {
	return &Registry{
		tools:    make(map[model.IntentType]Tool),
		fallback: fallback,
	}
}

// Register binds tool to intent, replacing any previous binding.
func (r *Registry) Register(intent model.IntentType, tool Tool) *Registry {
	r.tools[intent] = tool
	return r
}

// Lookup returns the tool for intent.
func (r *Registry) Lookup(intent model.IntentType) (Tool, bool) {
	if tool, ok := r.tools[intent]; ok {
		return tool, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Describe lists intent→tool bindings, sorted by intent.
func (r *Registry) Describe() []string {
	out := make([]string, 0, len(r.tools))
	for intent, tool := range r.tools {
		out = append(out, string(intent)+"="+tool.Name())
	}
	sort.Strings(out)
	if r.fallback != nil {
		out = append(out, "*="+r.fallback.Name())
	}
	return out
}

// NewMockRegistry wires the built-in mocked tools.
func NewMockRegistry() *Registry {
	policies := NewPolicyTool()
	tickets := NewTicketTool()

	return NewRegistry(nil).
		Register(model.IntentGenerateCertificate, NewCertificateTool()).
		Register(model.IntentCheckVacationBalance, NewVacationTool()).
		Register(model.IntentGetPayrollDetails, NewPayrollTool()).
		Register(model.IntentSearchPolicies, policies).
		Register(model.IntentCreateTicket, tickets).
		Register(model.IntentGeneralInquiry, NewInquiryTool(policies, tickets))
}

// detail is one labelled line of a formatted tool response.
type detail struct {
	label string
	value string
}

// formatSuccess renders a tool result as a short markdown block.
func formatSuccess(action string, details []detail, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", action)
	for _, d := range details {
		fmt.Fprintf(&b, "- %s: %s\n", d.label, d.value)
	}
	if summary != "" {
		b.WriteString("\n")
		b.WriteString(summary)
	}
	return b.String()
}

func requireEmployee(tool string, task Task) error {
	if strings.TrimSpace(task.UserID) == "" {
		return Fail(tool, "employee id is required")
	}
	return nil
}
