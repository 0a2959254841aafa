// Package model defines data structures for the HR service desk.
package model

import (
	"errors"
	"fmt"
	"time"
)

// IntentType is the closed set of request categories a case can carry.
type IntentType string

const (
	IntentGenerateCertificate  IntentType = "generate_certificate"
	IntentCheckVacationBalance IntentType = "check_vacation_balance"
	IntentGetPayrollDetails    IntentType = "get_payroll_details"
	IntentSearchPolicies       IntentType = "search_policies"
	IntentCreateTicket         IntentType = "create_ticket"
	IntentGeneralInquiry       IntentType = "general_inquiry"
)

// IntentTypes lists every known intent type.
var IntentTypes = []IntentType{
	IntentGenerateCertificate,
	IntentCheckVacationBalance,
	IntentGetPayrollDetails,
	IntentSearchPolicies,
	IntentCreateTicket,
	IntentGeneralInquiry,
}

// Valid reports whether t is a known intent type.
func (t IntentType) Valid() bool {
	for _, known := range IntentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseIntentType maps s onto a known intent type, falling back to
// IntentGeneralInquiry for anything unrecognised.
func ParseIntentType(s string) IntentType {
	t := IntentType(s)
	if t.Valid() {
		return t
	}
	return IntentGeneralInquiry
}

// Intent is an ephemeral classification result, consumed to build a Case.
type Intent struct {
	Type        IntentType `json:"intent_type"`
	Description string     `json:"description"`
}

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "open"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusCompleted  CaseStatus = "completed"
	CaseStatusError      CaseStatus = "error"
)

// Terminal reports whether no further transitions are allowed from s.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusCompleted || s == CaseStatusError
}

// Valid reports whether s is a known status.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusInProgress, CaseStatusCompleted, CaseStatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next advances the lifecycle.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	switch s {
	case CaseStatusOpen:
		return next == CaseStatusInProgress || next.Terminal()
	case CaseStatusInProgress:
		return next.Terminal()
	default:
		return false
	}
}

var (
	// ErrInvalidTransition is returned when a status update would regress a case.
	ErrInvalidTransition = errors.New("invalid case status transition")
	// ErrResponseRequired is returned when a terminal update carries no response.
	ErrResponseRequired = errors.New("terminal status requires an agent response")
	// ErrUnexpectedResponse is returned when a non-terminal update carries a response.
	ErrUnexpectedResponse = errors.New("agent response only allowed on terminal status")
	// ErrThreadAlreadySet is returned when a case already references another thread.
	ErrThreadAlreadySet = errors.New("case thread already set")
)

// Case is a persisted unit of HR work derived from one Intent.
type Case struct {
	ID            string     `json:"case_id"`
	UserID        string     `json:"user_id"`
	Intent        IntentType `json:"intent"`
	Description   string     `json:"description"`
	Status        CaseStatus `json:"status"`
	ThreadID      string     `json:"thread_id,omitempty"`
	AgentResponse *string    `json:"agent_response"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// NewCase builds an open case for intent.
func NewCase(id, userID string, intent Intent, now time.Time) *Case {
	return &Case{
		ID:          id,
		UserID:      userID,
		Intent:      intent.Type,
		Description: intent.Description,
		Status:      CaseStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Response returns the agent response or the empty string.
func (c *Case) Response() string {
	if c.AgentResponse == nil {
		return ""
	}
	return *c.AgentResponse
}

// Clone returns a deep copy of c.
func (c *Case) Clone() *Case {
	out := *c
	if c.AgentResponse != nil {
		resp := *c.AgentResponse
		out.AgentResponse = &resp
	}
	if c.ClosedAt != nil {
		closed := *c.ClosedAt
		out.ClosedAt = &closed
	}
	return &out
}

// StatusUpdate describes one lifecycle transition.
type StatusUpdate struct {
	Status   CaseStatus
	Response *string
	ThreadID string
}

// InProgress builds the update that hands a case to its handler.
func InProgress() StatusUpdate {
	return StatusUpdate{Status: CaseStatusInProgress}
}

// Completed builds a successful terminal update.
func Completed(response string) StatusUpdate {
	return StatusUpdate{Status: CaseStatusCompleted, Response: &response}
}

// Failed builds an error terminal update.
func Failed(response string) StatusUpdate {
	return StatusUpdate{Status: CaseStatusError, Response: &response}
}

// WithThread attaches a thread reference to the update.
func (u StatusUpdate) WithThread(threadID string) StatusUpdate {
	u.ThreadID = threadID
	return u
}

// Apply validates u against the lifecycle and mutates c in place. Repeating
// the current terminal status is a no-op so callers may retry safely; the
// first response recorded wins.
func (c *Case) Apply(u StatusUpdate, now time.Time) error {
	if c.Status.Terminal() && u.Status == c.Status {
		return nil
	}
	if !c.Status.CanTransitionTo(u.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, u.Status)
	}
	if u.Status.Terminal() && u.Response == nil {
		return ErrResponseRequired
	}
	if !u.Status.Terminal() && u.Response != nil {
		return ErrUnexpectedResponse
	}
	if u.ThreadID != "" && c.ThreadID != "" && c.ThreadID != u.ThreadID {
		return fmt.Errorf("%w: %s", ErrThreadAlreadySet, c.ThreadID)
	}

	if u.ThreadID != "" {
		c.ThreadID = u.ThreadID
	}
	c.Status = u.Status
	c.UpdatedAt = now
	if u.Status.Terminal() {
		resp := *u.Response
		c.AgentResponse = &resp
		closed := now
		c.ClosedAt = &closed
	}
	return nil
}
