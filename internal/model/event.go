package model

import (
	"time"
)

// CaseEvent is a journal entry recorded at each case transition.
type CaseEvent struct {
	ID        string     `json:"id"`
	CaseID    string     `json:"case_id"`
	UserID    string     `json:"user_id"`
	Intent    IntentType `json:"intent"`
	Status    CaseStatus `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Sequence  uint64     `json:"sequence,omitempty"`
}

// ListCaseEventsResponse is the response for reading a case journal.
type ListCaseEventsResponse struct {
	Events       []CaseEvent `json:"events"`
	LastSequence uint64      `json:"last_sequence"`
}
