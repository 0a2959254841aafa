package model

// ChatRequest is the request for one conversational turn.
type ChatRequest struct {
	Message string `json:"message"`
	// Dispatch asks the API to open cases immediately when the turn requires one.
	Dispatch bool `json:"dispatch,omitempty"`
}

// ChatReply is the outcome of one conversational turn.
type ChatReply struct {
	Response     string     `json:"response"`
	RequiresCase bool       `json:"requires_case"`
	CaseType     IntentType `json:"case_type,omitempty"`
	ThreadID     string     `json:"thread_id,omitempty"`
	Fallback     bool       `json:"fallback,omitempty"`
}

// ChatResponse is the API response for a chat turn.
type ChatResponse struct {
	ChatReply
	Cases []CaseView `json:"cases,omitempty"`
}

// ProcessRequest is the request to open cases from free text.
type ProcessRequest struct {
	Text string `json:"text"`
}

// CaseView is a case plus the per-case failure, if any.
type CaseView struct {
	Case
	Error string `json:"error,omitempty"`
}

// ProcessResponse is the response after dispatching user input.
type ProcessResponse struct {
	Cases []CaseView `json:"cases"`
}

// ListCasesResponse is the response for listing a user's cases.
type ListCasesResponse struct {
	Cases []Case `json:"cases"`
	Total int    `json:"total"`
}
