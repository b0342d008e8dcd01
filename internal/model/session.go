package model

import "time"

// Stage identifies where a session sits in the outreach workflow.
type Stage string

const (
	StageKnowledgeBaseCreation Stage = "knowledge_base_creation"
	StageKnowledgeBaseReview   Stage = "knowledge_base_review"
	StageLeadDiscovery         Stage = "lead_discovery"
	StageLeadReview            Stage = "lead_review"
	StageOutreachCall          Stage = "outreach_call"
	StageMeetingScheduling     Stage = "meeting_scheduling"
)

// CallStatus is the lifecycle state of an outreach call.
type CallStatus string

const (
	CallStatusPending CallStatus = "pending"
	CallStatusSuccess CallStatus = "success"
	CallStatusFailed  CallStatus = "failed"
)

// CallOutcome tracks a single outreach call for a company row.
type CallOutcome struct {
	CallID  string     `json:"call_id"`
	Status  CallStatus `json:"status"`
	Summary string     `json:"summary,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Terminal reports whether the outcome has reached a final status. A new
// call for the same row may only replace a terminal outcome.
func (o CallOutcome) Terminal() bool {
	return o.Status == CallStatusSuccess || o.Status == CallStatusFailed
}

// WorkflowSession holds all per-session state: the workflow stage, the
// company table, the knowledge base, and per-row call outcomes.
type WorkflowSession struct {
	ID            string                 `json:"id"`
	Stage         Stage                  `json:"stage"`
	KnowledgeBase string                 `json:"knowledge_base,omitempty"`
	Companies     []CompanyRecord        `json:"companies"`
	SelectedRowID string                 `json:"selected_row_id,omitempty"`
	Calls         map[string]CallOutcome `json:"calls,omitempty"`

	// LastError is the user-visible message from the most recent failed
	// stage. Stage failures never advance the workflow; they land here and
	// the session stays usable. LastErrorRaw carries the repaired model
	// text behind an extraction failure so the user can diagnose or
	// correct the upstream prompt.
	LastError    string `json:"last_error,omitempty"`
	LastErrorRaw string `json:"last_error_raw,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Company returns a pointer to the row with the given RowID, or nil.
func (s *WorkflowSession) Company(rowID string) *CompanyRecord {
	for i := range s.Companies {
		if s.Companies[i].RowID == rowID {
			return &s.Companies[i]
		}
	}
	return nil
}

// Call returns the tracked outcome for a row, if any.
func (s *WorkflowSession) Call(rowID string) (CallOutcome, bool) {
	if s.Calls == nil {
		return CallOutcome{}, false
	}
	out, ok := s.Calls[rowID]
	return out, ok
}

// SetCall records the outcome for a row, allocating the map on first use.
func (s *WorkflowSession) SetCall(rowID string, out CallOutcome) {
	if s.Calls == nil {
		s.Calls = make(map[string]CallOutcome)
	}
	s.Calls[rowID] = out
}
