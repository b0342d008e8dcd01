// Package workflow sequences the outreach pipeline's stages and owns all
// session mutation. Stage and extraction failures never escape this
// package: they are recorded on the session as a user-visible message, the
// workflow holds at its current stage, and the session stays usable.
package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/extract"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/stage"
	"github.com/sells-group/outreach-cli/internal/store"
)

// ErrWrongStage is returned when an operation is invoked from a stage that
// does not allow it.
var ErrWrongStage = eris.New("workflow: operation not allowed in current stage")

// ErrRowNotFound is returned for an unknown company row id.
var ErrRowNotFound = eris.New("workflow: company row not found")

// StageRunner is the slice of the stage executor the controller drives.
type StageRunner interface {
	GenerateKnowledgeBase(ctx context.Context, companyURL, companyName string) (string, error)
	DiscoverCompanies(ctx context.Context, prompt string) (string, error)
	EnrichCompanies(ctx context.Context, listText string) ([]model.CompanyRecord, error)
	PlaceCall(ctx context.Context, phone, companyName, knowledgeBase string) (*model.CallOutcome, error)
	CheckCall(ctx context.Context, callID string) (*model.CallOutcome, error)
	AnalyzeCall(ctx context.Context, callID string) (summary string, answers []string, err error)
	ExtractEvent(ctx context.Context, noteText string) (*model.CalendarEvent, error)
	CreateEvent(ctx context.Context, event *model.CalendarEvent) (string, error)
}

// Controller is the workflow state machine over persisted sessions.
type Controller struct {
	store store.Store
	exec  StageRunner
	cfg   config.WorkflowConfig
}

// NewController creates a Controller.
func NewController(st store.Store, exec StageRunner, cfg config.WorkflowConfig) *Controller {
	return &Controller{store: st, exec: exec, cfg: cfg}
}

// NewSession creates a session at the knowledge-base creation stage.
func (c *Controller) NewSession(ctx context.Context) (*model.WorkflowSession, error) {
	return c.store.CreateSession(ctx)
}

// Session returns the current state of a session.
func (c *Controller) Session(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	return c.store.GetSession(ctx, sessionID)
}

// Sessions lists recent sessions.
func (c *Controller) Sessions(ctx context.Context) ([]model.WorkflowSession, error) {
	return c.store.ListSessions(ctx, c.cfg.SessionListLimit)
}

// CreateKnowledgeBase generates the knowledge-base text and advances the
// session to review. On failure the session holds at creation with the
// error visible.
func (c *Controller) CreateKnowledgeBase(ctx context.Context, sessionID, companyURL, companyName string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != model.StageKnowledgeBaseCreation && session.Stage != model.StageKnowledgeBaseReview {
		return nil, ErrWrongStage
	}

	text, err := c.exec.GenerateKnowledgeBase(ctx, companyURL, companyName)
	if err != nil {
		return c.holdWithError(ctx, session, err)
	}

	session.KnowledgeBase = text
	session.Stage = model.StageKnowledgeBaseReview
	return c.advance(ctx, session)
}

// ConfirmKnowledgeBase accepts the (possibly user-edited) knowledge base
// and moves the session to lead discovery. This transition is
// user-confirmed, not data-dependent.
func (c *Controller) ConfirmKnowledgeBase(ctx context.Context, sessionID, editedText string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != model.StageKnowledgeBaseReview {
		return nil, ErrWrongStage
	}

	if trimmed := strings.TrimSpace(editedText); trimmed != "" {
		session.KnowledgeBase = trimmed
	}
	session.Stage = model.StageLeadDiscovery
	return c.advance(ctx, session)
}

// DiscoverLeads runs the two chained completions (enumeration, then
// enrichment) and replaces the session's company table on success. An empty
// extraction is a soft failure: the session holds at lead discovery for
// re-submission. The table swap is all-or-nothing; a failure anywhere
// leaves the existing table untouched.
func (c *Controller) DiscoverLeads(ctx context.Context, sessionID, prompt string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != model.StageLeadDiscovery && session.Stage != model.StageLeadReview {
		return nil, ErrWrongStage
	}

	listText, err := c.exec.DiscoverCompanies(ctx, prompt)
	if err != nil {
		return c.holdWithError(ctx, session, err)
	}

	records, err := c.exec.EnrichCompanies(ctx, listText)
	if err != nil {
		return c.holdWithError(ctx, session, err)
	}
	if len(records) == 0 {
		session.Stage = model.StageLeadDiscovery
		return c.holdWithError(ctx, session, eris.New("no companies extracted; adjust the prompt and re-submit"))
	}

	session.Companies = records
	session.Calls = nil
	session.SelectedRowID = ""
	session.Stage = model.StageLeadReview
	return c.advance(ctx, session)
}

// UpdateNotes replaces a row's notes with user-edited text. Notes are
// append-only from the pipeline's side but freely user-editable.
func (c *Controller) UpdateNotes(ctx context.Context, sessionID, rowID, notes string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	row := session.Company(rowID)
	if row == nil {
		return nil, ErrRowNotFound
	}
	row.Notes = notes
	return c.advance(ctx, session)
}

// SelectCompany marks a row as the target for calls and scheduling.
func (c *Controller) SelectCompany(ctx context.Context, sessionID, rowID string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Company(rowID) == nil {
		return nil, ErrRowNotFound
	}
	session.SelectedRowID = rowID
	return c.advance(ctx, session)
}

// PlaceCall places an outreach call for a row, waits (bounded, with
// backoff) for a terminal outcome, analyzes the call, and appends the
// summary to the row's notes. A failed or timed-out call is recorded as a
// note too — the outcome is never dropped. The session returns to lead
// review either way.
func (c *Controller) PlaceCall(ctx context.Context, sessionID, rowID, phone string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != model.StageLeadReview {
		return nil, ErrWrongStage
	}

	row := session.Company(rowID)
	if row == nil {
		return nil, ErrRowNotFound
	}
	if prior, ok := session.Call(rowID); ok && !prior.Terminal() {
		return c.holdWithError(ctx, session, eris.New("a call for this company is still in flight"))
	}

	outcome, err := c.exec.PlaceCall(ctx, phone, row.Name, session.KnowledgeBase)
	if err != nil {
		return c.holdWithError(ctx, session, err)
	}

	// Persist the pending outcome before waiting so the in-flight call is
	// visible to the user.
	session.SetCall(rowID, *outcome)
	session.SelectedRowID = rowID
	session.Stage = model.StageOutreachCall
	if _, err := c.advance(ctx, session); err != nil {
		return nil, err
	}

	final := c.waitForCall(ctx, outcome.CallID)

	// Re-fetch to build the post-call state from what was persisted; the
	// note merge and stage restore then commit together.
	session, err = c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	row = session.Company(rowID)
	if row == nil {
		return nil, ErrRowNotFound
	}

	if final.Status == model.CallStatusSuccess {
		summary, _, aerr := c.exec.AnalyzeCall(ctx, final.CallID)
		if aerr != nil {
			final.Summary = ""
			final.Error = aerr.Error()
			zap.L().Warn("call analysis failed",
				zap.String("call_id", final.CallID),
				zap.Error(aerr),
			)
			row.AppendNote("Call completed but analysis failed: " + userMessage(aerr))
		} else {
			final.Summary = summary
			row.AppendNote(summary)
		}
	} else {
		row.AppendNote("Call did not complete: " + final.Error)
	}

	session.SetCall(rowID, *final)
	session.Stage = model.StageLeadReview
	return c.advance(ctx, session)
}

// ScheduleMeeting extracts a calendar event from the selected row's notes
// and commits it to the calendar. Scheduling requires non-empty notes. The
// session moves to meeting scheduling while the write is in flight and
// returns to lead review whether or not the event lands, so a failed
// attempt never blocks calls or re-discovery; there is no partial calendar
// write.
func (c *Controller) ScheduleMeeting(ctx context.Context, sessionID, rowID string) (*model.WorkflowSession, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != model.StageLeadReview {
		return nil, ErrWrongStage
	}

	row := session.Company(rowID)
	if row == nil {
		return nil, ErrRowNotFound
	}
	if strings.TrimSpace(row.Notes) == "" {
		return c.holdWithError(ctx, session, &stage.Error{
			Kind:   stage.KindPreconditionNotMet,
			Op:     "schedule",
			Detail: "company has no call notes; place a call before scheduling",
		})
	}

	// Persist the scheduling stage before the extract so the in-flight
	// attempt is visible.
	session.Stage = model.StageMeetingScheduling
	if _, err := c.advance(ctx, session); err != nil {
		return nil, err
	}

	event, err := c.exec.ExtractEvent(ctx, row.Notes)
	if err != nil {
		session.Stage = model.StageLeadReview
		return c.holdWithError(ctx, session, err)
	}

	link, err := c.exec.CreateEvent(ctx, event)
	if err != nil {
		session.Stage = model.StageLeadReview
		return c.holdWithError(ctx, session, err)
	}

	row.AppendNote("Meeting scheduled: " + link)
	session.Stage = model.StageLeadReview
	return c.advance(ctx, session)
}

// waitForCall polls for a terminal call outcome with exponential backoff
// under the configured timeout. It always returns a terminal outcome: a
// timeout or poll failure is reported as a failed outcome, never as a hang.
func (c *Controller) waitForCall(ctx context.Context, callID string) *model.CallOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout())
	defer cancel()

	interval := c.cfg.PollInitial()
	for {
		outcome, err := c.exec.CheckCall(ctx, callID)
		if err == nil && outcome.Terminal() {
			return outcome
		}
		if err != nil && ctx.Err() == nil {
			return &model.CallOutcome{
				CallID: callID,
				Status: model.CallStatusFailed,
				Error:  userMessage(err),
			}
		}

		select {
		case <-ctx.Done():
			tErr := &stage.Error{
				Kind:   stage.KindTimeout,
				Op:     "wait_for_call",
				Detail: "timed out waiting for call to complete",
			}
			return &model.CallOutcome{
				CallID: callID,
				Status: model.CallStatusFailed,
				Error:  tErr.Error(),
			}
		case <-time.After(interval):
		}

		interval *= 2
		if limit := c.cfg.PollCap(); interval > limit {
			interval = limit
		}
	}
}

// advance persists the session with its error state cleared.
func (c *Controller) advance(ctx context.Context, session *model.WorkflowSession) (*model.WorkflowSession, error) {
	session.LastError = ""
	session.LastErrorRaw = ""
	if err := c.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// holdWithError records a stage failure on the session without advancing
// it. The failure is returned to the caller through the session state, not
// as an error: the workflow remains usable.
func (c *Controller) holdWithError(ctx context.Context, session *model.WorkflowSession, cause error) (*model.WorkflowSession, error) {
	session.LastError = userMessage(cause)
	session.LastErrorRaw = rawText(cause)

	zap.L().Warn("stage failed; holding workflow",
		zap.String("session", session.ID),
		zap.String("stage", string(session.Stage)),
		zap.Error(cause),
	)

	if err := c.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// userMessage renders an error for the session's visible message.
func userMessage(err error) string {
	var sErr *stage.Error
	if errors.As(err, &sErr) && sErr.Retryable {
		return sErr.Error() + " (re-submitting may help)"
	}
	return err.Error()
}

// rawText pulls the retained model text out of an extraction failure.
func rawText(err error) string {
	var xErr *extract.Error
	if errors.As(err, &xErr) {
		return xErr.Raw
	}
	return ""
}
