// Package stage invokes the external capabilities of the outreach pipeline
// one at a time: language-model completions, call placement, call analysis,
// and calendar writes. Each method is exactly one network round trip and
// never retries; retry policy belongs to the caller.
package stage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/extract"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/bland"
	"github.com/sells-group/outreach-cli/pkg/gcal"
)

// Executor wraps the three external collaborators behind typed per-stage
// operations.
type Executor struct {
	llm      anthropic.Client
	calls    bland.Client
	calendar gcal.Client
	cfg      *config.Config
}

// NewExecutor creates an Executor. The calendar client may be nil when
// scheduling is not configured; ExtractEvent still works, CreateEvent fails
// with a precondition error.
func NewExecutor(cfg *config.Config, llm anthropic.Client, calls bland.Client, cal gcal.Client) *Executor {
	return &Executor{llm: llm, calls: calls, calendar: cal, cfg: cfg}
}

// complete issues one completion and applies the shared response checks:
// transport/remote classification and empty-body detection.
func (e *Executor) complete(ctx context.Context, op, prompt string) (string, error) {
	resp, err := e.llm.Complete(ctx, anthropic.CompletionRequest{
		Model:     e.cfg.Anthropic.Model,
		MaxTokens: e.cfg.Anthropic.MaxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		return "", classify(op, err)
	}

	resp.Usage.LogCost(e.cfg.Anthropic.Model, op)

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", newError(KindEmptyResponse, op, "model returned an empty completion")
	}
	return text, nil
}

// GenerateKnowledgeBase produces the free-text description of the calling
// company used as context on outreach calls.
func (e *Executor) GenerateKnowledgeBase(ctx context.Context, companyURL, companyName string) (string, error) {
	return e.complete(ctx, "knowledge_base", fmt.Sprintf(knowledgeBasePrompt, companyName, companyURL))
}

// DiscoverCompanies asks the model to enumerate candidate companies for the
// user's prompt. The output is a free-text list consumed by enrichment.
func (e *Executor) DiscoverCompanies(ctx context.Context, prompt string) (string, error) {
	return e.complete(ctx, "discovery", prompt+discoveryPromptSuffix)
}

// EnrichCompanies turns a discovered company list into structured records.
func (e *Executor) EnrichCompanies(ctx context.Context, listText string) ([]model.CompanyRecord, error) {
	raw, err := e.complete(ctx, "enrichment", fmt.Sprintf(enrichmentPrompt, listText))
	if err != nil {
		return nil, err
	}
	return extract.Companies(raw)
}

// PlaceCall starts an outbound call and returns a pending outcome carrying
// the opaque call identifier. The identifier passes through untouched.
func (e *Executor) PlaceCall(ctx context.Context, phone, companyName, knowledgeBase string) (*model.CallOutcome, error) {
	resp, err := e.calls.PlaceCall(ctx, bland.CallRequest{
		PhoneNumber:   phone,
		Task:          fmt.Sprintf(callTask, companyName, knowledgeBase),
		Voice:         e.cfg.Bland.Voice,
		Language:      e.cfg.Bland.Language,
		RequestData:   map[string]string{"knowledge_base": knowledgeBase},
		Record:        e.cfg.Bland.Record,
		ReduceLatency: e.cfg.Bland.ReduceLatency,
		AMD:           e.cfg.Bland.AMD,
	})
	if err != nil {
		return nil, classify("place_call", err)
	}
	if resp.CallID == "" {
		return nil, newError(KindEmptyResponse, "place_call", "call service returned no call id")
	}

	zap.L().Info("outreach call placed",
		zap.String("call_id", resp.CallID),
		zap.String("company", companyName),
	)
	return &model.CallOutcome{CallID: resp.CallID, Status: model.CallStatusPending}, nil
}

// CheckCall fetches the current state of an in-flight call. One round trip;
// the bounded polling loop lives in the workflow controller.
func (e *Executor) CheckCall(ctx context.Context, callID string) (*model.CallOutcome, error) {
	details, err := e.calls.GetCall(ctx, callID)
	if err != nil {
		return nil, classify("check_call", err)
	}

	out := &model.CallOutcome{CallID: callID, Status: model.CallStatusPending}
	if details.Finished() {
		if details.Failed() {
			out.Status = model.CallStatusFailed
			out.Error = details.Status
			if details.ErrorMessage != "" {
				out.Error = details.ErrorMessage
			}
		} else {
			out.Status = model.CallStatusSuccess
		}
	}
	return out, nil
}

// AnalyzeCall runs post-call analysis and returns the ordered answers plus
// the summary (the last answer, by convention).
func (e *Executor) AnalyzeCall(ctx context.Context, callID string) (summary string, answers []string, err error) {
	raw, err := e.calls.Analyze(ctx, callID, bland.AnalyzeRequest{
		Goal:      analysisGoal,
		Questions: analysisQuestions,
	})
	if err != nil {
		return "", nil, classify("analyze_call", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", nil, newError(KindEmptyResponse, "analyze_call", "analysis returned an empty body")
	}

	answers, err = extract.Answers(raw)
	if err != nil {
		return "", nil, err
	}
	if len(answers) == 0 {
		return "", nil, newError(KindEmptyResponse, "analyze_call", "analysis returned no answers")
	}
	return answers[len(answers)-1], answers, nil
}

// ExtractEvent asks the model to lift a calendar event out of free-form
// note text.
func (e *Executor) ExtractEvent(ctx context.Context, noteText string) (*model.CalendarEvent, error) {
	raw, err := e.complete(ctx, "event_extraction", fmt.Sprintf(eventExtractionPrompt, noteText))
	if err != nil {
		return nil, err
	}
	return extract.Event(raw)
}

// CreateEvent commits a fully-formed event to the calendar service and
// returns a user-facing link.
func (e *Executor) CreateEvent(ctx context.Context, event *model.CalendarEvent) (string, error) {
	if e.calendar == nil {
		return "", newError(KindPreconditionNotMet, "create_event", "calendar service is not configured")
	}

	created, err := e.calendar.CreateEvent(ctx, e.cfg.Calendar.CalendarID, toCalendarEvent(event))
	if err != nil {
		return "", classify("create_event", err)
	}

	zap.L().Info("calendar event created",
		zap.String("event_id", created.ID),
		zap.String("link", created.HTMLLink),
	)
	return created.HTMLLink, nil
}

// toCalendarEvent converts the domain event into the Calendar API shape.
func toCalendarEvent(event *model.CalendarEvent) *calendar.Event {
	out := &calendar.Event{
		Summary:     event.Title,
		Location:    event.Location,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.DateTime,
			TimeZone: event.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.DateTime,
			TimeZone: event.End.TimeZone,
		},
	}

	for _, email := range event.Attendees {
		out.Attendees = append(out.Attendees, &calendar.EventAttendee{Email: email})
	}

	if len(event.Reminders) > 0 {
		out.Reminders = &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		}
		for _, r := range event.Reminders {
			out.Reminders.Overrides = append(out.Reminders.Overrides, &calendar.EventReminder{
				Method:  r.Method,
				Minutes: int64(r.Minutes),
			})
		}
	}
	return out
}
