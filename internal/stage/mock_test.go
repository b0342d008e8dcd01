package stage

import (
	"context"

	"github.com/stretchr/testify/mock"
	"google.golang.org/api/calendar/v3"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/bland"
	"github.com/sells-group/outreach-cli/pkg/gcal"
)

// --- Anthropic Mock ---

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, req anthropic.CompletionRequest) (*anthropic.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Completion), args.Error(1)
}

// --- Bland Mock ---

type mockBland struct {
	mock.Mock
}

func (m *mockBland) PlaceCall(ctx context.Context, req bland.CallRequest) (*bland.CallResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bland.CallResponse), args.Error(1)
}

func (m *mockBland) GetCall(ctx context.Context, callID string) (*bland.CallDetails, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bland.CallDetails), args.Error(1)
}

func (m *mockBland) Analyze(ctx context.Context, callID string, req bland.AnalyzeRequest) (string, error) {
	args := m.Called(ctx, callID, req)
	return args.String(0), args.Error(1)
}

// --- Calendar Mock ---

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*gcal.CreatedEvent, error) {
	args := m.Called(ctx, calendarID, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.CreatedEvent), args.Error(1)
}
