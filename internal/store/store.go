package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = eris.New("store: session not found")

// Store persists workflow sessions. Each CLI command is a separate process
// and the HTTP surface is stateless, so sessions live here between stage
// transitions.
type Store interface {
	CreateSession(ctx context.Context) (*model.WorkflowSession, error)
	GetSession(ctx context.Context, id string) (*model.WorkflowSession, error)
	SaveSession(ctx context.Context, session *model.WorkflowSession) error
	ListSessions(ctx context.Context, limit int) ([]model.WorkflowSession, error)

	Migrate(ctx context.Context) error
	Close() error
}
