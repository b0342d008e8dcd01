package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
// Sessions are deep-copied on the way in and out so callers never share
// mutable state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.WorkflowSession
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*model.WorkflowSession)}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateSession(ctx context.Context) (*model.WorkflowSession, error) {
	now := time.Now().UTC()
	session := &model.WorkflowSession{
		ID:        uuid.NewString(),
		Stage:     model.StageKnowledgeBaseCreation,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return session, nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*model.WorkflowSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(session), nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, session *model.WorkflowSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrNotFound
	}
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) ListSessions(ctx context.Context, limit int) ([]model.WorkflowSession, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]model.WorkflowSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, *copySession(session))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func copySession(session *model.WorkflowSession) *model.WorkflowSession {
	raw, err := json.Marshal(session)
	if err != nil {
		panic(eris.Wrap(err, "memory: marshal session"))
	}
	var out model.WorkflowSession
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(eris.Wrap(err, "memory: unmarshal session"))
	}
	return &out
}
