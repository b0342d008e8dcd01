package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id             TEXT PRIMARY KEY,
	stage          TEXT NOT NULL,
	knowledge_base TEXT NOT NULL DEFAULT '',
	companies      TEXT NOT NULL DEFAULT '[]',
	calls          TEXT NOT NULL DEFAULT '{}',
	selected_row   TEXT NOT NULL DEFAULT '',
	last_error     TEXT NOT NULL DEFAULT '',
	last_error_raw TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_stage ON sessions(stage);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(ctx context.Context) (*model.WorkflowSession, error) {
	now := time.Now().UTC()
	session := &model.WorkflowSession{
		ID:        uuid.NewString(),
		Stage:     model.StageKnowledgeBaseCreation,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, stage, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		session.ID, string(session.Stage), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create session")
	}
	return session, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.WorkflowSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, stage, knowledge_base, companies, calls, selected_row, last_error, last_error_raw, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get session")
	}
	return session, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, session *model.WorkflowSession) error {
	companies, err := json.Marshal(session.Companies)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal companies")
	}
	calls, err := json.Marshal(session.Calls)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal calls")
	}

	session.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET stage = ?, knowledge_base = ?, companies = ?, calls = ?, selected_row = ?, last_error = ?, last_error_raw = ?, updated_at = ?
		 WHERE id = ?`,
		string(session.Stage), session.KnowledgeBase, string(companies), string(calls),
		session.SelectedRowID, session.LastError, session.LastErrorRaw, session.UpdatedAt, session.ID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: save session")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]model.WorkflowSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, knowledge_base, companies, calls, selected_row, last_error, last_error_raw, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
	}
	defer rows.Close()

	var sessions []model.WorkflowSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan session")
		}
		sessions = append(sessions, *session)
	}
	return sessions, eris.Wrap(rows.Err(), "sqlite: list sessions")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*model.WorkflowSession, error) {
	var session model.WorkflowSession
	var stage, companies, calls string

	err := r.Scan(&session.ID, &stage, &session.KnowledgeBase, &companies, &calls,
		&session.SelectedRowID, &session.LastError, &session.LastErrorRaw, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}

	session.Stage = model.Stage(stage)
	if err := json.Unmarshal([]byte(companies), &session.Companies); err != nil {
		return nil, eris.Wrap(err, "unmarshal companies")
	}
	if err := json.Unmarshal([]byte(calls), &session.Calls); err != nil {
		return nil, eris.Wrap(err, "unmarshal calls")
	}
	return &session, nil
}
