package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	session, err := st.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, model.StageKnowledgeBaseCreation, session.Stage)

	got, err := st.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, model.StageKnowledgeBaseCreation, got.Stage)
	assert.Empty(t, got.Companies)
}

func TestSQLite_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetSession(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	session, err := st.CreateSession(ctx)
	require.NoError(t, err)

	session.Stage = model.StageLeadReview
	session.KnowledgeBase = "We sell widgets."
	session.SelectedRowID = "row-1"
	session.Companies = []model.CompanyRecord{
		{
			RowID:      "row-1",
			Name:       "Acme Robotics",
			SalesEmail: "sales@acme.example",
			Notes:      "line one\n\nline two",
			Incomplete: false,
		},
		{RowID: "row-2", Incomplete: true},
	}
	session.SetCall("row-1", model.CallOutcome{
		CallID:  "call-1",
		Status:  model.CallStatusSuccess,
		Summary: "Agreed to an intro call.",
	})
	session.LastError = "enrichment failed"
	session.LastErrorRaw = `[{"name": "Acme`

	require.NoError(t, st.SaveSession(ctx, session))

	got, err := st.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageLeadReview, got.Stage)
	assert.Equal(t, "We sell widgets.", got.KnowledgeBase)
	assert.Equal(t, "row-1", got.SelectedRowID)
	require.Len(t, got.Companies, 2)
	assert.Equal(t, "Acme Robotics", got.Companies[0].Name)
	assert.Equal(t, "line one\n\nline two", got.Companies[0].Notes)
	assert.True(t, got.Companies[1].Incomplete)

	outcome, ok := got.Call("row-1")
	require.True(t, ok)
	assert.Equal(t, model.CallStatusSuccess, outcome.Status)
	assert.Equal(t, "Agreed to an intro call.", outcome.Summary)

	assert.Equal(t, "enrichment failed", got.LastError)
	assert.Equal(t, `[{"name": "Acme`, got.LastErrorRaw)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestSQLite_SaveMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.SaveSession(context.Background(), &model.WorkflowSession{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListSessions(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.CreateSession(ctx)
	require.NoError(t, err)
	second, err := st.CreateSession(ctx)
	require.NoError(t, err)

	// Touch the first session so it becomes the most recently updated.
	first.KnowledgeBase = "updated"
	require.NoError(t, st.SaveSession(ctx, first))

	sessions, err := st.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)

	limited, err := st.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, first.ID, limited[0].ID)
}
