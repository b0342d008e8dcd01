package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestMemory_CreateAndGet(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	session, err := st.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StageKnowledgeBaseCreation, session.Stage)

	got, err := st.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = st.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_IsolatesCallers(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	session, err := st.CreateSession(ctx)
	require.NoError(t, err)

	session.Companies = []model.CompanyRecord{{RowID: "r1", Name: "Acme"}}
	require.NoError(t, st.SaveSession(ctx, session))

	// Mutating a fetched copy must not leak back into the store.
	got, err := st.GetSession(ctx, session.ID)
	require.NoError(t, err)
	got.Companies[0].Name = "mutated"

	fresh, err := st.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", fresh.Companies[0].Name)
}

func TestMemory_SaveMissing(t *testing.T) {
	st := NewMemory()

	err := st.SaveSession(context.Background(), &model.WorkflowSession{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}
