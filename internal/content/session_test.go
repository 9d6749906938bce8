package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginCreateUsesCollectionDefaults(t *testing.T) {
	sess := BeginCreate(Services, 4)
	assert.Equal(t, ModeNew, sess.Mode())
	draft := sess.Draft()
	assert.Equal(t, "Code2", draft.Icon)
	assert.Equal(t, 4, draft.SortOrder)
	assert.Empty(t, draft.ID)

	ind := BeginCreate(Industries, 1).Draft()
	assert.Equal(t, "Building2", ind.Icon)
}

func TestSetFieldCoercion(t *testing.T) {
	sess := BeginCreate(Services, 1)

	sess.SetField("title", "Consulting")
	sess.SetField("sort_order", "7")
	assert.Equal(t, "Consulting", sess.Draft().Title)
	assert.Equal(t, 7, sess.Draft().SortOrder)

	// Loose numeric coercion: non-numeric input becomes 0, not an error.
	sess.SetField("sort_order", "seven")
	assert.Equal(t, 0, sess.Draft().SortOrder)

	// Unknown columns are ignored.
	sess.SetField("bogus", "x")
	assert.Equal(t, "Consulting", sess.Draft().Title)

	emp := BeginCreate(Employees, 1)
	emp.SetField("photo_url", "https://cdn/x.jpg")
	require.NotNil(t, emp.Draft().PhotoURL)
	emp.SetField("photo_url", "")
	assert.Nil(t, emp.Draft().PhotoURL)
}

func TestCommitValidatesBeforeAnyRoundTrip(t *testing.T) {
	be := newFakeBackend()
	client := NewClient(be, Stats)
	sess := BeginCreate(Stats, 1)
	sess.SetField("value", "99%")
	// label left empty

	err := sess.Commit(context.Background(), client)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "Label")
	assert.Equal(t, 0, be.calls["total"])
}

func TestCommitInsertsNewAndUpdatesExisting(t *testing.T) {
	be := newFakeBackend()
	client := NewClient(be, Services)
	ctx := context.Background()

	sess := BeginCreate(Services, 1)
	sess.SetField("title", "Consulting")
	sess.SetField("description", "Advice")
	require.NoError(t, sess.Commit(ctx, client))
	assert.Equal(t, 1, be.calls["insert"])

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	edit := BeginEdit(Services, list[0])
	assert.Equal(t, ModeExisting, edit.Mode())
	edit.SetField("title", "Cloud Consulting")
	require.NoError(t, edit.Commit(ctx, client))
	assert.Equal(t, 1, be.calls["update"])
	assert.Equal(t, 1, be.calls["insert"])

	list, err = client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cloud Consulting", list[0].Title)
}

func TestCommitFailureLeavesDraftIntactForRetry(t *testing.T) {
	be := newFakeBackend()
	client := NewClient(be, Services)
	ctx := context.Background()

	sess := BeginCreate(Services, 1)
	sess.SetField("title", "Consulting")

	be.fail = errors.New("network down")
	require.Error(t, sess.Commit(ctx, client))

	// No rollback of field edits; a retry sends the same draft.
	be.fail = nil
	require.NoError(t, sess.Commit(ctx, client))
	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Consulting", list[0].Title)
}
