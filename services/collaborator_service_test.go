package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/testutil"
)

func TestAddCollaborator(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Team", false)
	friend := testutil.UserID("friend")
	require.NoError(t, f.users.SyncUser(ctx, &scrapbook.User{ID: friend, Email: "Friend@Example.com"}))
	require.NoError(t, f.users.SyncUser(ctx, &scrapbook.User{ID: f.owner, Email: "owner@example.com"}))

	res, err := f.collabs.Add(ctx, f.owner, sb.ID, "friend@example.com", "Editor")
	require.NoError(t, err)
	assert.False(t, res.Pending)
	require.NotNil(t, res.Collaborator)
	assert.Equal(t, friend, res.Collaborator.UserID)
	assert.Equal(t, scrapbook.RoleEditor, res.Collaborator.Role)

	_, err = f.collabs.Add(ctx, f.owner, sb.ID, "friend@example.com", "viewer")
	assert.ErrorIs(t, err, scrapbook.ErrConflict, "second invite for the same user")

	_, err = f.collabs.Add(ctx, f.owner, sb.ID, "owner@example.com", "viewer")
	assert.ErrorIs(t, err, scrapbook.ErrConflict)

	res, err = f.collabs.Add(ctx, f.owner, sb.ID, "nobody@example.com", "viewer")
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Nil(t, res.Collaborator)

	_, err = f.collabs.Add(ctx, f.owner, sb.ID, "friend@example.com", "admin")
	assert.ErrorIs(t, err, scrapbook.ErrValidation)
	_, err = f.collabs.Add(ctx, f.owner, sb.ID, "not-an-email", "viewer")
	assert.ErrorIs(t, err, scrapbook.ErrValidation)

	_, err = f.collabs.Add(ctx, friend, sb.ID, "nobody@example.com", "viewer")
	assert.ErrorIs(t, err, scrapbook.ErrForbidden, "editors cannot invite")

	list, err := f.collabs.List(ctx, friend, sb.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOwnerRoleCollaboratorCanInvite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Team", false)
	coOwner := testutil.UserID("coowner")
	f.invite(t, sb.ID, coOwner, scrapbook.RoleOwner)

	guest := testutil.UserID("guest")
	require.NoError(t, f.users.SyncUser(ctx, &scrapbook.User{ID: guest, Email: guest + "@example.com"}))
	res, err := f.collabs.Add(ctx, coOwner, sb.ID, guest+"@example.com", "viewer")
	require.NoError(t, err)
	assert.Equal(t, coOwner, res.Collaborator.InvitedBy)
}

func TestRemoveCollaborator(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sb := f.create(t, "Team", true)
	a := testutil.UserID("a")
	b := testutil.UserID("b")
	f.invite(t, sb.ID, a, scrapbook.RoleViewer)
	f.invite(t, sb.ID, b, scrapbook.RoleViewer)

	list, err := f.collabs.List(ctx, f.owner, sb.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	idOf := map[string]string{}
	for _, c := range list {
		idOf[c.UserID] = c.ID
	}

	assert.ErrorIs(t, f.collabs.Remove(ctx, a, idOf[b]), scrapbook.ErrForbidden)
	require.NoError(t, f.collabs.Remove(ctx, a, idOf[a]), "collaborators may leave")
	require.NoError(t, f.collabs.Remove(ctx, f.owner, idOf[b]))
	assert.ErrorIs(t, f.collabs.Remove(ctx, f.owner, idOf[b]), scrapbook.ErrNotFound)

	_, err = f.collabs.List(ctx, f.stranger, sb.ID)
	assert.ErrorIs(t, err, scrapbook.ErrForbidden, "public scrapbooks do not expose their collaborators")
}
