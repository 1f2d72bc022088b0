package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/models"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("registers the authenticated principal", func(t *testing.T) {
		svc, repos := newTestService(t, Config{})

		out, err := svc.CreateUser(ctx, map[string]any{"username": "alice"}, actorContext("auth0|alice"))
		require.NoError(t, err)
		require.Equal(t, "alice", out.Username)
		require.Equal(t, "auth0|alice", out.ExternalID)
		require.NotEmpty(t, out.ID)

		stored, err := repos.Users.FindByExternalID(ctx, "auth0|alice")
		require.NoError(t, err)
		require.Equal(t, "alice", stored.Username)
	})

	t.Run("anonymous actor rejected", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})

		_, err := svc.CreateUser(ctx, map[string]any{"username": "alice"}, anonymousContext())
		var forbidden *models.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
	})

	t.Run("second registration for the same subject rejected", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})
		registerUser(t, svc, "auth0|alice", "alice")

		_, err := svc.CreateUser(ctx, map[string]any{"username": "alice2"}, actorContext("auth0|alice"))
		var conflict *models.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("username bounds enforced", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})

		_, err := svc.CreateUser(ctx, map[string]any{"username": "ab"}, actorContext("auth0|alice"))
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "username", verr.Fields[0].Path)
	})

	t.Run("unknown input fields rejected", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})

		_, err := svc.CreateUser(ctx, map[string]any{"username": "alice", "isAdmin": true}, actorContext("auth0|alice"))
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "isAdmin", verr.Fields[0].Path)
	})
}

func TestGetSelf(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the actor's record", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})
		created := registerUser(t, svc, "auth0|alice", "alice")

		out, err := svc.GetSelf(ctx, map[string]any{}, actorContext("auth0|alice"))
		require.NoError(t, err)
		require.Equal(t, created.ID, out.ID)
	})

	t.Run("unregistered subject is not found", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})

		_, err := svc.GetSelf(ctx, map[string]any{}, actorContext("auth0|ghost"))
		var notFound *models.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestUpdateSelf(t *testing.T) {
	ctx := context.Background()

	t.Run("renames the actor", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})
		registerUser(t, svc, "auth0|alice", "alice")

		out, err := svc.UpdateSelf(ctx, map[string]any{"username": "alice2"}, actorContext("auth0|alice"))
		require.NoError(t, err)
		require.Equal(t, "alice2", out.Username)
	})

	t.Run("omitted username keeps the current value", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})
		registerUser(t, svc, "auth0|alice", "alice")

		out, err := svc.UpdateSelf(ctx, map[string]any{}, actorContext("auth0|alice"))
		require.NoError(t, err)
		require.Equal(t, "alice", out.Username)
	})
}

func TestDeleteSelf(t *testing.T) {
	ctx := context.Background()

	t.Run("soft deletes and closes memberships", func(t *testing.T) {
		svc, repos := newTestService(t, Config{})
		registerUser(t, svc, "auth0|owner", "owner")
		bob := registerUser(t, svc, "auth0|bob", "bob")
		org := createTestOrganization(t, svc, "auth0|owner", "acme")
		addActiveMember(t, svc, "auth0|owner", "auth0|bob", org.ID, bob.ID, models.RoleMember)

		out, err := svc.DeleteSelf(ctx, map[string]any{}, actorContext("auth0|bob"))
		require.NoError(t, err)
		require.NotNil(t, out.DeletedAt)

		// external id lookup no longer resolves
		_, err = svc.GetSelf(ctx, map[string]any{}, actorContext("auth0|bob"))
		var notFound *models.NotFoundError
		require.ErrorAs(t, err, &notFound)

		// membership was closed out
		page, err := repos.Memberships.ListByOrganization(ctx, mustUUID(t, org.ID), pageAll())
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
	})

	t.Run("refused while owning organizations", func(t *testing.T) {
		svc, _ := newTestService(t, Config{})
		registerUser(t, svc, "auth0|owner", "owner")
		createTestOrganization(t, svc, "auth0|owner", "acme")

		_, err := svc.DeleteSelf(ctx, map[string]any{}, actorContext("auth0|owner"))
		var conflict *models.ConflictError
		require.ErrorAs(t, err, &conflict)
	})
}

func TestListSelfOrganizations(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t, Config{})
	registerUser(t, svc, "auth0|alice", "alice")
	createTestOrganization(t, svc, "auth0|alice", "acme")
	createTestOrganization(t, svc, "auth0|alice", "globex")

	out, err := svc.ListSelfOrganizations(ctx, map[string]any{}, actorContext("auth0|alice"))
	require.NoError(t, err)
	require.Len(t, out.Items, 2)

	t.Run("anonymous actor rejected", func(t *testing.T) {
		_, err := svc.ListSelfOrganizations(ctx, map[string]any{}, anonymousContext())
		var forbidden *models.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
	})
}
