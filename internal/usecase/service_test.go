package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/schema"
	"github.com/wolfeidau/tenantd/internal/store/memory"
)

func TestCustomFieldsRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("snake_case naming applies to storage only", func(t *testing.T) {
		svc, repos := newTestService(t, Config{
			CustomFields: map[string]schema.Config{
				EntityUser: {
					Custom: schema.Definition{"displayName": {Type: schema.TypeString}},
					Naming: schema.NamingSnakeCase,
				},
			},
		})

		out, err := svc.CreateUser(ctx, map[string]any{
			"username":    "alice",
			"displayName": "Alice Archer",
		}, actorContext("auth0|alice"))
		require.NoError(t, err)
		require.Equal(t, "Alice Archer", out.Custom["displayName"])

		stored, err := repos.Users.FindByExternalID(ctx, "auth0|alice")
		require.NoError(t, err)
		require.Equal(t, "Alice Archer", stored.Custom["display_name"])
		require.NotContains(t, stored.Custom, "displayName")
	})

	t.Run("column mapping beats the naming strategy", func(t *testing.T) {
		svc, repos := newTestService(t, Config{
			CustomFields: map[string]schema.Config{
				EntityUser: {
					Custom:        schema.Definition{"displayName": {Type: schema.TypeString}},
					Naming:        schema.NamingSnakeCase,
					ColumnMapping: map[string]string{"displayName": "dn"},
				},
			},
		})

		_, err := svc.CreateUser(ctx, map[string]any{
			"username":    "alice",
			"displayName": "Alice Archer",
		}, actorContext("auth0|alice"))
		require.NoError(t, err)

		stored, err := repos.Users.FindByExternalID(ctx, "auth0|alice")
		require.NoError(t, err)
		require.Equal(t, "Alice Archer", stored.Custom["dn"])
	})

	t.Run("required custom field enforced", func(t *testing.T) {
		svc, _ := newTestService(t, Config{
			CustomFields: map[string]schema.Config{
				EntityUser: {
					Custom: schema.Definition{"displayName": {Type: schema.TypeString, Required: true}},
				},
			},
		})

		_, err := svc.CreateUser(ctx, map[string]any{"username": "alice"}, actorContext("auth0|alice"))
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("membership custom fields flow through invitations", func(t *testing.T) {
		svc, _ := newTestService(t, Config{
			CustomFields: map[string]schema.Config{
				EntityMembership: {
					Custom: schema.Definition{"jobTitle": {Type: schema.TypeString}},
					Naming: schema.NamingSnakeCase,
				},
			},
		})
		registerUser(t, svc, "auth0|alice", "alice")
		bob := registerUser(t, svc, "auth0|bob", "bob")
		org := createTestOrganization(t, svc, "auth0|alice", "acme")

		out, err := svc.AddMember(ctx, map[string]any{
			"organizationId": org.ID,
			"userId":         bob.ID,
			"role":           models.RoleMember,
			"jobTitle":       "engineer",
		}, actorContext("auth0|alice"))
		require.NoError(t, err)
		require.Equal(t, "engineer", out.Custom["jobTitle"])
	})
}

func TestServiceConfigRejected(t *testing.T) {
	t.Run("custom field shadowing a core field", func(t *testing.T) {
		_, uow := memory.NewStores()
		_, err := New(uow, Config{
			CustomFields: map[string]schema.Config{
				EntityUser: {Custom: schema.Definition{"username": {Type: schema.TypeString}}},
			},
		})
		var conflict *models.SchemaConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, uow := memory.NewStores()
		_, err := New(uow, Config{
			CustomFields: map[string]schema.Config{
				"workspace": {Custom: schema.Definition{"tier": {Type: schema.TypeString}}},
			},
		})
		require.ErrorContains(t, err, "workspace")
	})

	t.Run("unknown naming strategy", func(t *testing.T) {
		_, uow := memory.NewStores()
		_, err := New(uow, Config{
			CustomFields: map[string]schema.Config{
				EntityUser: {
					Custom: schema.Definition{"displayName": {Type: schema.TypeString}},
					Naming: "camelCase",
				},
			},
		})
		require.ErrorContains(t, err, "naming strategy")
	})
}
