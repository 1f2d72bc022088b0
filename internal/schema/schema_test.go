package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenantd/internal/models"
)

func TestNamingStrategyApply(t *testing.T) {
	tests := []struct {
		strategy NamingStrategy
		in       string
		want     string
	}{
		{NamingIdentity, "displayName", "displayName"},
		{NamingSnakeCase, "displayName", "display_name"},
		{NamingSnakeCase, "display-name", "display_name"},
		{NamingSnakeCase, "plan2Tier", "plan2_tier"},
		{NamingKebabCase, "displayName", "display-name"},
		{NamingKebabCase, "display_name", "display-name"},
		{NamingPascalCase, "display_name", "DisplayName"},
		{NamingPascalCase, "display-name", "DisplayName"},
		{NamingStrategy(""), "displayName", "displayName"},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, tt.strategy.Apply(tt.in))
		})
	}
}

func TestNamingStrategyValid(t *testing.T) {
	require.True(t, NamingStrategy("").Valid())
	require.True(t, NamingSnakeCase.Valid())
	require.False(t, NamingStrategy("camelCase").Valid())
}

func TestMerge(t *testing.T) {
	core := Definition{
		"name": {Type: TypeString, Required: true},
	}

	t.Run("combines core and custom fields", func(t *testing.T) {
		m, err := Merge(core, Config{
			Custom: Definition{"displayName": {Type: TypeString}},
			Naming: NamingSnakeCase,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"displayName", "name"}, m.Fields())
		require.True(t, m.Has("displayName"))
		require.False(t, m.Has("unrelated"))
	})

	t.Run("custom field colliding with core fails", func(t *testing.T) {
		_, err := Merge(core, Config{
			Custom: Definition{"name": {Type: TypeString}},
		})
		var conflict *models.SchemaConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, "name", conflict.Field)
	})

	t.Run("two fields colliding on one storage name fails", func(t *testing.T) {
		_, err := Merge(core, Config{
			Custom:        Definition{"displayName": {Type: TypeString}},
			ColumnMapping: map[string]string{"displayName": "name"},
		})
		var conflict *models.SchemaConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("unknown naming strategy fails", func(t *testing.T) {
		_, err := Merge(core, Config{Naming: "camelCase"})
		require.Error(t, err)
	})
}

func TestMergedTranslation(t *testing.T) {
	core := Definition{"name": {Type: TypeString, Required: true}}
	m, err := Merge(core, Config{
		Custom: Definition{
			"displayName": {Type: TypeString},
			"planTier":    {Type: TypeString},
		},
		Naming:        NamingSnakeCase,
		ColumnMapping: map[string]string{"planTier": "tier"},
	})
	require.NoError(t, err)

	t.Run("column mapping wins over strategy", func(t *testing.T) {
		out := m.ToStorage(map[string]any{"planTier": "gold"})
		require.Equal(t, map[string]any{"tier": "gold"}, out)
	})

	t.Run("round trip is identity", func(t *testing.T) {
		in := map[string]any{"name": "acme", "displayName": "Acme Inc", "planTier": "gold"}
		require.Equal(t, in, m.FromStorage(m.ToStorage(in)))
	})

	t.Run("values are never altered", func(t *testing.T) {
		out := m.ToStorage(map[string]any{"displayName": 42})
		require.Equal(t, map[string]any{"display_name": 42}, out)
	})

	t.Run("unknown keys pass through", func(t *testing.T) {
		out := m.ToStorage(map[string]any{"legacy_column": true})
		require.Equal(t, map[string]any{"legacy_column": true}, out)
	})

	t.Run("nil maps stay nil", func(t *testing.T) {
		require.Nil(t, m.ToStorage(nil))
		require.Nil(t, m.FromStorage(nil))
	})
}

func TestMergedValidate(t *testing.T) {
	m, err := Merge(Definition{
		"name": {Type: TypeString, Required: true, MinLen: 1, MaxLen: 10},
	}, Config{
		Custom: Definition{
			"tier":  {Type: TypeString, Enum: []string{"free", "paid"}},
			"seats": {Type: TypeNumber},
			"beta":  {Type: TypeBool},
		},
	})
	require.NoError(t, err)

	t.Run("valid payload passes and is copied", func(t *testing.T) {
		payload := map[string]any{"name": "acme", "seats": float64(5), "beta": true}
		out, err := m.Validate(payload)
		require.NoError(t, err)
		require.Equal(t, payload, out)

		out["name"] = "mutated"
		require.Equal(t, "acme", payload["name"])
	})

	t.Run("every failing field is reported", func(t *testing.T) {
		_, err := m.Validate(map[string]any{
			"name":    "this name is far too long",
			"tier":    "platinum",
			"seats":   "many",
			"unknown": 1,
		})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 4)

		paths := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			paths = append(paths, f.Path)
		}
		require.Equal(t, []string{"name", "seats", "tier", "unknown"}, paths)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		_, err := m.Validate(map[string]any{})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		require.Equal(t, "name", verr.Fields[0].Path)
	})

	t.Run("missing optional fields pass", func(t *testing.T) {
		out, err := m.Validate(map[string]any{"name": "acme"})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"name": "acme"}, out)
	})

	t.Run("integer values count as numbers", func(t *testing.T) {
		_, err := m.Validate(map[string]any{"name": "acme", "seats": 5})
		require.NoError(t, err)
	})
}
