package usecase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/schema"
)

// opSchema declares the core input fields of one operation and, for
// operations that accept entity custom fields, which entity's custom
// schema is merged in.
type opSchema struct {
	core   schema.Definition
	entity string
}

func opSchemas() map[string]opSchema {
	username := schema.Field{Type: schema.TypeString, MinLen: 3, MaxLen: 64}
	usernameRequired := username
	usernameRequired.Required = true

	orgName := schema.Field{Type: schema.TypeString, Required: true, MinLen: 1, MaxLen: 128}
	id := schema.Field{Type: schema.TypeString, Required: true, MinLen: 1}
	grantableRole := schema.Field{Type: schema.TypeString, Required: true, Enum: []string{models.RoleAdmin, models.RoleMember}}

	return map[string]opSchema{
		OpCreateUser: {core: schema.Definition{"username": usernameRequired}, entity: EntityUser},
		OpGetSelf:    {core: schema.Definition{}},
		OpUpdateSelf: {core: schema.Definition{"username": username}, entity: EntityUser},
		OpDeleteSelf: {core: schema.Definition{}},

		OpListSelfOrganizations: {core: schema.Definition{}},

		OpCreateOrganization: {core: schema.Definition{"name": orgName}, entity: EntityOrganization},
		OpGetOrganization:    {core: schema.Definition{"organizationId": id}},
		OpRenameOrganization: {core: schema.Definition{"organizationId": id, "name": orgName}},
		OpDeleteOrganization: {core: schema.Definition{"organizationId": id}},
		OpArchiveOrganization: {core: schema.Definition{"organizationId": id}},
		OpRestoreOrganization: {core: schema.Definition{"organizationId": id}},
		OpTransferOwnership: {core: schema.Definition{"organizationId": id, "newOwnerUserId": id}},
		OpListMembers: {core: schema.Definition{
			"organizationId":  id,
			"page":            {Type: schema.TypeNumber},
			"pageSize":        {Type: schema.TypeNumber},
			"includeInactive": {Type: schema.TypeBool},
		}},

		OpAddMember: {core: schema.Definition{
			"organizationId": id,
			"userId":         id,
			"role":           grantableRole,
		}, entity: EntityMembership},
		OpAcceptInvitation: {core: schema.Definition{"organizationId": id}},
		OpUpdateMemberRole: {core: schema.Definition{"organizationId": id, "userId": id, "role": grantableRole}},
		OpRemoveMember:     {core: schema.Definition{"organizationId": id, "userId": id}},
		OpLeave:            {core: schema.Definition{"organizationId": id}},
	}
}

// Field accessors for validated input maps. Validation has already
// checked presence and type; these only convert.

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

func intField(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

func boolField(fields map[string]any, name string) bool {
	b, _ := fields[name].(bool)
	return b
}

// uuidField parses an identifier field, reporting a field-level
// validation error on malformed input.
func uuidField(fields map[string]any, name string) (uuid.UUID, error) {
	raw := stringField(fields, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError([]models.FieldError{
			{Path: name, Message: fmt.Sprintf("%q is not a valid identifier", raw)},
		})
	}
	return id, nil
}

// customFields returns the validated fields that are not core operation
// fields, i.e. the caller-defined custom fields, still in external shape.
func customFields(fields map[string]any, core schema.Definition) map[string]any {
	var custom map[string]any
	for name, value := range fields {
		if _, isCore := core[name]; isCore {
			continue
		}
		if custom == nil {
			custom = make(map[string]any)
		}
		custom[name] = value
	}
	return custom
}
