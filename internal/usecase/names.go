package usecase

// Operation names. Hook configurations and metrics are keyed by these.
const (
	OpCreateUser            = "user.create"
	OpGetSelf               = "user.get_self"
	OpUpdateSelf            = "user.update_self"
	OpDeleteSelf            = "user.delete_self"
	OpListSelfOrganizations = "user.list_organizations"

	OpCreateOrganization  = "organization.create"
	OpGetOrganization     = "organization.get"
	OpRenameOrganization  = "organization.rename"
	OpDeleteOrganization  = "organization.delete"
	OpArchiveOrganization = "organization.archive"
	OpRestoreOrganization = "organization.restore"
	OpTransferOwnership   = "organization.transfer_ownership"
	OpListMembers         = "organization.list_members"

	OpAddMember        = "membership.add"
	OpAcceptInvitation = "membership.accept"
	OpUpdateMemberRole = "membership.update_role"
	OpRemoveMember     = "membership.remove"
	OpLeave            = "membership.leave"
)

// Operations lists every operation name, for hook configuration checks.
func Operations() []string {
	return []string{
		OpCreateUser, OpGetSelf, OpUpdateSelf, OpDeleteSelf, OpListSelfOrganizations,
		OpCreateOrganization, OpGetOrganization, OpRenameOrganization, OpDeleteOrganization,
		OpArchiveOrganization, OpRestoreOrganization, OpTransferOwnership, OpListMembers,
		OpAddMember, OpAcceptInvitation, OpUpdateMemberRole, OpRemoveMember, OpLeave,
	}
}

// Entity names for custom-field configuration.
const (
	EntityUser         = "user"
	EntityOrganization = "organization"
	EntityMembership   = "membership"
)
