package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// MembershipOutput is the external shape of a membership.
type MembershipOutput struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	OrganizationID string         `json:"organizationId"`
	Role           string         `json:"role"`
	InvitedAt      *time.Time     `json:"invitedAt,omitempty"`
	JoinedAt       *time.Time     `json:"joinedAt,omitempty"`
	LeftAt         *time.Time     `json:"leftAt,omitempty"`
	Custom         map[string]any `json:"custom,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (s *Service) membershipOutput(m *models.Membership) *MembershipOutput {
	return &MembershipOutput{
		ID:             m.ID.String(),
		UserID:         m.UserID.String(),
		OrganizationID: m.OrganizationID.String(),
		Role:           m.Role,
		InvitedAt:      m.InvitedAt,
		JoinedAt:       m.JoinedAt,
		LeftAt:         m.LeftAt,
		Custom:         s.fromStorage(EntityMembership, m.Custom),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// AddMemberInput carries the validated input of AddMember.
type AddMemberInput struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           string
	Custom         map[string]any
}

// AddMember invites a user into the organization as a pending membership.
// Admins and the owner may invite; the owner role cannot be granted this
// way.
func (s *Service) AddMember(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*MembershipOutput, error) {
	return run(s, ctx, &operation[AddMemberInput, *MembershipOutput]{
		name:      OpAddMember,
		validator: s.validators[OpAddMember],
		bind: func(fields map[string]any) (AddMemberInput, error) {
			orgID, err := uuidField(fields, "organizationId")
			if err != nil {
				return AddMemberInput{}, err
			}
			userID, err := uuidField(fields, "userId")
			if err != nil {
				return AddMemberInput{}, err
			}
			return AddMemberInput{
				OrganizationID: orgID,
				UserID:         userID,
				Role:           stringField(fields, "role"),
				Custom:         customFields(fields, s.cores[OpAddMember]),
			}, nil
		},
		execute: s.addMember,
	}, raw, octx)
}

func (s *Service) addMember(ctx context.Context, octx *models.OperationContext, in AddMemberInput) (*MembershipOutput, error) {
	var out *MembershipOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		org, err := s.authorizeOrganizationChange(ctx, repos, octx, in.OrganizationID, models.RoleOwner, models.RoleAdmin)
		if err != nil {
			return err
		}

		target, err := repos.Users.FindByID(ctx, in.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return &models.NotFoundError{Resource: "user", ID: in.UserID.String()}
			}
			return translateStoreError(err)
		}
		if target.IsDeleted() {
			return &models.NotFoundError{Resource: "user", ID: in.UserID.String()}
		}

		now := s.clock.Now()
		membership := &models.Membership{
			ID:             s.ids.NewID(),
			UserID:         target.ID,
			OrganizationID: org.ID,
			Role:           in.Role,
			InvitedAt:      &now,
			Custom:         s.toStorage(EntityMembership, in.Custom),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Memberships.Insert(ctx, octx, membership); err != nil {
			return translateStoreError(err)
		}
		out = s.membershipOutput(membership)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptInvitation joins the actor's pending membership.
func (s *Service) AcceptInvitation(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*MembershipOutput, error) {
	return run(s, ctx, &operation[OrganizationInput, *MembershipOutput]{
		name:      OpAcceptInvitation,
		validator: s.validators[OpAcceptInvitation],
		bind:      bindOrganizationInput,
		execute: func(ctx context.Context, octx *models.OperationContext, in OrganizationInput) (*MembershipOutput, error) {
			var out *MembershipOutput
			err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
				actor, err := requireActorUser(ctx, repos, octx)
				if err != nil {
					return err
				}
				org, err := loadLiveOrganization(ctx, repos, in.OrganizationID)
				if err != nil {
					return err
				}

				membership, err := repos.Memberships.FindPending(ctx, actor.ID, org.ID)
				if err != nil {
					if errors.Is(err, store.ErrMembershipNotFound) {
						return &models.NotFoundError{Resource: "invitation"}
					}
					return translateStoreError(err)
				}

				now := s.clock.Now()
				membership.JoinedAt = &now
				membership.UpdatedAt = now
				if err := repos.Memberships.Update(ctx, octx, membership); err != nil {
					return translateStoreError(err)
				}
				out = s.membershipOutput(membership)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}, raw, octx)
}

// MemberInput identifies a member within an organization.
type MemberInput struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           string
}

func bindMemberInput(fields map[string]any) (MemberInput, error) {
	orgID, err := uuidField(fields, "organizationId")
	if err != nil {
		return MemberInput{}, err
	}
	userID, err := uuidField(fields, "userId")
	if err != nil {
		return MemberInput{}, err
	}
	return MemberInput{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           stringField(fields, "role"),
	}, nil
}

// UpdateMemberRole changes a member's role between admin and member.
// The owner's role never changes here; use TransferOwnership. Admins may
// only change members, the owner may change anyone but themselves.
func (s *Service) UpdateMemberRole(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*MembershipOutput, error) {
	return run(s, ctx, &operation[MemberInput, *MembershipOutput]{
		name:      OpUpdateMemberRole,
		validator: s.validators[OpUpdateMemberRole],
		bind:      bindMemberInput,
		execute:   s.updateMemberRole,
	}, raw, octx)
}

func (s *Service) updateMemberRole(ctx context.Context, octx *models.OperationContext, in MemberInput) (*MembershipOutput, error) {
	var out *MembershipOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		org, err := loadLiveOrganization(ctx, repos, in.OrganizationID)
		if err != nil {
			return err
		}
		actor, err := requireActorUser(ctx, repos, octx)
		if err != nil {
			return err
		}
		actorMembership, err := requireRole(ctx, repos, actor.ID, org.ID, models.RoleOwner, models.RoleAdmin)
		if err != nil {
			return err
		}

		target, err := repos.Memberships.FindActive(ctx, in.UserID, org.ID)
		if err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				return &models.NotFoundError{Resource: "membership"}
			}
			return translateStoreError(err)
		}
		if target.Role == models.RoleOwner {
			return &models.ConflictError{Reason: "cannot change the owner's role; transfer ownership instead"}
		}
		if actorMembership.Role == models.RoleAdmin && target.Role != models.RoleMember {
			return &models.ForbiddenError{Reason: "admins may only change members"}
		}

		target.Role = in.Role
		target.UpdatedAt = s.clock.Now()
		if err := repos.Memberships.Update(ctx, octx, target); err != nil {
			return translateStoreError(err)
		}
		out = s.membershipOutput(target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveMember closes out another user's membership. Admins may remove
// members; removing an admin requires the owner; the owner cannot be
// removed.
func (s *Service) RemoveMember(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*MembershipOutput, error) {
	return run(s, ctx, &operation[MemberInput, *MembershipOutput]{
		name:      OpRemoveMember,
		validator: s.validators[OpRemoveMember],
		bind:      bindMemberInput,
		execute:   s.removeMember,
	}, raw, octx)
}

func (s *Service) removeMember(ctx context.Context, octx *models.OperationContext, in MemberInput) (*MembershipOutput, error) {
	var out *MembershipOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		org, err := loadLiveOrganization(ctx, repos, in.OrganizationID)
		if err != nil {
			return err
		}
		actor, err := requireActorUser(ctx, repos, octx)
		if err != nil {
			return err
		}
		actorMembership, err := requireRole(ctx, repos, actor.ID, org.ID, models.RoleOwner, models.RoleAdmin)
		if err != nil {
			return err
		}

		target, err := repos.Memberships.FindActive(ctx, in.UserID, org.ID)
		if err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				return &models.NotFoundError{Resource: "membership"}
			}
			return translateStoreError(err)
		}
		if target.Role == models.RoleOwner {
			return &models.ConflictError{Reason: "cannot remove the owner; transfer ownership first"}
		}
		if actorMembership.Role == models.RoleAdmin && target.Role != models.RoleMember {
			return &models.ForbiddenError{Reason: "admins may only remove members"}
		}

		now := s.clock.Now()
		target.LeftAt = &now
		target.UpdatedAt = now
		if err := repos.Memberships.Update(ctx, octx, target); err != nil {
			return translateStoreError(err)
		}
		out = s.membershipOutput(target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Leave closes out the actor's own membership. The owner cannot leave
// without transferring ownership first.
func (s *Service) Leave(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*MembershipOutput, error) {
	return run(s, ctx, &operation[OrganizationInput, *MembershipOutput]{
		name:      OpLeave,
		validator: s.validators[OpLeave],
		bind:      bindOrganizationInput,
		execute: func(ctx context.Context, octx *models.OperationContext, in OrganizationInput) (*MembershipOutput, error) {
			var out *MembershipOutput
			err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
				actor, err := requireActorUser(ctx, repos, octx)
				if err != nil {
					return err
				}
				org, err := loadLiveOrganization(ctx, repos, in.OrganizationID)
				if err != nil {
					return err
				}

				membership, err := repos.Memberships.FindActive(ctx, actor.ID, org.ID)
				if err != nil {
					if errors.Is(err, store.ErrMembershipNotFound) {
						return &models.NotFoundError{Resource: "membership"}
					}
					return translateStoreError(err)
				}
				if membership.Role == models.RoleOwner {
					return &models.ConflictError{Reason: "the owner cannot leave; transfer ownership first"}
				}

				now := s.clock.Now()
				membership.LeftAt = &now
				membership.UpdatedAt = now
				if err := repos.Memberships.Update(ctx, octx, membership); err != nil {
					return translateStoreError(err)
				}
				out = s.membershipOutput(membership)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}, raw, octx)
}
