package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// OrganizationOutput is the external shape of an organization.
type OrganizationOutput struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	OwnerUserID string         `json:"ownerUserId"`
	Status      string         `json:"status"`
	Custom      map[string]any `json:"custom,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   *time.Time     `json:"deletedAt,omitempty"`
}

func (s *Service) organizationOutput(o *models.Organization) *OrganizationOutput {
	return &OrganizationOutput{
		ID:          o.ID.String(),
		Name:        o.Name,
		OwnerUserID: o.OwnerUserID.String(),
		Status:      o.Status,
		Custom:      s.fromStorage(EntityOrganization, o.Custom),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		DeletedAt:   o.DeletedAt,
	}
}

// CreateOrganizationInput carries the validated input of CreateOrganization.
type CreateOrganizationInput struct {
	Name   string
	Custom map[string]any
}

// CreateOrganization creates an organization and its owner membership in
// one transaction; the actor becomes the owner.
func (s *Service) CreateOrganization(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[CreateOrganizationInput, *OrganizationOutput]{
		name:      OpCreateOrganization,
		validator: s.validators[OpCreateOrganization],
		bind: func(fields map[string]any) (CreateOrganizationInput, error) {
			return CreateOrganizationInput{
				Name:   stringField(fields, "name"),
				Custom: customFields(fields, s.cores[OpCreateOrganization]),
			}, nil
		},
		execute: s.createOrganization,
	}, raw, octx)
}

func (s *Service) createOrganization(ctx context.Context, octx *models.OperationContext, in CreateOrganizationInput) (*OrganizationOutput, error) {
	var out *OrganizationOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		owner, err := requireActorUser(ctx, repos, octx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		org := &models.Organization{
			ID:          s.ids.NewID(),
			Name:        in.Name,
			OwnerUserID: owner.ID,
			Status:      models.OrganizationStatusActive,
			Custom:      s.toStorage(EntityOrganization, in.Custom),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Organizations.Insert(ctx, octx, org); err != nil {
			return translateStoreError(err)
		}

		membership := &models.Membership{
			ID:             s.ids.NewID(),
			UserID:         owner.ID,
			OrganizationID: org.ID,
			Role:           models.RoleOwner,
			JoinedAt:       &now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Memberships.Insert(ctx, octx, membership); err != nil {
			return translateStoreError(err)
		}

		out = s.organizationOutput(org)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrganizationInput identifies a target organization.
type OrganizationInput struct {
	OrganizationID uuid.UUID
}

func bindOrganizationInput(fields map[string]any) (OrganizationInput, error) {
	orgID, err := uuidField(fields, "organizationId")
	if err != nil {
		return OrganizationInput{}, err
	}
	return OrganizationInput{OrganizationID: orgID}, nil
}

// GetOrganization returns an organization to one of its active members.
func (s *Service) GetOrganization(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[OrganizationInput, *OrganizationOutput]{
		name:      OpGetOrganization,
		validator: s.validators[OpGetOrganization],
		bind:      bindOrganizationInput,
		execute: func(ctx context.Context, octx *models.OperationContext, in OrganizationInput) (*OrganizationOutput, error) {
			repos := s.uow.Repositories()
			actor, err := requireActorUser(ctx, repos, octx)
			if err != nil {
				return nil, err
			}
			org, err := loadLiveOrganization(ctx, repos, in.OrganizationID)
			if err != nil {
				return nil, err
			}
			if _, err := requireRole(ctx, repos, actor.ID, org.ID, models.RoleOwner, models.RoleAdmin, models.RoleMember); err != nil {
				return nil, err
			}
			return s.organizationOutput(org), nil
		},
	}, raw, octx)
}

// RenameOrganizationInput carries the validated input of RenameOrganization.
type RenameOrganizationInput struct {
	OrganizationID uuid.UUID
	Name           string
}

// RenameOrganization updates an organization's name. Admins and the owner
// may rename.
func (s *Service) RenameOrganization(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[RenameOrganizationInput, *OrganizationOutput]{
		name:      OpRenameOrganization,
		validator: s.validators[OpRenameOrganization],
		bind: func(fields map[string]any) (RenameOrganizationInput, error) {
			orgID, err := uuidField(fields, "organizationId")
			if err != nil {
				return RenameOrganizationInput{}, err
			}
			return RenameOrganizationInput{OrganizationID: orgID, Name: stringField(fields, "name")}, nil
		},
		execute: s.renameOrganization,
	}, raw, octx)
}

func (s *Service) renameOrganization(ctx context.Context, octx *models.OperationContext, in RenameOrganizationInput) (*OrganizationOutput, error) {
	var out *OrganizationOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		org, err := s.authorizeOrganizationChange(ctx, repos, octx, in.OrganizationID, models.RoleOwner, models.RoleAdmin)
		if err != nil {
			return err
		}

		org.Name = in.Name
		org.UpdatedAt = s.clock.Now()
		if err := repos.Organizations.Update(ctx, octx, org); err != nil {
			return translateStoreError(err)
		}
		out = s.organizationOutput(org)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// authorizeOrganizationChange loads the target organization inside the
// transaction and checks the actor's role before any mutation.
func (s *Service) authorizeOrganizationChange(ctx context.Context, repos *store.Repositories, octx *models.OperationContext, orgID uuid.UUID, roles ...string) (*models.Organization, error) {
	actor, err := requireActorUser(ctx, repos, octx)
	if err != nil {
		return nil, err
	}
	org, err := loadLiveOrganization(ctx, repos, orgID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, repos, actor.ID, org.ID, roles...); err != nil {
		return nil, err
	}
	return org, nil
}

// DeleteOrganization soft-deletes an organization. Owner only.
func (s *Service) DeleteOrganization(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[OrganizationInput, *OrganizationOutput]{
		name:      OpDeleteOrganization,
		validator: s.validators[OpDeleteOrganization],
		bind:      bindOrganizationInput,
		execute: func(ctx context.Context, octx *models.OperationContext, in OrganizationInput) (*OrganizationOutput, error) {
			var out *OrganizationOutput
			err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
				org, err := s.authorizeOrganizationChange(ctx, repos, octx, in.OrganizationID, models.RoleOwner)
				if err != nil {
					return err
				}

				now := s.clock.Now()
				org.DeletedAt = &now
				org.UpdatedAt = now
				if err := repos.Organizations.Update(ctx, octx, org); err != nil {
					return translateStoreError(err)
				}
				out = s.organizationOutput(org)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}, raw, octx)
}

// ArchiveOrganization marks an organization archived. Owner only.
func (s *Service) ArchiveOrganization(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[OrganizationInput, *OrganizationOutput]{
		name:      OpArchiveOrganization,
		validator: s.validators[OpArchiveOrganization],
		bind:      bindOrganizationInput,
		execute:   s.setOrganizationStatus(models.OrganizationStatusActive, models.OrganizationStatusArchived),
	}, raw, octx)
}

// RestoreOrganization reverses an archive. Owner only.
func (s *Service) RestoreOrganization(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[OrganizationInput, *OrganizationOutput]{
		name:      OpRestoreOrganization,
		validator: s.validators[OpRestoreOrganization],
		bind:      bindOrganizationInput,
		execute:   s.setOrganizationStatus(models.OrganizationStatusArchived, models.OrganizationStatusActive),
	}, raw, octx)
}

func (s *Service) setOrganizationStatus(from, to string) func(context.Context, *models.OperationContext, OrganizationInput) (*OrganizationOutput, error) {
	return func(ctx context.Context, octx *models.OperationContext, in OrganizationInput) (*OrganizationOutput, error) {
		var out *OrganizationOutput
		err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
			org, err := s.authorizeOrganizationChange(ctx, repos, octx, in.OrganizationID, models.RoleOwner)
			if err != nil {
				return err
			}
			if org.Status != from {
				return &models.ConflictError{Reason: "organization is already " + org.Status}
			}

			org.Status = to
			org.UpdatedAt = s.clock.Now()
			if err := repos.Organizations.Update(ctx, octx, org); err != nil {
				return translateStoreError(err)
			}
			out = s.organizationOutput(org)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// TransferOwnershipInput carries the validated input of TransferOwnership.
type TransferOwnershipInput struct {
	OrganizationID uuid.UUID
	NewOwnerUserID uuid.UUID
}

// TransferOwnership demotes the current owner to admin, promotes the new
// owner's active membership, and updates the organization's owner, all
// inside one transaction. A failure at any point leaves the prior owner
// intact.
func (s *Service) TransferOwnership(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationOutput, error) {
	return run(s, ctx, &operation[TransferOwnershipInput, *OrganizationOutput]{
		name:      OpTransferOwnership,
		validator: s.validators[OpTransferOwnership],
		bind: func(fields map[string]any) (TransferOwnershipInput, error) {
			orgID, err := uuidField(fields, "organizationId")
			if err != nil {
				return TransferOwnershipInput{}, err
			}
			newOwnerID, err := uuidField(fields, "newOwnerUserId")
			if err != nil {
				return TransferOwnershipInput{}, err
			}
			return TransferOwnershipInput{OrganizationID: orgID, NewOwnerUserID: newOwnerID}, nil
		},
		execute: s.transferOwnership,
	}, raw, octx)
}

func (s *Service) transferOwnership(ctx context.Context, octx *models.OperationContext, in TransferOwnershipInput) (*OrganizationOutput, error) {
	var out *OrganizationOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		org, err := s.authorizeOrganizationChange(ctx, repos, octx, in.OrganizationID, models.RoleOwner)
		if err != nil {
			return err
		}
		if in.NewOwnerUserID == org.OwnerUserID {
			return &models.ConflictError{Reason: "user is already the owner"}
		}

		target, err := repos.Memberships.FindActive(ctx, in.NewOwnerUserID, org.ID)
		if err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				return &models.ConflictError{Reason: "new owner must be an active member"}
			}
			return translateStoreError(err)
		}

		current, err := repos.Memberships.FindOwner(ctx, org.ID)
		if err != nil {
			return translateStoreError(err)
		}

		now := s.clock.Now()

		// Demote before promoting so the single-owner invariant holds at
		// every write.
		current.Role = models.RoleAdmin
		current.UpdatedAt = now
		if err := repos.Memberships.Update(ctx, octx, current); err != nil {
			return translateStoreError(err)
		}

		target.Role = models.RoleOwner
		target.UpdatedAt = now
		if err := repos.Memberships.Update(ctx, octx, target); err != nil {
			return translateStoreError(err)
		}

		org.OwnerUserID = in.NewOwnerUserID
		org.UpdatedAt = now
		if err := repos.Organizations.Update(ctx, octx, org); err != nil {
			return translateStoreError(err)
		}

		out = s.organizationOutput(org)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListMembersInput carries the validated input of ListMembers.
type ListMembersInput struct {
	OrganizationID uuid.UUID
	Page           store.Page
}

// MemberOutput is one row of a member listing.
type MemberOutput struct {
	MembershipID string         `json:"membershipId"`
	UserID       string         `json:"userId"`
	Username     string         `json:"username"`
	Role         string         `json:"role"`
	InvitedAt    *time.Time     `json:"invitedAt,omitempty"`
	JoinedAt     *time.Time     `json:"joinedAt,omitempty"`
	LeftAt       *time.Time     `json:"leftAt,omitempty"`
	Custom       map[string]any `json:"custom,omitempty"`
}

// MemberListOutput is a page of members.
type MemberListOutput struct {
	Items      []*MemberOutput `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// ListMembers returns a page of the organization's members with their
// usernames. Any active member may list.
func (s *Service) ListMembers(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*MemberListOutput, error) {
	return run(s, ctx, &operation[ListMembersInput, *MemberListOutput]{
		name:      OpListMembers,
		validator: s.validators[OpListMembers],
		bind: func(fields map[string]any) (ListMembersInput, error) {
			orgID, err := uuidField(fields, "organizationId")
			if err != nil {
				return ListMembersInput{}, err
			}
			return ListMembersInput{
				OrganizationID: orgID,
				Page: store.Page{
					Number:          intField(fields, "page"),
					Size:            intField(fields, "pageSize"),
					IncludeInactive: boolField(fields, "includeInactive"),
				},
			}, nil
		},
		execute: func(ctx context.Context, octx *models.OperationContext, in ListMembersInput) (*MemberListOutput, error) {
			repos := s.uow.Repositories()
			actor, err := requireActorUser(ctx, repos, octx)
			if err != nil {
				return nil, err
			}
			org, err := loadLiveOrganization(ctx, repos, in.OrganizationID)
			if err != nil {
				return nil, err
			}
			if _, err := requireRole(ctx, repos, actor.ID, org.ID, models.RoleOwner, models.RoleAdmin, models.RoleMember); err != nil {
				return nil, err
			}

			page, err := repos.Memberships.ListByOrganization(ctx, org.ID, in.Page)
			if err != nil {
				return nil, translateStoreError(err)
			}

			out := &MemberListOutput{
				Items:      make([]*MemberOutput, 0, len(page.Items)),
				Total:      page.Total,
				Page:       page.Page,
				PageSize:   page.PageSize,
				TotalPages: page.TotalPages,
			}
			for _, item := range page.Items {
				m := item.Membership
				out.Items = append(out.Items, &MemberOutput{
					MembershipID: m.ID.String(),
					UserID:       m.UserID.String(),
					Username:     item.Username,
					Role:         m.Role,
					InvitedAt:    m.InvitedAt,
					JoinedAt:     m.JoinedAt,
					LeftAt:       m.LeftAt,
					Custom:       s.fromStorage(EntityMembership, m.Custom),
				})
			}
			return out, nil
		},
	}, raw, octx)
}
