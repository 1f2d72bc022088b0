package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// MembershipStore implements store.MembershipStore using PostgreSQL.
// The pair and owner uniqueness invariants are enforced by partial unique
// indexes; violations surface as sentinel errors via mapError.
type MembershipStore struct {
	db querier
}

// NewMembershipStore creates a PostgreSQL-backed membership store over a
// pool or an open transaction.
func NewMembershipStore(db querier) *MembershipStore {
	return &MembershipStore{db: db}
}

const membershipColumns = `membership_id, user_id, org_id, role, invited_at, joined_at, left_at, custom, created_at, updated_at, deleted_at`

// Insert creates a new membership in the database.
func (s *MembershipStore) Insert(ctx context.Context, op *models.OperationContext, m *models.Membership) error {
	query := `
		INSERT INTO organization_memberships (
			membership_id, user_id, org_id, role, invited_at, joined_at,
			left_at, custom, created_at, updated_at, deleted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.db.Exec(ctx, query,
		m.ID,
		m.UserID,
		m.OrganizationID,
		m.Role,
		m.InvitedAt,
		m.JoinedAt,
		m.LeftAt,
		m.Custom,
		m.CreatedAt,
		m.UpdatedAt,
		m.DeletedAt,
	)
	if err != nil {
		return mapError("membership.insert", err)
	}

	log.Debug().
		Str("membership_id", m.ID.String()).
		Str("role", m.Role).
		Str("request_id", requestID(op)).
		Msg("Created membership")

	return nil
}

// Update updates an existing membership.
func (s *MembershipStore) Update(ctx context.Context, op *models.OperationContext, m *models.Membership) error {
	query := `
		UPDATE organization_memberships SET
			role = $2,
			invited_at = $3,
			joined_at = $4,
			left_at = $5,
			custom = $6,
			updated_at = $7,
			deleted_at = $8
		WHERE membership_id = $1
	`

	result, err := s.db.Exec(ctx, query,
		m.ID,
		m.Role,
		m.InvitedAt,
		m.JoinedAt,
		m.LeftAt,
		m.Custom,
		m.UpdatedAt,
		m.DeletedAt,
	)
	if err != nil {
		return mapError("membership.update", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrMembershipNotFound
	}

	log.Debug().
		Str("membership_id", m.ID.String()).
		Str("request_id", requestID(op)).
		Msg("Updated membership")

	return nil
}

// Delete removes a membership record.
func (s *MembershipStore) Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM organization_memberships WHERE membership_id = $1`, id)
	if err != nil {
		return mapError("membership.delete", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrMembershipNotFound
	}
	return nil
}

// FindByID retrieves a membership by ID.
func (s *MembershipStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM organization_memberships
		WHERE membership_id = $1
	`, id)
	return scanMembership(row, "membership.find_by_id")
}

// FindActive returns the active membership for the pair.
func (s *MembershipStore) FindActive(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM organization_memberships
		WHERE user_id = $1 AND org_id = $2
		  AND joined_at IS NOT NULL AND left_at IS NULL AND deleted_at IS NULL
	`, userID, orgID)
	return scanMembership(row, "membership.find_active")
}

// FindPending returns the pending invitation for the pair.
func (s *MembershipStore) FindPending(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM organization_memberships
		WHERE user_id = $1 AND org_id = $2
		  AND joined_at IS NULL AND left_at IS NULL AND deleted_at IS NULL
	`, userID, orgID)
	return scanMembership(row, "membership.find_pending")
}

// FindOwner returns the organization's active owner membership.
func (s *MembershipStore) FindOwner(ctx context.Context, orgID uuid.UUID) (*models.Membership, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM organization_memberships
		WHERE org_id = $1 AND role = 'owner'
		  AND joined_at IS NOT NULL AND left_at IS NULL AND deleted_at IS NULL
	`, orgID)
	return scanMembership(row, "membership.find_owner")
}

// ListByOrganization returns memberships joined with user records,
// paginated, ordered by creation time.
func (s *MembershipStore) ListByOrganization(ctx context.Context, orgID uuid.UUID, page store.Page) (*store.MemberPage, error) {
	page = page.Normalize()

	filter := `
		WHERE m.org_id = $1 AND m.deleted_at IS NULL
	`
	if !page.IncludeInactive {
		filter += ` AND m.joined_at IS NOT NULL AND m.left_at IS NULL`
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM organization_memberships m`+filter, orgID).Scan(&total)
	if err != nil {
		return nil, mapError("membership.list_by_organization", err)
	}

	query := `
		SELECT m.membership_id, m.user_id, m.org_id, m.role, m.invited_at,
		       m.joined_at, m.left_at, m.custom, m.created_at, m.updated_at,
		       m.deleted_at, u.username
		FROM organization_memberships m
		JOIN users u ON u.user_id = m.user_id` + filter + `
		ORDER BY m.created_at
		LIMIT $2 OFFSET $3
	`

	offset := (page.Number - 1) * page.Size
	rows, err := s.db.Query(ctx, query, orgID, page.Size, offset)
	if err != nil {
		return nil, mapError("membership.list_by_organization", err)
	}
	defer rows.Close()

	items := make([]*models.MemberDetail, 0, page.Size)
	for rows.Next() {
		var m models.Membership
		var username string
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.OrganizationID,
			&m.Role,
			&m.InvitedAt,
			&m.JoinedAt,
			&m.LeftAt,
			&m.Custom,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
			&username,
		)
		if err != nil {
			return nil, mapError("membership.list_by_organization", err)
		}
		items = append(items, &models.MemberDetail{Membership: &m, Username: username})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("membership.list_by_organization", err)
	}

	return &store.MemberPage{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

func scanMembership(row pgx.Row, op string) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.OrganizationID,
		&m.Role,
		&m.InvitedAt,
		&m.JoinedAt,
		&m.LeftAt,
		&m.Custom,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, mapError(op, err)
	}
	return &m, nil
}
