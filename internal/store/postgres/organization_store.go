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

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	db querier
}

// NewOrganizationStore creates a PostgreSQL-backed organization store over
// a pool or an open transaction.
func NewOrganizationStore(db querier) *OrganizationStore {
	return &OrganizationStore{db: db}
}

const orgColumns = `org_id, name, owner_user_id, status, custom, created_at, updated_at, deleted_at`

// Insert creates a new organization in the database.
func (s *OrganizationStore) Insert(ctx context.Context, op *models.OperationContext, org *models.Organization) error {
	query := `
		INSERT INTO organizations (
			org_id, name, owner_user_id, status, custom, created_at, updated_at, deleted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.db.Exec(ctx, query,
		org.ID,
		org.Name,
		org.OwnerUserID,
		org.Status,
		org.Custom,
		org.CreatedAt,
		org.UpdatedAt,
		org.DeletedAt,
	)
	if err != nil {
		return mapError("organization.insert", err)
	}

	log.Debug().
		Str("org_id", org.ID.String()).
		Str("name", org.Name).
		Str("request_id", requestID(op)).
		Msg("Created organization")

	return nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, op *models.OperationContext, org *models.Organization) error {
	query := `
		UPDATE organizations SET
			name = $2,
			owner_user_id = $3,
			status = $4,
			custom = $5,
			updated_at = $6,
			deleted_at = $7
		WHERE org_id = $1
	`

	result, err := s.db.Exec(ctx, query,
		org.ID,
		org.Name,
		org.OwnerUserID,
		org.Status,
		org.Custom,
		org.UpdatedAt,
		org.DeletedAt,
	)
	if err != nil {
		return mapError("organization.update", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Debug().
		Str("org_id", org.ID.String()).
		Str("request_id", requestID(op)).
		Msg("Updated organization")

	return nil
}

// Delete removes an organization record, cascade-removing its memberships
// via the FK constraint.
func (s *OrganizationStore) Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM organizations WHERE org_id = $1`, id)
	if err != nil {
		return mapError("organization.delete", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}
	return nil
}

// FindByID retrieves an organization by ID, including soft-deleted records.
func (s *OrganizationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE org_id = $1`, id)

	var org models.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.OwnerUserID,
		&org.Status,
		&org.Custom,
		&org.CreatedAt,
		&org.UpdatedAt,
		&org.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, mapError("organization.find_by_id", err)
	}
	return &org, nil
}

// ListByMember returns live organizations where the user holds an active
// membership, newest first.
func (s *OrganizationStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	query := `
		SELECT o.org_id, o.name, o.owner_user_id, o.status, o.custom,
		       o.created_at, o.updated_at, o.deleted_at
		FROM organizations o
		JOIN organization_memberships m ON m.org_id = o.org_id
		WHERE m.user_id = $1
		  AND m.joined_at IS NOT NULL
		  AND m.left_at IS NULL
		  AND m.deleted_at IS NULL
		  AND o.deleted_at IS NULL
		ORDER BY o.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("organization.list_by_member", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var org models.Organization
		err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.OwnerUserID,
			&org.Status,
			&org.Custom,
			&org.CreatedAt,
			&org.UpdatedAt,
			&org.DeletedAt,
		)
		if err != nil {
			return nil, mapError("organization.list_by_member", err)
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("organization.list_by_member", err)
	}

	return orgs, nil
}
