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

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db querier
}

// NewUserStore creates a PostgreSQL-backed user store over a pool or an
// open transaction.
func NewUserStore(db querier) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `user_id, external_id, username, custom, created_at, updated_at, deleted_at`

// Insert creates a new user in the database.
func (s *UserStore) Insert(ctx context.Context, op *models.OperationContext, user *models.User) error {
	query := `
		INSERT INTO users (
			user_id, external_id, username, custom, created_at, updated_at, deleted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.ExternalID,
		user.Username,
		user.Custom,
		user.CreatedAt,
		user.UpdatedAt,
		user.DeletedAt,
	)
	if err != nil {
		return mapError("user.insert", err)
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("request_id", requestID(op)).
		Msg("Created user")

	return nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, op *models.OperationContext, user *models.User) error {
	query := `
		UPDATE users SET
			external_id = $2,
			username = $3,
			custom = $4,
			updated_at = $5,
			deleted_at = $6
		WHERE user_id = $1
	`

	result, err := s.db.Exec(ctx, query,
		user.ID,
		user.ExternalID,
		user.Username,
		user.Custom,
		user.UpdatedAt,
		user.DeletedAt,
	)
	if err != nil {
		return mapError("user.update", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("request_id", requestID(op)).
		Msg("Updated user")

	return nil
}

// Delete removes a user record.
func (s *UserStore) Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return mapError("user.delete", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// FindByID retrieves a user by ID.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	return scanUser(row, "user.find_by_id")
}

// FindByExternalID retrieves the live user linked to an auth provider subject.
func (s *UserStore) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE external_id = $1 AND deleted_at IS NULL
	`, externalID)
	return scanUser(row, "user.find_by_external_id")
}

func scanUser(row pgx.Row, op string) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&user.Custom,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, mapError(op, err)
	}
	return &user, nil
}

// requestID extracts the audit correlation id; the context is optional.
func requestID(op *models.OperationContext) string {
	if op == nil {
		return ""
	}
	return op.RequestID
}
