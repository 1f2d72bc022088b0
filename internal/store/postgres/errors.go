package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// mapError translates PostgreSQL errors into sentinel errors, wrapping
// everything else as a PersistenceError so driver types never leak out
// of the store layer. op names the failing operation for logging.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case "idx_users_external_id":
				return store.ErrUserAlreadyExists
			case "idx_memberships_live_pair":
				return store.ErrMembershipAlreadyExists
			case "idx_memberships_live_owner":
				return store.ErrOwnerAlreadyExists
			}
		case pgerrcode.ForeignKeyViolation:
			switch pgErr.ConstraintName {
			case "organization_memberships_user_id_fkey", "organizations_owner_user_id_fkey":
				return store.ErrUserNotFound
			case "organization_memberships_org_id_fkey":
				return store.ErrOrganizationNotFound
			}
		}
	}

	return &models.PersistenceError{Op: op, Cause: err}
}
