package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
	"github.com/wolfeidau/tenantd/internal/telemetry"
)

// UnitOfWork implements store.UnitOfWork over native pgx transactions.
// Isolation between concurrent transactions is the database's concern;
// this layer guarantees atomicity of one work callback.
type UnitOfWork struct {
	pool  *pgxpool.Pool
	repos *store.Repositories
}

// NewUnitOfWork creates a transaction-backed unit of work sharing pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		pool:  pool,
		repos: newRepositories(pool),
	}
}

// NewStores wires a complete postgres bundle with its unit of work.
func NewStores(pool *pgxpool.Pool) (*store.Repositories, *UnitOfWork) {
	u := NewUnitOfWork(pool)
	return u.repos, u
}

func newRepositories(db querier) *store.Repositories {
	return &store.Repositories{
		Users:         NewUserStore(db),
		Organizations: NewOrganizationStore(db),
		Memberships:   NewMembershipStore(db),
	}
}

// Repositories returns a pool-backed bundle for non-transactional reads.
func (u *UnitOfWork) Repositories() *store.Repositories {
	return u.repos
}

// Transaction runs fn with a transaction-scoped repository bundle.
// On error the transaction is rolled back and the original error is
// returned unchanged; a rollback failure is joined onto it. Commit is
// implicit on normal return.
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(ctx context.Context, repos *store.Repositories) error) error {
	if store.InTransaction(ctx) {
		return store.ErrNestedTransaction
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return &models.PersistenceError{Op: "transaction.begin", Cause: err}
	}

	telemetry.GetMetrics().TransactionsTotal.Add(ctx, 1)

	if err := fn(store.MarkTransaction(ctx), newRepositories(tx)); err != nil {
		telemetry.GetMetrics().TransactionRollbacksTotal.Add(ctx, 1)
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("transaction rollback failed")
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &models.PersistenceError{Op: "transaction.commit", Cause: err}
	}
	return nil
}
