package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tenantd/internal/store"
)

// Snapshotter is implemented by stores that can capture and restore their
// full state. The unit of work discovers snapshotters from the repository
// bundle, so any store added to the bundle participates in rollback
// without the unit of work naming entity types.
type Snapshotter interface {
	Snapshot() any
	Restore(snapshot any)
}

// UnitOfWork implements store.UnitOfWork over the in-memory stores using
// snapshot/restore. Transactions are serialized by a mutex; atomicity
// holds because no other writer runs between snapshot and commit.
type UnitOfWork struct {
	mu           sync.Mutex
	repos        *store.Repositories
	snapshotters []Snapshotter
}

// NewUnitOfWork creates a snapshot-based unit of work over the bundle.
func NewUnitOfWork(repos *store.Repositories) *UnitOfWork {
	u := &UnitOfWork{repos: repos}
	for _, r := range []any{repos.Users, repos.Organizations, repos.Memberships} {
		if s, ok := r.(Snapshotter); ok {
			u.snapshotters = append(u.snapshotters, s)
		}
	}
	return u
}

// NewStores wires a complete in-memory bundle with its unit of work.
func NewStores() (*store.Repositories, *UnitOfWork) {
	users := NewUserStore()
	memberships := NewMembershipStore(users)
	organizations := NewOrganizationStore(memberships)

	repos := &store.Repositories{
		Users:         users,
		Organizations: organizations,
		Memberships:   memberships,
	}
	return repos, NewUnitOfWork(repos)
}

// Repositories returns the bundle for non-transactional reads.
func (u *UnitOfWork) Repositories() *store.Repositories {
	return u.repos
}

// Transaction runs fn atomically. On error every snapshotter is restored
// to its pre-transaction state and the original error is returned.
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(ctx context.Context, repos *store.Repositories) error) error {
	if store.InTransaction(ctx) {
		return store.ErrNestedTransaction
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	snapshots := make([]any, len(u.snapshotters))
	for i, s := range u.snapshotters {
		snapshots[i] = s.Snapshot()
	}

	if err := fn(store.MarkTransaction(ctx), u.repos); err != nil {
		for i, s := range u.snapshotters {
			s.Restore(snapshots[i])
		}
		log.Debug().Err(err).Msg("rolled back in-memory transaction")
		return err
	}
	return nil
}
