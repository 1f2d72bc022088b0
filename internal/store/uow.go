package store

import (
	"context"
	"errors"
)

// ErrNestedTransaction reports a Transaction call inside an already open
// transaction. Use cases open exactly one transaction; scopes never merge.
var ErrNestedTransaction = errors.New("nested transactions are not supported")

// Repositories bundles the per-entity ports handed to transactional work.
type Repositories struct {
	Users         UserStore
	Organizations OrganizationStore
	Memberships   MembershipStore
}

// UnitOfWork binds repository operations into one atomic scope.
type UnitOfWork interface {
	// Transaction runs fn with a repository bundle scoped to one atomic
	// unit. If fn returns an error, every mutation performed through the
	// bundle is undone and the original error is returned unchanged; a
	// failure during rollback itself is joined onto the original error.
	// Commit is implicit on normal return.
	Transaction(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error

	// Repositories returns a bundle for non-transactional reads.
	Repositories() *Repositories
}

type txMarker struct{}

// MarkTransaction tags ctx as being inside an open transaction.
func MarkTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txMarker{}, true)
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	in, _ := ctx.Value(txMarker{}).(bool)
	return in
}
