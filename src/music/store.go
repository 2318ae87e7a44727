package music

import (
	"context"
)

// Store is the repository interface for account state. Implementations keep
// the whole account table durable and serialize mutations: only one
// load-mutate-save cycle runs at a time within the process. Multi-process
// access to the same store is out of scope.
type Store interface {
	// GetAccount returns the stored account, or ErrAccountNotFound.
	GetAccount(ctx context.Context, username string) (*Account, error)

	// PutAccount inserts or replaces the whole account record.
	PutAccount(ctx context.Context, account *Account) error

	// UpdateAccount loads the account, applies mutate to the fresh copy and
	// saves the result. If mutate returns an error nothing is written and
	// the error is returned unchanged, so a failed operation leaves both
	// durable and in-memory state as they were at the last load.
	UpdateAccount(ctx context.Context, username string, mutate func(*Account) error) (*Account, error)

	// Accounts returns every stored account.
	Accounts(ctx context.Context) ([]*Account, error)
}
