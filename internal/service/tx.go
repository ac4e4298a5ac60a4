package service

import (
	"context"
	"database/sql"

	"github.com/annotune/annotune-api/internal/store"
)

// TxRunner executes a function inside a database transaction. Services
// depend on this narrow function type instead of *sql.DB so tests can run
// them against mock stores without a real database.
type TxRunner func(ctx context.Context, fn store.TxFn) error

// NewTxRunner returns a TxRunner backed by store.RunInTransaction over the
// given connection pool.
func NewTxRunner(db *sql.DB) TxRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}
}
