// Package repomanager hands out repositories bound to a database handle.
// Services pass either the shared *sql.DB or a transaction, so the same
// repository code runs inside and outside transactions.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/streamvault/accountd/internal/dbx"
	"github.com/streamvault/accountd/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
