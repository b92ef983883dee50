// Package accounts provides a PostgreSQL-backed repository for account
// records.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamvault/accountd/internal/common"
	"github.com/streamvault/accountd/internal/dbx"
	"github.com/streamvault/accountd/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, handle, email, display_name, password_hash, avatar_url,
	       COALESCE(cover_url, ''), COALESCE(refresh_token, ''), created_at, updated_at`

// updatableColumns is the whitelist for UpdateFields. The handle is fixed at
// registration and never updated.
var updatableColumns = map[string]struct{}{
	"email":         {},
	"display_name":  {},
	"password_hash": {},
	"avatar_url":    {},
	"cover_url":     {},
	"refresh_token": {},
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Handle, &a.Email, &a.DisplayName, &a.PasswordHash,
		&a.AvatarURL, &a.CoverURL, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Create inserts a new account and returns the stored row. A duplicate
// handle or email yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (handle, email, display_name, password_hash, avatar_url, cover_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.Handle, account.Email, account.DisplayName,
		account.PasswordHash, account.AvatarURL, account.CoverURL)

	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// GetByHandleOrEmail returns the account matching either alternate key.
func (r *PostgresRepository) GetByHandleOrEmail(ctx context.Context, handle, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = $1 OR email = $2`
	return scanAccount(r.db.QueryRowContext(ctx, query, handle, email))
}

// UpdateFields writes only the given columns plus updated_at and returns the
// stored row. Column names outside the whitelist are rejected; a nil value
// writes SQL NULL.
func (r *PostgresRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Account, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrValidation)
	}

	// Sorted for a deterministic statement.
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := updatableColumns[name]; !ok {
			return nil, fmt.Errorf("%w: column %q is not updatable", common.ErrValidation, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", name, i+1))
		args = append(args, fields[name])
	}
	assignments = append(assignments, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(assignments, ", "), len(args), accountColumns)

	updated, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return updated, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
