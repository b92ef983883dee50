package accounts

import (
	"context"

	"github.com/streamvault/accountd/internal/server/models"
)

// Repository is the persistence contract for account records.
//
// UpdateFields applies a sparse partial update: only the given columns are
// written, nothing else is validated. Lookups return common.ErrNotFound when
// no row matches; unique-key violations surface as common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByHandleOrEmail(ctx context.Context, handle, email string) (*models.Account, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Account, error)
}
