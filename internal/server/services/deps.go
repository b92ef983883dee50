package services

import (
	"context"

	"github.com/streamvault/accountd/internal/server/storage"
)

// ObjectStore is the remote content store holding account media. Upload takes
// ownership of the local file at localPath: it is released whether or not the
// upload succeeds. Delete treats a missing object as already removed.
type ObjectStore interface {
	Upload(ctx context.Context, localPath string) (*storage.AssetRef, error)
	Delete(ctx context.Context, key string) (bool, error)
	KeyFromURL(url string) string
}

// TokenIssuer mints and verifies the signed session tokens.
type TokenIssuer interface {
	IssueAccess(accountID string) (string, error)
	IssueRefresh(accountID string) (string, error)
	Verify(token, kind string) (string, error)
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
