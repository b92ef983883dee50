package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streamvault/accountd/internal/common"
	"github.com/streamvault/accountd/internal/dbx"
	"github.com/streamvault/accountd/internal/logging"
	"github.com/streamvault/accountd/internal/server/auth"
	"github.com/streamvault/accountd/internal/server/repositories/repomanager"
)

// SessionService rotates refresh tokens. At most one refresh token is valid
// per account: the value stored on the account row is the sole source of
// truth, and any other token is rejected even if cryptographically valid and
// unexpired.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	logger      logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		logger:      logger.With("module", "sessions"),
	}
}

// Refresh validates the presented refresh token, rotates it transactionally,
// and returns a fresh token pair. Presenting a superseded token fails even
// inside its nominal expiry window.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, fmt.Errorf("%w: missing refresh token", common.ErrAuthentication)
	}

	accountID, err := s.tokens.Verify(presented, auth.KindRefresh)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := repo.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: unknown account", common.ErrAuthentication)
			}
			return err
		}

		// Exact-value comparison detects replay of a rotated-out token.
		if subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(presented)) != 1 {
			return fmt.Errorf("%w: refresh token superseded", common.ErrAuthentication)
		}

		access, err := s.tokens.IssueAccess(accountID)
		if err != nil {
			return common.ErrInternal
		}
		refresh, err := s.tokens.IssueRefresh(accountID)
		if err != nil {
			return common.ErrInternal
		}

		if _, err := repo.UpdateFields(ctx, accountID, map[string]any{"refresh_token": refresh}); err != nil {
			return fmt.Errorf("%w: storing refresh token: %v", common.ErrPersistence, err)
		}

		pair = &TokenPair{AccessToken: access, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "session rotated", "account_id", accountID)
	return pair, nil
}
