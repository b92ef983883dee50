// Package services contains the core business logic: the account lifecycle
// manager and the session rotation manager. The transport shell hands in
// already-parsed inputs; nothing here touches raw request bodies.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/streamvault/accountd/internal/common"
	"github.com/streamvault/accountd/internal/cryptox"
	"github.com/streamvault/accountd/internal/logging"
	"github.com/streamvault/accountd/internal/server/models"
	"github.com/streamvault/accountd/internal/server/repositories/accounts"
	"github.com/streamvault/accountd/internal/server/repositories/repomanager"
	"github.com/streamvault/accountd/internal/server/storage"
)

// AccountService orchestrates the account lifecycle: registration, login,
// logout, password change, profile update, and media replacement. Operations
// spanning the repository and the object store roll back already-committed
// side effects when a later step fails, so each operation is atomic from the
// caller's point of view.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	tokens      TokenIssuer
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, tokens TokenIssuer, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		store:       store,
		tokens:      tokens,
		logger:      logger.With("module", "accounts"),
	}
}

// RegisterInput carries the already-parsed registration request. AvatarPath
// and CoverPath are local temp files spooled by the transport shell;
// ownership transfers to the service.
type RegisterInput struct {
	Handle      string
	Email       string
	DisplayName string
	Password    string
	AvatarPath  string
	CoverPath   string
}

func (in RegisterInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Handle, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.DisplayName, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// Register creates an account with its media assets. Either a fully-formed
// account with all uploaded assets recorded exists afterwards, or no assets
// and no record exist.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Handle = strings.ToLower(strings.TrimSpace(in.Handle))
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	repo := s.repomanager.Accounts(s.db)

	_, err := repo.GetByHandleOrEmail(ctx, in.Handle, in.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: account with this handle or email", common.ErrConflict)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}

	if in.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar file is missing", common.ErrValidation)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrInternal
	}

	var undo compensations

	avatar, err := s.store.Upload(ctx, in.AvatarPath)
	if err != nil {
		return nil, err
	}
	undo.push(func(ctx context.Context) error {
		_, err := s.store.Delete(ctx, avatar.Key)
		return err
	})

	var cover *storage.AssetRef
	if in.CoverPath != "" {
		cover, err = s.store.Upload(ctx, in.CoverPath)
		if err != nil {
			undo.unwind(ctx, s.logger)
			return nil, err
		}
		undo.push(func(ctx context.Context) error {
			_, err := s.store.Delete(ctx, cover.Key)
			return err
		})
	}

	account := &models.Account{
		Handle:       in.Handle,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		AvatarURL:    avatar.URL,
	}
	if cover != nil {
		account.CoverURL = cover.URL
	}

	created, err := repo.Create(ctx, account)
	if err != nil {
		undo.unwind(ctx, s.logger)
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("%w: account with this handle or email", common.ErrConflict)
		}
		return nil, fmt.Errorf("%w: creating account: %v", common.ErrPersistence, err)
	}

	s.logger.Info(ctx, "account registered", "handle", created.Handle)
	return created.Public(), nil
}

// LoginInput requires handle, email, and password together. Lookup matches on
// either key, but all three fields must be present.
type LoginInput struct {
	Handle   string
	Email    string
	Password string
}

func (in LoginInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Handle, validation.Required),
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// Login verifies the credentials and mints a fresh token pair. Storing the
// new refresh token overwrites any prior one, which invalidates every
// previously issued refresh token for this account.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.Account, *TokenPair, error) {
	in.Handle = strings.ToLower(strings.TrimSpace(in.Handle))
	in.Email = strings.TrimSpace(in.Email)

	if err := in.validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByHandleOrEmail(ctx, in.Handle, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: account", common.ErrNotFound)
		}
		return nil, nil, common.ErrInternal
	}

	if !cryptox.CheckPassword(in.Password, account.PasswordHash) {
		return nil, nil, fmt.Errorf("%w: invalid credentials", common.ErrAuthentication)
	}

	pair, err := s.issueTokenPair(ctx, repo, account.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "login", "handle", account.Handle)
	return account.Public(), pair, nil
}

// Logout clears the stored refresh token. Clearing an already-empty slot is
// a no-op, so the operation is idempotent.
func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.UpdateFields(ctx, accountID, map[string]any{"refresh_token": nil}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: clearing refresh token: %v", common.ErrPersistence, err)
	}
	return nil
}

// ChangePassword verifies the old secret before accepting the new one. The
// write goes through the partial-update path only.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if strings.TrimSpace(oldPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: old and new password are required", common.ErrValidation)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !cryptox.CheckPassword(oldPassword, account.PasswordHash) {
		return fmt.Errorf("%w: old password is incorrect", common.ErrAuthentication)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	if _, err := repo.UpdateFields(ctx, accountID, map[string]any{"password_hash": hash}); err != nil {
		return fmt.Errorf("%w: storing password: %v", common.ErrPersistence, err)
	}

	s.logger.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

// UpdateProfileInput is a sparse set of updatable fields. Empty strings mean
// "leave unchanged".
type UpdateProfileInput struct {
	DisplayName string
	Email       string
}

// UpdateProfile applies only the supplied fields.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, in UpdateProfileInput) (*models.Account, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string]any{}
	if in.DisplayName != "" {
		fields["display_name"] = in.DisplayName
	}
	if in.Email != "" {
		if err := validation.Validate(in.Email, is.Email); err != nil {
			return nil, fmt.Errorf("%w: email: %v", common.ErrValidation, err)
		}
		fields["email"] = in.Email
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrValidation)
	}

	repo := s.repomanager.Accounts(s.db)

	updated, err := repo.UpdateFields(ctx, accountID, fields)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: updating profile: %v", common.ErrPersistence, err)
	}
	return updated.Public(), nil
}

// Current returns the account for the authenticated id, secrets stripped.
func (s *AccountService) Current(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Public(), nil
}

func (s *AccountService) issueTokenPair(ctx context.Context, repo accounts.Repository, accountID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(accountID)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.tokens.IssueRefresh(accountID)
	if err != nil {
		return nil, common.ErrInternal
	}
	if _, err := repo.UpdateFields(ctx, accountID, map[string]any{"refresh_token": refresh}); err != nil {
		return nil, fmt.Errorf("%w: storing refresh token: %v", common.ErrPersistence, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
