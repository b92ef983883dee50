package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamvault/accountd/internal/common"
	"github.com/streamvault/accountd/internal/server/models"
)

// imageSlot abstracts over which media slot is being replaced, so avatar and
// cover share one code path.
type imageSlot struct {
	name    string
	column  string
	current func(*models.Account) string
}

var (
	avatarSlot = imageSlot{
		name:    "avatar",
		column:  "avatar_url",
		current: func(a *models.Account) string { return a.AvatarURL },
	}
	coverSlot = imageSlot{
		name:    "cover",
		column:  "cover_url",
		current: func(a *models.Account) string { return a.CoverURL },
	}
)

// ReplaceResult reports a completed media replacement. OldAssetRemoved is
// false when the superseded object could not be deleted from the remote
// store; the replacement itself still succeeded.
type ReplaceResult struct {
	Account         *models.Account
	OldAssetRemoved bool
}

func (s *AccountService) ReplaceAvatar(ctx context.Context, accountID, localPath string) (*ReplaceResult, error) {
	return s.replaceImage(ctx, accountID, avatarSlot, localPath)
}

func (s *AccountService) ReplaceCover(ctx context.Context, accountID, localPath string) (*ReplaceResult, error) {
	return s.replaceImage(ctx, accountID, coverSlot, localPath)
}

// replaceImage uploads the new blob, persists the new reference, and only
// then deletes the old object. The final delete is best-effort: once the new
// reference is durable, losing the old object costs storage, but rolling the
// account back would lose the live reference.
func (s *AccountService) replaceImage(ctx context.Context, accountID string, slot imageSlot, localPath string) (*ReplaceResult, error) {
	if localPath == "" {
		return nil, fmt.Errorf("%w: %s file is missing", common.ErrValidation, slot.name)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	oldURL := slot.current(account)

	asset, err := s.store.Upload(ctx, localPath)
	if err != nil {
		return nil, err
	}
	if asset.URL == "" {
		if _, derr := s.store.Delete(ctx, asset.Key); derr != nil {
			s.logger.Error(ctx, "compensating cleanup failed", "key", asset.Key, "error", derr.Error())
		}
		return nil, fmt.Errorf("%w: store returned asset without url", common.ErrUpload)
	}

	updated, err := repo.UpdateFields(ctx, accountID, map[string]any{slot.column: asset.URL})
	if err != nil {
		if _, derr := s.store.Delete(ctx, asset.Key); derr != nil {
			s.logger.Error(ctx, "compensating cleanup failed", "key", asset.Key, "error", derr.Error())
		}
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: storing %s reference: %v", common.ErrPersistence, slot.name, err)
	}

	result := &ReplaceResult{Account: updated.Public(), OldAssetRemoved: true}
	if oldURL != "" {
		removed, err := s.store.Delete(ctx, s.store.KeyFromURL(oldURL))
		if err != nil || !removed {
			s.logger.Warn(ctx, "could not remove replaced asset", "slot", slot.name, "url", oldURL)
			result.OldAssetRemoved = false
		}
	}

	s.logger.Info(ctx, "media replaced", "slot", slot.name, "account_id", accountID)
	return result, nil
}
