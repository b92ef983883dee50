package models

import "time"

// Account is the persisted identity record. Handle and email are each
// globally unique; the handle is stored lowercased. PasswordHash and
// RefreshToken never leave the service layer.
type Account struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	CoverURL     string    `json:"cover_url,omitempty"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy safe to hand to the transport layer: the secret hash
// and the stored refresh token are stripped.
func (a *Account) Public() *Account {
	c := *a
	c.PasswordHash = ""
	c.RefreshToken = ""
	return &c
}
