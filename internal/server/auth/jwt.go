// Package auth issues and verifies the signed session tokens. Two kinds
// exist: short-lived access tokens that authorize individual requests, and
// longer-lived refresh tokens accepted only by the session rotation path.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/streamvault/accountd/internal/common"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims includes the registered claims plus the account id and token kind.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Kind      string `json:"kind"`
}

// Issuer mints and verifies HS256-signed tokens.
type Issuer struct {
	secret          []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

func NewIssuer(secret []byte, accessValidity, refreshValidity time.Duration) *Issuer {
	return &Issuer{
		secret:          secret,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
	}
}

func (i *Issuer) IssueAccess(accountID string) (string, error) {
	return i.issue(accountID, KindAccess, i.accessValidity)
}

func (i *Issuer) IssueRefresh(accountID string) (string, error) {
	return i.issue(accountID, KindRefresh, i.refreshValidity)
}

func (i *Issuer) issue(accountID, kind string, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A random jti keeps two tokens minted within the same second
			// from being byte-identical.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		AccountID: accountID,
		Kind:      kind,
	})
	return token.SignedString(i.secret)
}

// Verify checks signature, expiry and kind, and returns the embedded account
// id. Every failure mode surfaces as common.ErrAuthentication: the caller
// must not be able to distinguish a forged token from an expired one.
func (i *Issuer) Verify(tokenString, kind string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", common.ErrAuthentication
	}
	if claims.Kind != kind || claims.AccountID == "" {
		return "", common.ErrAuthentication
	}
	return claims.AccountID, nil
}
