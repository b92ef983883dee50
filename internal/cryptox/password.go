// Package cryptox wraps the one-way hashing used for account secrets.
package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted one-way hash of the given plaintext secret.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether the plaintext secret matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
