// Package credentials hashes admin passwords and issues the bearer
// tokens admins present on protected endpoints.
package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches what the rest of the app uses for stored secrets.
const DefaultBcryptCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher using cost, or DefaultBcryptCost when cost
// is outside bcrypt's accepted range.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return Hasher{Cost: cost}
}

// Hash returns a salted bcrypt hash of password. Two calls with the same
// password return different strings that both verify.
func (h Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash is
// simply a mismatch.
func (h Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
