package invitations

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

// TokenHasher hashes invitation tokens for storage and checks candidates.
type TokenHasher interface {
	Hash(token string) (string, error)
	Compare(hash, token string) bool
}

// BcryptHasher hashes with bcrypt. Zero Cost means bcrypt.MinCost: tokens
// carry 256 bits of entropy and VerifyToken compares against every pending row.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(token string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.MinCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// NewToken returns 32 random bytes, hex-encoded.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
