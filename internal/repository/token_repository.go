package repository

import (
	"sync"
	"time"
)

// refreshRecord holds one stored refresh token.  Only the SHA-256 hash
// of the raw token is kept.
type refreshRecord struct {
	Email     string
	Role      string
	ExpiresAt time.Time
	Revoked   bool
}

// TokenRepo stores refresh tokens in memory, hashed.  It lives next to
// the entity store so the whole application state stays snapshotable
// without an extra database; sessions are simply re-established after a
// restart.
type TokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*refreshRecord
}

// NewTokenRepo returns an empty token repository.
func NewTokenRepo() *TokenRepo {
	return &TokenRepo{tokens: make(map[string]*refreshRecord)}
}

// StoreRefresh saves a hashed refresh token for the account.
func (r *TokenRepo) StoreRefresh(hash, email, role string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[hash] = &refreshRecord{Email: email, Role: role, ExpiresAt: expiresAt}
}

// ValidateRefresh checks that the hashed token exists, is not revoked
// and has not expired.  It returns the account email and role.
func (r *TokenRepo) ValidateRefresh(hash string, now time.Time) (email, role string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tokens[hash]
	if !ok || rec.Revoked || now.After(rec.ExpiresAt) {
		return "", "", ErrInvalidCredentials
	}
	return rec.Email, rec.Role, nil
}

// RevokeByHash marks one refresh token as revoked.
func (r *TokenRepo) RevokeByHash(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.tokens[hash]; ok {
		rec.Revoked = true
	}
}

// RevokeAllFor revokes every refresh token issued to the account.
func (r *TokenRepo) RevokeAllFor(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.tokens {
		if rec.Email == email {
			rec.Revoked = true
		}
	}
}
