// Package auth implements the single-shared-credential model: API keys are
// presented as a bearer token or X-API-Key header, hashed with HMAC-SHA256
// under a server secret, and looked up by constant-time comparison against
// the stored hash. The raw key is never persisted.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kanbanforge/kanband/internal/types"
)

// Hasher computes and verifies HMAC-SHA256 digests of presented API keys
// under a server-held secret (API_KEY_SECRET).
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC-SHA256 of rawKey, suitable for storage
// in ApiKeyRecord.KeyHash.
func (h *Hasher) Hash(rawKey string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(rawKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether rawKey hashes to storedHash, using a
// constant-time comparison to avoid timing side channels.
func (h *Hasher) Verify(rawKey, storedHash string) bool {
	want, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(rawKey))
	got := mac.Sum(nil)
	return hmac.Equal(got, want)
}

// GenerateRawKey produces a fresh 32-byte random key, base64url-encoded,
// for handing to an operator once at creation time.
func GenerateRawKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate key: %w", err)
	}
	return "kb_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Authenticator checks a presented raw key against a loaded set of
// records (refreshed by the caller on each request or periodically).
type Authenticator struct {
	hasher *Hasher
}

func NewAuthenticator(hasher *Hasher) *Authenticator {
	return &Authenticator{hasher: hasher}
}

// Authenticate returns the matching record for rawKey, or a typed AUTH
// error if no record matches or the match has expired.
func (a *Authenticator) Authenticate(rawKey string, records []*types.ApiKeyRecord, now time.Time) (*types.ApiKeyRecord, error) {
	for _, rec := range records {
		if a.hasher.Verify(rawKey, rec.KeyHash) {
			if rec.Expired(now) {
				return nil, types.NewAuthError("API key has expired")
			}
			return rec, nil
		}
	}
	return nil, types.NewAuthError("invalid API key")
}
