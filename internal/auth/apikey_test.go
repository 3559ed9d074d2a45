package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestHasher_HashAndVerifyRoundTrip(t *testing.T) {
	h := NewHasher("server-secret")
	raw, err := GenerateRawKey()
	require.NoError(t, err)

	hash := h.Hash(raw)
	assert.True(t, h.Verify(raw, hash))
	assert.False(t, h.Verify("wrong-key", hash))
}

func TestHasher_DifferentSecretsProduceDifferentHashes(t *testing.T) {
	raw := "kb_sometestkey"
	assert.NotEqual(t, NewHasher("a").Hash(raw), NewHasher("b").Hash(raw))
}

func TestAuthenticator_RejectsExpiredKey(t *testing.T) {
	h := NewHasher("secret")
	raw := "kb_expired"
	hash := h.Hash(raw)
	past := time.Now().Add(-time.Hour)
	records := []*types.ApiKeyRecord{{ID: "key-1", KeyHash: hash, ExpiresAt: &past}}

	a := NewAuthenticator(h)
	_, err := a.Authenticate(raw, records, time.Now())
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.KindAuth, te.Kind)
}

func TestAuthenticator_AcceptsValidKey(t *testing.T) {
	h := NewHasher("secret")
	raw := "kb_valid"
	hash := h.Hash(raw)
	records := []*types.ApiKeyRecord{{ID: "key-1", KeyHash: hash}}

	a := NewAuthenticator(h)
	rec, err := a.Authenticate(raw, records, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "key-1", rec.ID)
}
