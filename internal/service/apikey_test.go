package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAPIKey_AuthenticateRoundTrips(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	raw, rec, err := svc.CreateAPIKey(ctx, "ci-bot", nil)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	got, err := svc.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestAuthenticate_RejectsUnknownKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "kb_not-a-real-key")
	require.Error(t, err)
}

func TestAuthenticate_RejectsExpiredKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	raw, _, err := svc.CreateAPIKey(ctx, "stale", &past)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, raw)
	require.Error(t, err)
}

func TestRevokeAPIKey_RemovesFromList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, rec, err := svc.CreateAPIKey(ctx, "temp", nil)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeAPIKey(ctx, rec.ID))

	list, err := svc.ListAPIKeys(ctx)
	require.NoError(t, err)
	for _, k := range list {
		assert.NotEqual(t, rec.ID, k.ID)
	}
}
