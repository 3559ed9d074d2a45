package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

// CreateAPIKey mints a fresh raw key, stores only its hash, and returns the
// raw key alongside the stored record. The raw key is never retrievable
// again after this call returns.
func (s *Service) CreateAPIKey(ctx context.Context, name string, expiresAt *time.Time) (rawKey string, rec *types.ApiKeyRecord, err error) {
	rawKey, err = auth.GenerateRawKey()
	if err != nil {
		return "", nil, types.NewInternalError("service: generate api key", err)
	}
	rec = &types.ApiKeyRecord{
		Name:      name,
		KeyHash:   s.auth.Hash(rawKey),
		ExpiresAt: expiresAt,
	}
	err = s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := s.apiKeys.List(ctx, tx)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, k := range existing {
			seen[k.ID] = true
		}
		rec.ID = idgen.New(idgen.PrefixApiKey, name, rec.KeyHash, "", time.Now(), func(id string) bool {
			return seen[id]
		})
		return s.apiKeys.Create(ctx, tx, rec)
	})
	if err != nil {
		return "", nil, err
	}
	return rawKey, rec, nil
}

func (s *Service) RevokeAPIKey(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.apiKeys.Delete(ctx, tx, id)
	})
}

func (s *Service) ListAPIKeys(ctx context.Context) ([]*types.ApiKeyRecord, error) {
	var out []*types.ApiKeyRecord
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.apiKeys.List(ctx, tx)
		return err
	})
	return out, err
}

// Authenticate verifies rawKey against every stored record and, on a
// successful non-expired match, touches last_used_at.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (*types.ApiKeyRecord, error) {
	authenticator := auth.NewAuthenticator(s.auth)
	var matched *types.ApiKeyRecord
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		records, err := s.apiKeys.List(ctx, tx)
		if err != nil {
			return err
		}
		rec, err := authenticator.Authenticate(rawKey, records, time.Now())
		if err != nil {
			return err
		}
		matched = rec
		return s.apiKeys.TouchLastUsed(ctx, tx, rec.ID)
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}
