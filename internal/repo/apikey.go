package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kanbanforge/kanband/internal/types"
)

// ApiKeyRepository is the typed CRUD surface for API key records. The raw
// key is never stored or returned; only its hash.
type ApiKeyRepository struct{}

func NewApiKeyRepository() *ApiKeyRepository { return &ApiKeyRepository{} }

func (r *ApiKeyRepository) Create(ctx context.Context, tx dbtx, k *types.ApiKeyRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, key_hash, expires_at) VALUES (?, ?, ?, ?)`,
		k.ID, k.Name, k.KeyHash, k.ExpiresAt)
	if err != nil {
		return wrapErr("insert api key", err)
	}
	return nil
}

func (r *ApiKeyRepository) GetByHash(ctx context.Context, tx dbtx, hash string) (*types.ApiKeyRecord, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, name, key_hash, created_at, last_used_at, expires_at FROM api_keys WHERE key_hash = ?`, hash)
	var k types.ApiKeyRecord
	err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.CreatedAt, &k.LastUsedAt, &k.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("api_key", "")
	}
	if err != nil {
		return nil, wrapErr("scan api key", err)
	}
	return &k, nil
}

func (r *ApiKeyRepository) TouchLastUsed(ctx context.Context, tx dbtx, id string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return wrapErr("touch api key", err)
	}
	return nil
}

func (r *ApiKeyRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete api key", err)
	}
	return requireAffected(res, "api_key", id)
}

func (r *ApiKeyRepository) List(ctx context.Context, tx dbtx) ([]*types.ApiKeyRecord, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, key_hash, created_at, last_used_at, expires_at FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapErr("list api keys", err)
	}
	defer rows.Close()

	var out []*types.ApiKeyRecord
	for rows.Next() {
		var k types.ApiKeyRecord
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.CreatedAt, &k.LastUsedAt, &k.ExpiresAt); err != nil {
			return nil, wrapErr("scan api key row", err)
		}
		out = append(out, &k)
	}
	return out, rows.Err()
}
