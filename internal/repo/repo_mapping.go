package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kanbanforge/kanband/internal/types"
)

// RepoMappingRepository is the typed CRUD surface for repository-pattern
// to board mappings. Highest Priority wins when a presented repo
// identifier matches more than one mapping (resolved by the service layer,
// not here).
type RepoMappingRepository struct{}

func NewRepoMappingRepository() *RepoMappingRepository { return &RepoMappingRepository{} }

func (r *RepoMappingRepository) Create(ctx context.Context, tx dbtx, m *types.RepoMapping) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO repo_mappings (id, pattern, pattern_type, board_id, priority) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Pattern, m.PatternType, m.BoardID, m.Priority)
	if err != nil {
		return wrapErr("insert repo mapping", err)
	}
	return nil
}

func (r *RepoMappingRepository) Get(ctx context.Context, tx dbtx, id string) (*types.RepoMapping, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, pattern, pattern_type, board_id, priority FROM repo_mappings WHERE id = ?`, id)
	var m types.RepoMapping
	err := row.Scan(&m.ID, &m.Pattern, &m.PatternType, &m.BoardID, &m.Priority)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewNotFoundError("repo_mapping", id)
	}
	if err != nil {
		return nil, wrapErr("scan repo mapping", err)
	}
	return &m, nil
}

// ListByPriority returns every mapping ordered highest-priority first, so
// the service layer can walk them and return the first pattern match.
func (r *RepoMappingRepository) ListByPriority(ctx context.Context, tx dbtx) ([]*types.RepoMapping, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, pattern, pattern_type, board_id, priority FROM repo_mappings ORDER BY priority DESC`)
	if err != nil {
		return nil, wrapErr("list repo mappings", err)
	}
	defer rows.Close()

	var out []*types.RepoMapping
	for rows.Next() {
		var m types.RepoMapping
		if err := rows.Scan(&m.ID, &m.Pattern, &m.PatternType, &m.BoardID, &m.Priority); err != nil {
			return nil, wrapErr("scan repo mapping row", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *RepoMappingRepository) Delete(ctx context.Context, tx dbtx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM repo_mappings WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete repo mapping", err)
	}
	return requireAffected(res, "repo_mapping", id)
}

func (r *RepoMappingRepository) AttachDefaultTag(ctx context.Context, tx dbtx, mappingID, tagID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO repo_mapping_default_tags (mapping_id, tag_id) VALUES (?, ?)`, mappingID, tagID)
	if err != nil {
		return wrapErr("attach default tag", err)
	}
	return nil
}

func (r *RepoMappingRepository) ListDefaultTagIDs(ctx context.Context, tx dbtx, mappingID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT tag_id FROM repo_mapping_default_tags WHERE mapping_id = ?`, mappingID)
	if err != nil {
		return nil, wrapErr("list default tags", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("scan default tag id", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
