package service

import (
	"context"
	"database/sql"
	"path"
	"strings"
	"time"

	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

func (s *Service) CreateRepoMapping(ctx context.Context, m *types.RepoMapping) (*types.RepoMapping, error) {
	if m.Pattern == "" {
		return nil, types.NewValidationError("repo mapping validation failed", map[string]any{"pattern": "required"})
	}
	if !m.PatternType.Valid() {
		return nil, types.NewValidationError("repo mapping validation failed", map[string]any{"pattern_type": "invalid"})
	}
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.boards.Get(ctx, tx, m.BoardID); err != nil {
			return err
		}
		m.ID = idgen.New(idgen.PrefixRepoMap, m.Pattern, string(m.PatternType), "", time.Now(), func(id string) bool {
			_, err := s.mappings.Get(ctx, tx, id)
			return err == nil
		})
		if err := s.mappings.Create(ctx, tx, m); err != nil {
			return err
		}
		for _, tagID := range m.DefaultTags {
			if err := s.mappings.AttachDefaultTag(ctx, tx, m.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteRepoMapping(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.mappings.Delete(ctx, tx, id)
	})
}

func (s *Service) ListRepoMappings(ctx context.Context) ([]*types.RepoMapping, error) {
	var out []*types.RepoMapping
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.mappings.ListByPriority(ctx, tx)
		if err != nil {
			return err
		}
		for _, m := range out {
			tagIDs, err := s.mappings.ListDefaultTagIDs(ctx, tx, m.ID)
			if err != nil {
				return err
			}
			m.DefaultTags = tagIDs
		}
		return nil
	})
	return out, err
}

// MatchBoard walks mappings highest-priority first and returns the board ID
// of the first pattern that matches identifier, or a NOT_FOUND error if
// none do.
func (s *Service) MatchBoard(ctx context.Context, identifier string) (string, error) {
	var boardID string
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		mappings, err := s.mappings.ListByPriority(ctx, tx)
		if err != nil {
			return err
		}
		for _, m := range mappings {
			if matchesPattern(m.PatternType, m.Pattern, identifier) {
				boardID = m.BoardID
				return nil
			}
		}
		return types.NewNotFoundError("repo_mapping", identifier)
	})
	if err != nil {
		return "", err
	}
	return boardID, nil
}

func matchesPattern(pt types.PatternType, pattern, identifier string) bool {
	switch pt {
	case types.PatternURL, types.PatternConfigFile:
		ok, err := path.Match(pattern, identifier)
		return err == nil && ok
	case types.PatternName, types.PatternBranch:
		return strings.EqualFold(pattern, identifier) || strings.Contains(strings.ToLower(identifier), strings.ToLower(pattern))
	default:
		return false
	}
}
