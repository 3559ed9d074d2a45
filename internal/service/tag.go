package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

func (s *Service) CreateTag(ctx context.Context, t *types.Tag) (*types.Tag, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		path := t.Slug
		if t.ParentID != nil {
			parent, err := s.tags.Get(ctx, tx, *t.ParentID)
			if err != nil {
				return err
			}
			path = parent.Path + "/" + t.Slug
		}
		t.Path = path
		t.ID = idgen.New(idgen.PrefixTag, t.Name, t.Slug, "", time.Now(), func(id string) bool {
			_, err := s.tags.Get(ctx, tx, id)
			return err == nil
		})
		if err := s.tags.Create(ctx, tx, t); err != nil {
			return err
		}
		buf.Append(types.Event{
			Type: types.EventTagCreated, Timestamp: time.Now(),
			Payload: map[string]any{"tag_id": t.ID, "path": t.Path},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return t, nil
}

// ReparentTag moves a tag under a new parent (nil for root), rejecting a
// move that would make the tag its own ancestor, and rewrites the
// subtree's paths atomically.
func (s *Service) ReparentTag(ctx context.Context, tagID string, newParentID *string) error {
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tags.Get(ctx, tx, tagID)
		if err != nil {
			return err
		}

		newPath := t.Slug
		if newParentID != nil {
			if *newParentID == tagID {
				return types.NewConflictError(types.CodeCycle, "a tag cannot be its own parent", map[string]any{"tag_id": tagID})
			}
			parent, err := s.tags.Get(ctx, tx, *newParentID)
			if err != nil {
				return err
			}
			if parent.Path == t.Path || strings.HasPrefix(parent.Path, t.Path+"/") {
				return types.NewConflictError(types.CodeCycle, "cannot reparent a tag under its own descendant", map[string]any{
					"tag_id": tagID, "new_parent_id": *newParentID,
				})
			}
			newPath = parent.Path + "/" + t.Slug
		}

		if err := s.tags.Reparent(ctx, tx, tagID, newParentID, newPath); err != nil {
			return err
		}
		buf.Append(types.Event{
			Type: types.EventTagReparented, Timestamp: time.Now(),
			Payload: map[string]any{"tag_id": tagID, "new_path": newPath},
		})
		return nil
	})
	if err != nil {
		return err
	}
	buf.Flush(s.hub)
	return nil
}

func (s *Service) AttachTag(ctx context.Context, taskID, tagID string) error {
	return s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tags.AttachToTask(ctx, tx, taskID, tagID); err != nil {
			return err
		}
		return s.tags.IncrementUsage(ctx, tx, tagID, 1)
	})
}

func (s *Service) DetachTag(ctx context.Context, taskID, tagID string) error {
	return s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tags.DetachFromTask(ctx, tx, taskID, tagID); err != nil {
			return err
		}
		return s.tags.IncrementUsage(ctx, tx, tagID, -1)
	})
}

func (s *Service) ListTags(ctx context.Context) ([]*types.Tag, error) {
	var out []*types.Tag
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.tags.List(ctx, tx)
		return err
	})
	return out, err
}

// ListTagsForTask returns the tags attached to a single task, used by the
// export path to capture task-tag attachment edges alongside tag
// definitions.
func (s *Service) ListTagsForTask(ctx context.Context, taskID string) ([]*types.Tag, error) {
	var out []*types.Tag
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.tags.ListForTask(ctx, tx, taskID)
		return err
	})
	return out, err
}
