package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/idgen"
	"github.com/kanbanforge/kanband/internal/types"
)

func (s *Service) AddNote(ctx context.Context, n *types.Note) (*types.Note, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := s.tasks.Get(ctx, tx, n.TaskID)
		if err != nil {
			return err
		}
		n.BoardID = t.BoardID
		if n.Category == "" {
			n.Category = types.NoteGeneral
		}
		now := time.Now()
		n.ID = idgen.New(idgen.PrefixNote, n.Content, n.TaskID, "", now, func(id string) bool {
			_, err := s.notes.Get(ctx, tx, id)
			return err == nil
		})
		if err := s.notes.Create(ctx, tx, n); err != nil {
			return err
		}
		buf.Append(types.Event{
			Type: types.EventNoteAdded, BoardID: n.BoardID, Timestamp: now,
			Payload: map[string]any{"note_id": n.ID, "task_id": n.TaskID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return n, nil
}

func (s *Service) UpdateNote(ctx context.Context, n *types.Note) (*types.Note, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var buf eventbus.Buffer
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := s.notes.Get(ctx, tx, n.ID)
		if err != nil {
			return err
		}
		if err := s.notes.Update(ctx, tx, n); err != nil {
			return err
		}
		buf.Append(types.Event{
			Type: types.EventNoteUpdated, BoardID: existing.BoardID, Timestamp: time.Now(),
			Payload: map[string]any{"note_id": n.ID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.Flush(s.hub)
	return n, nil
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.notes.Delete(ctx, tx, id)
	})
}

func (s *Service) ListNotesByTask(ctx context.Context, taskID string) ([]*types.Note, error) {
	var out []*types.Note
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.notes.ListByTask(ctx, tx, taskID)
		return err
	})
	return out, err
}

func (s *Service) SearchNotes(ctx context.Context, f types.NoteFilter) ([]*types.Note, error) {
	var out []*types.Note
	err := s.store.Transaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = s.notes.Search(ctx, tx, f)
		return err
	})
	return out, err
}
