package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kanbanforge/kanband/internal/jsonl"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/types"
)

// Import reads dir's manifest and entity files and replays them through
// svc's Create operations in dependency order: boards, columns, tasks
// (parents before children, since each export's task order already
// reflects creation order), dependencies, notes, tags, task-tag
// attachments, then repo mappings.
//
// Every ID the source database assigned is regenerated on create (IDs
// are content hashes salted with creation time; see internal/idgen), so
// Import tracks an old-ID-to-new-ID map per entity kind and rewrites
// every foreign key through it as it replays. A referencing row whose
// referent wasn't in the export is skipped rather than failing the whole
// run, since a partial export (e.g. one board of many) is a legitimate
// input; a task or tag whose parent is missing is created without one.
// Any create that fails ends the import with an error.
func Import(ctx context.Context, svc *service.Service, dir string) (*Manifest, error) {
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	checksum, err := concatenatedChecksum(dir)
	if err != nil {
		return nil, err
	}
	if checksum != manifest.Checksum {
		return nil, types.NewConflictError(types.CodeChecksumMismatch,
			"export directory checksum does not match its manifest", map[string]any{
				"expected": manifest.Checksum, "actual": checksum,
			})
	}

	boards, err := jsonl.ReadFile[types.Board](filepath.Join(dir, boardsFile))
	if err != nil {
		return nil, err
	}
	columns, err := jsonl.ReadFile[types.Column](filepath.Join(dir, columnsFile))
	if err != nil {
		return nil, err
	}
	tasks, err := jsonl.ReadFile[types.Task](filepath.Join(dir, tasksFile))
	if err != nil {
		return nil, err
	}
	deps, err := jsonl.ReadFile[types.Dependency](filepath.Join(dir, dependenciesFile))
	if err != nil {
		return nil, err
	}
	notes, err := jsonl.ReadFile[types.Note](filepath.Join(dir, notesFile))
	if err != nil {
		return nil, err
	}
	tags, err := jsonl.ReadFile[types.Tag](filepath.Join(dir, tagsFile))
	if err != nil {
		return nil, err
	}
	attachments, err := jsonl.ReadFile[taskTagAttachment](filepath.Join(dir, taskTagsFile))
	if err != nil {
		return nil, err
	}
	mappings, err := jsonl.ReadFile[types.RepoMapping](filepath.Join(dir, mappingsFile))
	if err != nil {
		return nil, err
	}

	boardIDs := map[string]string{}
	existingColumnIDs := map[string]string{}
	for _, b := range boards {
		created, err := svc.CreateBoard(ctx, &types.Board{
			Name: b.Name, Description: b.Description, Archived: b.Archived,
		})
		if err != nil {
			return nil, fmt.Errorf("import board %q: %w", b.Name, err)
		}
		boardIDs[b.ID] = created.ID

		cols, err := svc.ListColumns(ctx, created.ID)
		if err != nil {
			return nil, fmt.Errorf("import board %q: load default columns: %w", b.Name, err)
		}
		for _, c := range cols {
			existingColumnIDs[created.ID+"|"+c.Name] = c.ID
		}
	}

	columnIDs := map[string]string{}
	for _, c := range columns {
		newBoardID, ok := boardIDs[c.BoardID]
		if !ok {
			continue
		}
		key := newBoardID + "|" + c.Name
		if existingID, ok := existingColumnIDs[key]; ok {
			columnIDs[c.ID] = existingID
			continue
		}
		created, err := svc.CreateColumn(ctx, &types.Column{
			BoardID: newBoardID, Name: c.Name, Position: c.Position, Color: c.Color,
		})
		if err != nil {
			return nil, fmt.Errorf("import column %q: %w", c.Name, err)
		}
		columnIDs[c.ID] = created.ID
		existingColumnIDs[key] = created.ID
	}

	taskIDs := map[string]string{}
	for _, t := range tasks {
		newBoardID, ok := boardIDs[t.BoardID]
		if !ok {
			continue
		}
		body := &types.Task{
			BoardID: newBoardID, ColumnID: columnIDs[t.ColumnID], Title: t.Title,
			Description: t.Description, Status: t.Status, Priority: t.Priority,
			DueDate: t.DueDate, Assignee: t.Assignee, EstimatedHours: t.EstimatedHours,
			Position: t.Position, Archived: t.Archived,
		}

		var created *types.Task
		var err error
		if t.ParentTaskID != nil {
			if newParentID, ok := taskIDs[*t.ParentTaskID]; ok {
				created, err = svc.CreateSubtask(ctx, newParentID, body)
			} else {
				created, err = svc.CreateTask(ctx, body)
			}
		} else {
			created, err = svc.CreateTask(ctx, body)
		}
		if err != nil {
			return nil, fmt.Errorf("import task %q: %w", t.Title, err)
		}
		taskIDs[t.ID] = created.ID
	}

	for _, d := range deps {
		newTaskID, ok1 := taskIDs[d.TaskID]
		newDependsOn, ok2 := taskIDs[d.DependsOnTaskID]
		if !ok1 || !ok2 {
			continue
		}
		if err := svc.AddDependency(ctx, newTaskID, newDependsOn, d.Type); err != nil {
			return nil, fmt.Errorf("import dependency %s -> %s: %w", d.TaskID, d.DependsOnTaskID, err)
		}
	}

	for _, n := range notes {
		newTaskID, ok := taskIDs[n.TaskID]
		if !ok {
			continue
		}
		if _, err := svc.AddNote(ctx, &types.Note{
			TaskID: newTaskID, BoardID: boardIDs[n.BoardID], Content: n.Content,
			Category: n.Category, Pinned: n.Pinned,
		}); err != nil {
			return nil, fmt.Errorf("import note for task %s: %w", n.TaskID, err)
		}
	}

	tagIDs := map[string]string{}
	for _, tg := range tags {
		var newParentID *string
		if tg.ParentID != nil {
			if mapped, ok := tagIDs[*tg.ParentID]; ok {
				newParentID = &mapped
			}
		}
		created, err := svc.CreateTag(ctx, &types.Tag{Name: tg.Name, Slug: tg.Slug, Color: tg.Color, ParentID: newParentID})
		if err != nil {
			return nil, fmt.Errorf("import tag %q: %w", tg.Name, err)
		}
		tagIDs[tg.ID] = created.ID
	}

	for _, a := range attachments {
		newTaskID, ok1 := taskIDs[a.TaskID]
		newTagID, ok2 := tagIDs[a.TagID]
		if !ok1 || !ok2 {
			continue
		}
		if err := svc.AttachTag(ctx, newTaskID, newTagID); err != nil {
			return nil, fmt.Errorf("import tag attachment %s -> %s: %w", a.TaskID, a.TagID, err)
		}
	}

	for _, m := range mappings {
		newBoardID, ok := boardIDs[m.BoardID]
		if !ok {
			continue
		}
		var newDefaultTags []string
		for _, oldTagID := range m.DefaultTags {
			if newTagID, ok := tagIDs[oldTagID]; ok {
				newDefaultTags = append(newDefaultTags, newTagID)
			}
		}
		if _, err := svc.CreateRepoMapping(ctx, &types.RepoMapping{
			Pattern: m.Pattern, PatternType: m.PatternType, BoardID: newBoardID,
			Priority: m.Priority, DefaultTags: newDefaultTags,
		}); err != nil {
			return nil, fmt.Errorf("import mapping %q: %w", m.Pattern, err)
		}
	}

	return manifest, nil
}
