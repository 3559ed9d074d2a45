// Package export dumps and restores the full task graph as a directory
// of JSONL files plus a manifest sidecar, for backup portability and
// migration between installations. It replays entities through the
// Service Layer rather than writing rows directly, so every invariant
// the Service enforces on create (name uniqueness, cycle rejection,
// hierarchy depth) applies equally to an import.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kanbanforge/kanband/internal/jsonl"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/types"
)

const (
	boardsFile       = "boards.jsonl"
	columnsFile      = "columns.jsonl"
	tasksFile        = "tasks.jsonl"
	dependenciesFile = "dependencies.jsonl"
	notesFile        = "notes.jsonl"
	tagsFile         = "tags.jsonl"
	taskTagsFile     = "task_tags.jsonl"
	mappingsFile     = "mappings.jsonl"
	manifestFile     = "manifest.json"
)

var entityFiles = []string{
	boardsFile, columnsFile, tasksFile, dependenciesFile,
	notesFile, tagsFile, taskTagsFile, mappingsFile,
}

// Manifest records what an export contains: a count per entity file, a
// SHA-256 over the concatenated JSONL files in a fixed order, and the
// export timestamp, so Import can detect truncation or tampering before
// touching the database.
type Manifest struct {
	ExportedAt time.Time      `json:"exported_at"`
	Counts     map[string]int `json:"counts"`
	Checksum   string         `json:"checksum"`
}

// taskTagAttachment is the join-table edge between a task and a tag;
// it isn't one of the named domain entities, so it isn't a type in
// internal/types, but Export still needs to carry it to round-trip
// tag assignments.
type taskTagAttachment struct {
	TaskID string `json:"task_id"`
	TagID  string `json:"tag_id"`
}

// Export writes every board, column, task, dependency, note, tag,
// task-tag attachment, and repo mapping in svc's database into dir as
// JSONL files plus manifest.json, stamped with the given timestamp
// (the caller supplies it since workflow scripts and schedulers may not
// call time.Now() directly).
func Export(ctx context.Context, svc *service.Service, dir string, now time.Time) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}

	boards, err := svc.ListBoards(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("export: list boards: %w", err)
	}

	var columns []*types.Column
	var tasks []*types.Task
	var deps []*types.Dependency
	var notes []*types.Note
	var attachments []taskTagAttachment

	for _, b := range boards {
		cols, err := svc.ListColumns(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("export: list columns for board %s: %w", b.ID, err)
		}
		columns = append(columns, cols...)

		boardTasks, err := svc.SearchTasks(ctx, types.TaskFilter{BoardID: b.ID, IncludeArchived: true})
		if err != nil {
			return nil, fmt.Errorf("export: list tasks for board %s: %w", b.ID, err)
		}
		tasks = append(tasks, boardTasks...)

		for _, t := range boardTasks {
			outgoing, _, err := svc.ListDependencies(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("export: list dependencies for task %s: %w", t.ID, err)
			}
			deps = append(deps, outgoing...)

			taskNotes, err := svc.ListNotesByTask(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("export: list notes for task %s: %w", t.ID, err)
			}
			notes = append(notes, taskNotes...)

			taskTags, err := svc.ListTagsForTask(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("export: list tags for task %s: %w", t.ID, err)
			}
			for _, tg := range taskTags {
				attachments = append(attachments, taskTagAttachment{TaskID: t.ID, TagID: tg.ID})
			}
		}
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: list tags: %w", err)
	}
	mappings, err := svc.ListRepoMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: list mappings: %w", err)
	}

	counts := map[string]int{
		boardsFile:       len(boards),
		columnsFile:      len(columns),
		tasksFile:        len(tasks),
		dependenciesFile: len(deps),
		notesFile:        len(notes),
		tagsFile:         len(tags),
		taskTagsFile:     len(attachments),
		mappingsFile:     len(mappings),
	}

	if err := jsonl.WriteFile(filepath.Join(dir, boardsFile), boards); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, columnsFile), columns); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, tasksFile), tasks); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, dependenciesFile), deps); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, notesFile), notes); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, tagsFile), tags); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, taskTagsFile), attachments); err != nil {
		return nil, err
	}
	if err := jsonl.WriteFile(filepath.Join(dir, mappingsFile), mappings); err != nil {
		return nil, err
	}

	checksum, err := concatenatedChecksum(dir)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{ExportedAt: now, Counts: counts, Checksum: checksum}
	if err := writeManifest(dir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func concatenatedChecksum(dir string) (string, error) {
	h := sha256.New()
	for _, name := range entityFiles {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("export: checksum %s: %w", name, err)
		}
		_, copyErr := io.Copy(h, f)
		_ = f.Close()
		if copyErr != nil {
			return "", fmt.Errorf("export: checksum %s: %w", name, copyErr)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeManifest(dir string, m *Manifest) error {
	dst := filepath.Join(dir, manifestFile)
	tmp, err := os.CreateTemp(dir, manifestFile+".tmp.*")
	if err != nil {
		return fmt.Errorf("export: create manifest temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("export: encode manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close manifest temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("export: replace manifest: %w", err)
	}
	return os.Chmod(dst, 0600)
}

func readManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("export: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("export: parse manifest: %w", err)
	}
	return &m, nil
}
