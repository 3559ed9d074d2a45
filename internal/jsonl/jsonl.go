// Package jsonl reads and writes line-delimited JSON files: one JSON
// object per line, no surrounding array or separators. Used by
// internal/export to dump and restore entity collections in a format
// that diffs and greps line-by-line.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxLineBytes = 10 * 1024 * 1024

// WriteFile atomically writes one JSON object per line for each item in
// items, via a temp file in the same directory followed by a rename, so a
// reader never observes a partially written file.
func WriteFile[T any](path string, items []T) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return fmt.Errorf("jsonl: create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	enc := json.NewEncoder(tmp)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("jsonl: encode record for %s: %w", path, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonl: close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("jsonl: replace %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}

// ReadFile decodes one JSON object per line from path, skipping blank
// lines. The scanner's buffer is sized for records up to 10MB, matching
// the line-size budget a full task-plus-description record might need.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("jsonl: %s line %d: %w", path, line, err)
		}
		out = append(out, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: scan %s: %w", path, err)
	}
	return out, nil
}
