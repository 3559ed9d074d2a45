package types

import "time"

// Board is the top-level container owning columns, tasks, notes and tag
// mappings. Deleting a board cascades to all of these.
type Board struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,max=200"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Archived    bool      `json:"archived" db:"archived"`
}

func (b *Board) Validate() error {
	if b.Name == "" {
		return NewValidationError("board validation failed", map[string]any{"name": "required"})
	}
	if len(b.Name) > 200 {
		return NewValidationError("board validation failed", map[string]any{"name": "must be at most 200 characters"})
	}
	return nil
}

// Column is a dense-ordered lane within a board (e.g. "Todo", "Doing",
// "Done"). Position is a 0-based dense ordering within the owning board.
type Column struct {
	ID      string `json:"id" db:"id"`
	BoardID string `json:"board_id" db:"board_id" validate:"required"`
	Name    string `json:"name" db:"name" validate:"required,max=100"`
	Position int   `json:"position" db:"position"`
	Color   string `json:"color,omitempty" db:"color"`
}

func (c *Column) Validate() error {
	details := map[string]any{}
	if c.BoardID == "" {
		details["board_id"] = "required"
	}
	if c.Name == "" {
		details["name"] = "required"
	}
	if len(details) > 0 {
		return NewValidationError("column validation failed", details)
	}
	return nil
}
