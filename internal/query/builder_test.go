package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SelectWithWhere(t *testing.T) {
	sql, args, err := New(TasksSchema).
		Where("board_id", OpEq, "brd-default").
		Where("status", OpEq, "todo").
		OrderBy("priority_score", true).
		Limit(20).
		BuildSelect()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM tasks WHERE board_id = ? AND status = ? ORDER BY priority_score DESC LIMIT 20", sql)
	assert.Equal(t, []any{"brd-default", "todo"}, args)
}

func TestBuilder_RejectsUnknownColumn(t *testing.T) {
	_, _, err := New(TasksSchema).Where("secret_column", OpEq, "x").BuildSelect()
	require.Error(t, err)
}

func TestBuilder_RejectsLikeOnNonTextColumn(t *testing.T) {
	_, _, err := New(TasksSchema).Where("status", OpLike, "%todo%").BuildSelect()
	require.Error(t, err)
}

func TestBuilder_WhereInRejectsEmptySet(t *testing.T) {
	_, _, err := New(TasksSchema).WhereIn("id", nil).BuildSelect()
	require.Error(t, err)
}

func TestBuilder_DeleteRequiresWhere(t *testing.T) {
	_, _, err := New(TasksSchema).BuildDelete()
	require.Error(t, err)

	sql, args, err := New(TasksSchema).Where("id", OpEq, "tsk-1").BuildDelete()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM tasks WHERE id = ?", sql)
	assert.Equal(t, []any{"tsk-1"}, args)
}

func TestBuilder_UpdateRendersDeterministicOrder(t *testing.T) {
	sql, args, err := New(TasksSchema).
		Where("id", OpEq, "tsk-1").
		BuildUpdate(map[string]any{"status": "done", "priority": "high"}, []string{"status", "priority"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE tasks SET status = ?, priority = ? WHERE id = ?", sql)
	assert.Equal(t, []any{"done", "high", "tsk-1"}, args)
}

func TestBuilder_BuildCountIgnoresOrderAndLimit(t *testing.T) {
	sql, _, err := New(TasksSchema).
		Where("board_id", OpEq, "brd-default").
		OrderBy("created_at", false).
		Limit(10).
		BuildCount()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM tasks WHERE board_id = ?", sql)
}
