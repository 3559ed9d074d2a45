package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestDepth_WalksParentChain(t *testing.T) {
	root := HierarchyNode{ID: "root"}
	mid := HierarchyNode{ID: "mid", ParentTaskID: strPtr("root")}
	leaf := HierarchyNode{ID: "leaf", ParentTaskID: strPtr("mid")}
	byID := map[string]HierarchyNode{"root": root, "mid": mid, "leaf": leaf}

	assert.Equal(t, 0, Depth(root, byID))
	assert.Equal(t, 1, Depth(mid, byID))
	assert.Equal(t, 2, Depth(leaf, byID))
}

func TestDepth_StopsOnCycleWithoutInfiniteLoop(t *testing.T) {
	a := HierarchyNode{ID: "a", ParentTaskID: strPtr("b")}
	b := HierarchyNode{ID: "b", ParentTaskID: strPtr("a")}
	byID := map[string]HierarchyNode{"a": a, "b": b}

	assert.NotPanics(t, func() { Depth(a, byID) })
}

func TestValidateSubtaskPlacement_RejectsCrossBoard(t *testing.T) {
	parent := HierarchyNode{ID: "p", BoardID: "board-1"}
	err := ValidateSubtaskPlacement(parent, "board-2", map[string]HierarchyNode{"p": parent})
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeCrossBoard, te.Code)
}

func TestValidateSubtaskPlacement_RejectsDepthExceeded(t *testing.T) {
	root := HierarchyNode{ID: "root", BoardID: "b1"}
	mid := HierarchyNode{ID: "mid", BoardID: "b1", ParentTaskID: strPtr("root")}
	leaf := HierarchyNode{ID: "leaf", BoardID: "b1", ParentTaskID: strPtr("mid")}
	deep := HierarchyNode{ID: "deep", BoardID: "b1", ParentTaskID: strPtr("leaf")}
	byID := map[string]HierarchyNode{"root": root, "mid": mid, "leaf": leaf, "deep": deep}

	err := ValidateSubtaskPlacement(deep, "b1", byID)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeDepthExceeded, te.Code)
}

func TestValidateSubtaskPlacement_AcceptsWithinDepth(t *testing.T) {
	root := HierarchyNode{ID: "root", BoardID: "b1"}
	byID := map[string]HierarchyNode{"root": root}
	assert.NoError(t, ValidateSubtaskPlacement(root, "b1", byID))
}

func TestNextSiblingPosition(t *testing.T) {
	assert.Equal(t, 0, NextSiblingPosition(nil))
	assert.Equal(t, 3, NextSiblingPosition([]HierarchyNode{{Position: 0}, {Position: 2}, {Position: 1}}))
}

func strPtr(s string) *string { return &s }
