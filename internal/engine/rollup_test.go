package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestComputeRollup_LeafThenParentThenGrandparent(t *testing.T) {
	root := "root"
	mid := "mid"
	leaf := "leaf"

	nodes := map[string]ProgressNode{
		root: {ID: root, Children: []string{mid}},
		mid:  {ID: mid, ParentID: &root, Status: types.StatusInProgress, Children: []string{leaf}},
		leaf: {ID: leaf, ParentID: &mid, Status: types.StatusDone},
	}
	percents := map[string]float64{}

	plan := ComputeRollup(leaf, nodes, percents)
	require.Len(t, plan, 3)
	assert.Equal(t, leaf, plan[0].TaskID)
	assert.Equal(t, 100.0, plan[0].Percent)
	assert.Equal(t, mid, plan[1].TaskID)
	assert.Equal(t, 100.0, plan[1].Percent) // single child, done
	assert.Equal(t, root, plan[2].TaskID)
	assert.Equal(t, 100.0, plan[2].Percent)
}

func TestComputeRollup_ParentAveragesMultipleChildren(t *testing.T) {
	parent := "parent"
	a, b := "a", "b"
	nodes := map[string]ProgressNode{
		parent: {ID: parent, Children: []string{a, b}},
		a:      {ID: a, ParentID: &parent, Status: types.StatusDone},
		b:      {ID: b, ParentID: &parent, Status: types.StatusTodo},
	}
	percents := map[string]float64{a: 100, b: 0}

	plan := ComputeRollup(a, nodes, percents)
	last := plan[len(plan)-1]
	assert.Equal(t, parent, last.TaskID)
	assert.Equal(t, 50.0, last.Percent)
}

func TestValidateCloseToDone_RejectsOpenChildren(t *testing.T) {
	err := ValidateCloseToDone([]types.Status{types.StatusDone, types.StatusInProgress})
	require.Error(t, err)
	te, _ := types.AsError(err)
	assert.Equal(t, types.CodeHasOpenChildren, te.Code)

	assert.NoError(t, ValidateCloseToDone([]types.Status{types.StatusDone, types.StatusArchived}))
}
