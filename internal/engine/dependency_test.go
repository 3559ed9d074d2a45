package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestGraph_WouldCreateCycle(t *testing.T) {
	// a -> b -> c (a depends on b, b depends on c)
	g := NewGraph([]Edge{{TaskID: "a", DependsOn: "b"}, {TaskID: "b", DependsOn: "c"}}, []string{"a", "b", "c"})

	assert.True(t, g.WouldCreateCycle("c", "a"), "c depending on a would close the loop back through b")
	assert.False(t, g.WouldCreateCycle("c", "z"), "no path from z back to c")
	assert.True(t, g.WouldCreateCycle("a", "a"), "self-edge is always a cycle")
}

func TestValidateNewDependency_RejectsSelfAndCycle(t *testing.T) {
	g := NewGraph([]Edge{{TaskID: "a", DependsOn: "b"}}, []string{"a", "b"})

	err := ValidateNewDependency(g, "x", "x", types.DepBlocks)
	require.Error(t, err)
	te, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeSelfDependency, te.Code)

	err = ValidateNewDependency(g, "b", "a", types.DepBlocks)
	require.Error(t, err)
	te, ok = types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeCycle, te.Code)

	err = ValidateNewDependency(g, "b", "a", types.DepRelated)
	assert.NoError(t, err, "non-blocks edges are not cycle-checked")
}

func TestGraph_TransitiveBlockCountAndCriticalPath(t *testing.T) {
	// a -> b -> c -> d, and a -> e
	edges := []Edge{
		{TaskID: "a", DependsOn: "b"},
		{TaskID: "b", DependsOn: "c"},
		{TaskID: "c", DependsOn: "d"},
		{TaskID: "a", DependsOn: "e"},
	}
	g := NewGraph(edges, []string{"a", "b", "c", "d", "e"})

	assert.Equal(t, 4, g.TransitiveBlockCount("a"))
	assert.Equal(t, 3, g.CriticalPathLength("a"))
	assert.Equal(t, 0, g.CriticalPathLength("d"))
	assert.Equal(t, 2, g.DirectBlockCount("a"))
}

func TestGraph_TopologicalOrderIsDeterministic(t *testing.T) {
	edges := []Edge{{TaskID: "a", DependsOn: "b"}, {TaskID: "c", DependsOn: "b"}}
	g := NewGraph(edges, []string{"a", "b", "c"})

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	// b has no outgoing edges so it's a root of the topo order (everything
	// depends on it); a and c both depend only on b and tie-break by ID.
	assert.Equal(t, []string{"b", "a", "c"}, order)
}

func TestGraph_Unblocks(t *testing.T) {
	g := NewGraph([]Edge{{TaskID: "a", DependsOn: "b"}, {TaskID: "c", DependsOn: "b"}}, []string{"a", "b", "c"})
	assert.ElementsMatch(t, []string{"a", "c"}, g.Unblocks("b"))
}
