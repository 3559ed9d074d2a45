package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kanbanforge/kanband/internal/types"
)

func TestIsBlocked_TrueWhenPredecessorOpen(t *testing.T) {
	g := NewGraph([]Edge{{TaskID: "a", DependsOn: "b"}}, []string{"a", "b"})
	statusOf := func(id string) types.Status {
		if id == "b" {
			return types.StatusInProgress
		}
		return types.StatusTodo
	}

	blocked, count := IsBlocked(g, "a", statusOf)
	assert.True(t, blocked)
	assert.Equal(t, 1, count)
}

func TestIsBlocked_FalseWhenPredecessorTerminal(t *testing.T) {
	g := NewGraph([]Edge{{TaskID: "a", DependsOn: "b"}}, []string{"a", "b"})
	statusOf := func(id string) types.Status {
		if id == "b" {
			return types.StatusDone
		}
		return types.StatusTodo
	}

	blocked, count := IsBlocked(g, "a", statusOf)
	assert.False(t, blocked)
	assert.Equal(t, 0, count)
}

func TestIsBlocked_FalseWhenNoPredecessors(t *testing.T) {
	g := NewGraph(nil, []string{"a"})
	blocked, count := IsBlocked(g, "a", func(string) types.Status { return types.StatusTodo })
	assert.False(t, blocked)
	assert.Equal(t, 0, count)
}

func TestRecomputeBlockedState_ReportsOnlyTransitions(t *testing.T) {
	g := NewGraph([]Edge{{TaskID: "a", DependsOn: "b"}}, []string{"a", "b"})
	statusOf := func(id string) types.Status {
		if id == "b" {
			return types.StatusDone
		}
		return types.StatusTodo
	}
	previous := map[string]bool{"a": true, "b": false}

	changes := RecomputeBlockedState(g, []string{"a", "b"}, statusOf, previous)
	if assert.Len(t, changes, 1) {
		assert.Equal(t, "a", changes[0].TaskID)
		assert.True(t, changes[0].WasBlocked)
		assert.False(t, changes[0].NowBlocked)
	}
}

func TestRecomputeBlockedState_NoChangesWhenStateMatches(t *testing.T) {
	g := NewGraph(nil, []string{"a"})
	changes := RecomputeBlockedState(g, []string{"a"}, func(string) types.Status { return types.StatusTodo }, map[string]bool{"a": false})
	assert.Empty(t, changes)
}
