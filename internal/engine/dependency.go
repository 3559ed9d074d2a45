package engine

import (
	"sort"

	"github.com/kanbanforge/kanband/internal/types"
)

// Edge is a directed blocks-edge: TaskID depends on (is blocked by)
// DependsOn.
type Edge struct {
	TaskID    string
	DependsOn string
}

// Graph is an adjacency-list view of the blocks-subgraph for one board,
// built once per recompute pass and reused by cycle detection, transitive
// counting, and topological sort.
type Graph struct {
	// forward[t] = tasks t depends on (outgoing blocks edges)
	forward map[string][]string
	// reverse[t] = tasks that depend on t (incoming blocks edges, i.e. what
	// t unblocks on completion)
	reverse map[string][]string
	nodes   map[string]bool
}

func NewGraph(edges []Edge, taskIDs []string) *Graph {
	g := &Graph{
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
		nodes:   make(map[string]bool, len(taskIDs)),
	}
	for _, id := range taskIDs {
		g.nodes[id] = true
	}
	for _, e := range edges {
		g.forward[e.TaskID] = append(g.forward[e.TaskID], e.DependsOn)
		g.reverse[e.DependsOn] = append(g.reverse[e.DependsOn], e.TaskID)
		g.nodes[e.TaskID] = true
		g.nodes[e.DependsOn] = true
	}
	return g
}

// AddEdge mutates the graph in place to add a new blocks-edge, so a
// caller that already validated and persisted the edge can keep acting on
// the same in-memory graph without reloading it.
func (g *Graph) AddEdge(from, to string) {
	g.forward[from] = append(g.forward[from], to)
	g.reverse[to] = append(g.reverse[to], from)
	g.nodes[from] = true
	g.nodes[to] = true
}

// WouldCreateCycle reports whether adding the edge from -> to (from
// depends on to) would create a cycle in the blocks subgraph: true iff a
// path already exists from `to` back to `from`.
func (g *Graph) WouldCreateCycle(from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{}
	var dfs func(string) bool
	dfs = func(node string) bool {
		if node == from {
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		for _, next := range g.forward[node] {
			if dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(to)
}

// ValidateNewDependency enforces D1 (distinct endpoints, uniqueness is a
// DB-level check handled by the repository) and D2 (acyclic blocks
// subgraph) for a proposed edge.
func ValidateNewDependency(g *Graph, taskID, dependsOn string, depType types.DependencyType) error {
	if taskID == dependsOn {
		return types.NewConflictError(types.CodeSelfDependency, "a task cannot depend on itself", map[string]any{"task_id": taskID})
	}
	if depType == types.DepBlocks && g.WouldCreateCycle(taskID, dependsOn) {
		return types.NewConflictError(types.CodeCycle, "adding this dependency would create a cycle", map[string]any{
			"task_id": taskID, "depends_on": dependsOn,
		})
	}
	return nil
}

// TransitiveBlockCount returns the number of distinct tasks reachable by
// walking forward blocks-edges from taskID (the glossary's "transitive
// block count" — how many tasks this one is, directly or indirectly,
// waiting on).
func (g *Graph) TransitiveBlockCount(taskID string) int {
	visited := map[string]bool{}
	var dfs func(string)
	dfs = func(node string) {
		for _, next := range g.forward[node] {
			if !visited[next] {
				visited[next] = true
				dfs(next)
			}
		}
	}
	dfs(taskID)
	return len(visited)
}

// CriticalPathLength returns the length (edge count) of the longest
// blocks-chain starting at taskID, computed via memoized DFS. The graph
// must be acyclic (guaranteed by ValidateNewDependency at write time) or
// this recurses without termination.
func (g *Graph) CriticalPathLength(taskID string) int {
	memo := map[string]int{}
	var longest func(string) int
	longest = func(node string) int {
		if v, ok := memo[node]; ok {
			return v
		}
		best := 0
		for _, next := range g.forward[node] {
			if l := longest(next) + 1; l > best {
				best = l
			}
		}
		memo[node] = best
		return best
	}
	return longest(taskID)
}

// DirectBlockCount is the out-degree of taskID in the blocks subgraph.
func (g *Graph) DirectBlockCount(taskID string) int {
	return len(g.forward[taskID])
}

// BlockingPredecessors returns the tasks that taskID directly depends on
// (its blockers).
func (g *Graph) BlockingPredecessors(taskID string) []string {
	return g.forward[taskID]
}

// Unblocks returns the tasks that directly depend on taskID — what
// completing taskID would unblock, all else equal.
func (g *Graph) Unblocks(taskID string) []string {
	return g.reverse[taskID]
}

// TopologicalOrder returns nodes in dependency order (a task appears after
// everything it depends on) via Kahn's algorithm. Ties are broken by ID
// ascending so recompute passes are deterministic. Returns an error if a
// cycle is present — which should never happen given D2 is enforced at
// write time, but the recompute pass checks anyway rather than looping
// forever on corrupted state.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for n := range g.nodes {
		indegree[n] = len(g.forward[n])
	}

	var queue []string
	for n, d := range indegree {
		if d == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		var newly []string
		for _, dep := range g.reverse[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				newly = append(newly, dep)
			}
		}
		sort.Strings(newly)
		queue = append(queue, newly...)
		sort.Strings(queue)
	}

	if len(order) != len(g.nodes) {
		return nil, types.NewConflictError(types.CodeCycle, "blocks subgraph contains a cycle", nil)
	}
	return order, nil
}
