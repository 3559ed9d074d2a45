package engine

import (
	"sort"

	"github.com/kanbanforge/kanband/internal/types"
)

// SelectionFilter narrows the active candidate set for GetNextTask.
type SelectionFilter struct {
	BoardID        string
	Assignee       string
	SkillTags      []string
	TimeAvailableMinutes *int
	ExcludeBlocked bool // default true, set explicitly by the caller
}

// Candidate is a task plus the data selection needs beyond what's on
// types.Task: its tag set (for the skill-tags bonus) and blocked state
// (from the engine's cached is_blocked, already up to date after the
// latest recompute pass).
type Candidate struct {
	Task    *types.Task
	Tags    map[string]bool
	Blocked bool
}

// Reasoning is the human-readable explanation returned alongside the
// selected task: its top three contributing score factors and the tasks
// it unblocks.
type Reasoning struct {
	TopFactors []FactorBreakdown
	Unblocks   []string
}

// SelectNext implements GetNextTask: rank by priority_score desc, tie-break
// by earliest due date (nulls last), then updated_at asc, then ID asc for
// full determinism. If TimeAvailableMinutes is set, prefer the
// highest-ranked candidate whose estimated_hours*60 fits, falling back to
// the top rank if none fit. Skill-tag overlap applies a non-zero
// multiplicative bonus without ever excluding a candidate.
func SelectNext(candidates []Candidate, f SelectionFilter, unblocksOf func(taskID string) []string) (*Candidate, *Reasoning) {
	active := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Task.Status.IsTerminal() {
			continue
		}
		if f.ExcludeBlocked && c.Blocked {
			continue
		}
		if f.Assignee != "" && c.Task.Assignee != f.Assignee {
			continue
		}
		active = append(active, c)
	}
	if len(active) == 0 {
		return nil, nil
	}

	effectiveScore := func(c Candidate) float64 {
		score := c.Task.PriorityScore
		if len(f.SkillTags) > 0 && tagOverlap(c.Tags, f.SkillTags) {
			score *= 1.15 // non-zero multiplicative bonus, never exclusionary
		}
		return score
	}

	sort.SliceStable(active, func(i, j int) bool {
		si, sj := effectiveScore(active[i]), effectiveScore(active[j])
		if si != sj {
			return si > sj
		}
		di, dj := active[i].Task.DueDate, active[j].Task.DueDate
		if (di == nil) != (dj == nil) {
			return di != nil // non-nil due date sorts first
		}
		if di != nil && dj != nil && !di.Equal(*dj) {
			return di.Before(*dj)
		}
		if !active[i].Task.UpdatedAt.Equal(active[j].Task.UpdatedAt) {
			return active[i].Task.UpdatedAt.Before(active[j].Task.UpdatedAt)
		}
		return active[i].Task.ID < active[j].Task.ID
	})

	chosen := &active[0]
	if f.TimeAvailableMinutes != nil {
		for i := range active {
			if active[i].Task.EstimatedHours*60 <= float64(*f.TimeAvailableMinutes) {
				chosen = &active[i]
				break
			}
		}
	}

	reasoning := &Reasoning{Unblocks: unblocksOf(chosen.Task.ID)}
	return chosen, reasoning
}

func tagOverlap(have map[string]bool, want []string) bool {
	for _, t := range want {
		if have[t] {
			return true
		}
	}
	return false
}

// TopThreeFactors returns the highest-contribution factors (already sorted
// descending by Score) truncated to at most three, for GetNextTask's
// reasoning vector.
func TopThreeFactors(factors []FactorBreakdown) []FactorBreakdown {
	if len(factors) <= 3 {
		return factors
	}
	return factors[:3]
}
