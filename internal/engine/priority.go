package engine

import (
	"time"

	"github.com/kanbanforge/kanband/internal/types"
)

// ScoringInput is everything the scorer needs for one task, gathered by
// the caller from the repository layer and the blocks Graph.
type ScoringInput struct {
	TaskID        string
	CreatedAt     time.Time
	Priority      types.Priority
	DueDate       *time.Time
	ContextBoost  float64 // tag-match or other context bonus, default 0
	DirectBlocks  int
	TransitiveBlocks int
	CriticalPathLength int
}

// FactorBreakdown is the per-factor contribution used both to compute the
// final score and to build GetNextTask's human-readable reasoning vector.
type FactorBreakdown struct {
	Name        string
	RawValue    float64 // factor value in [0,1] before weighting
	Weight      float64
	Contribution float64 // RawValue * Weight, already normalized by sum(weight) at the Score call site
}

// AgeFactor normalizes age-since-created against the stale threshold,
// saturating at 1.0.
func AgeFactor(createdAt, now time.Time, staleThresholdDays int) float64 {
	if staleThresholdDays <= 0 {
		staleThresholdDays = 7
	}
	age := daysSince(createdAt, now)
	return clampUnit(age / float64(staleThresholdDays))
}

// DeadlineFactor is piecewise linear: overdue -> 1.0, due within 1 day ->
// 0.9, within 7 days -> linearly decreasing to 0.3 at +7d, else 0.
func DeadlineFactor(due *time.Time, now time.Time) float64 {
	if due == nil {
		return 0
	}
	remaining := due.Sub(now).Hours() / 24
	switch {
	case remaining < 0:
		return 1.0
	case remaining <= 1:
		return 0.9
	case remaining <= 7:
		// linear from 0.9 at day 1 down to 0.3 at day 7
		frac := (remaining - 1) / 6
		return 0.9 - frac*0.6
	default:
		return 0
	}
}

// DependencyFactorRaw combines direct/transitive/critical-path counts per
// the configured sub-weights, returning an un-normalized value the caller
// must divide by the per-board maximum to land in [0,1].
func DependencyFactorRaw(directBlocks, transitiveBlocks, criticalPathLength int, w DependencySubWeights) float64 {
	return float64(directBlocks)*w.Direct + float64(transitiveBlocks)*w.Transitive + float64(criticalPathLength)*w.CriticalPath
}

// NormalizeDependencyFactors divides every raw dependency factor by the
// board-wide maximum, producing values in [0,1]. A zero maximum (no
// dependency edges at all on the board) maps everything to 0.
func NormalizeDependencyFactors(raw map[string]float64) map[string]float64 {
	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	out := make(map[string]float64, len(raw))
	if max == 0 {
		for k := range raw {
			out[k] = 0
		}
		return out
	}
	for k, v := range raw {
		out[k] = v / max
	}
	return out
}

// Score computes the final priority_score in [0,100] and the sorted
// (descending contribution) factor breakdown for a single task, given its
// already-normalized dependency factor.
func Score(in ScoringInput, normalizedDependencyFactor float64, now time.Time, cfg Config) (float64, []FactorBreakdown) {
	w := cfg.Weights
	totalWeight := w.sum()
	if totalWeight == 0 {
		totalWeight = 1
	}

	factors := []FactorBreakdown{
		{Name: "age", RawValue: AgeFactor(in.CreatedAt, now, cfg.StaleThresholdDays), Weight: w.Age},
		{Name: "dependency", RawValue: clampUnit(normalizedDependencyFactor), Weight: w.Dependency},
		{Name: "deadline", RawValue: DeadlineFactor(in.DueDate, now), Weight: w.Deadline},
		{Name: "manual", RawValue: in.Priority.Weight(), Weight: w.Manual},
		{Name: "context", RawValue: clampUnit(in.ContextBoost), Weight: w.Context},
	}

	sum := 0.0
	for i := range factors {
		factors[i].Contribution = factors[i].RawValue * factors[i].Weight / totalWeight
		sum += factors[i].Contribution
	}
	score := 100 * sum

	// Sort descending by contribution (stable, small N) for the reasoning
	// vector callers build on top of this.
	for i := 1; i < len(factors); i++ {
		for j := i; j > 0 && factors[j-1].Contribution < factors[j].Contribution; j-- {
			factors[j-1], factors[j] = factors[j], factors[j-1]
		}
	}
	return score, factors
}
