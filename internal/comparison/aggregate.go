// internal/comparison/aggregate.go
// Package comparison implements the multi-experiment comparison core:
// metric aggregation, role assignment, the selection workflow, and the
// validate/hydrate fetch path.
package comparison

import (
	"github.com/evaldeck/evaldeck/internal/evalapi"
)

// ScoreAggregation selects the statistic used to collapse an evaluator
// score bundle into a single comparable number.
type ScoreAggregation int

const (
	ScoreAverage ScoreAggregation = iota
	ScoreMax
	ScoreMin
	ScoreSum
	ScoreCount
)

// String returns the display label for the aggregation mode.
func (a ScoreAggregation) String() string {
	switch a {
	case ScoreAverage:
		return "average"
	case ScoreMax:
		return "max"
	case ScoreMin:
		return "min"
	case ScoreSum:
		return "sum"
	case ScoreCount:
		return "count"
	}
	return "unknown"
}

// RuntimeAggregation selects the statistic used to collapse a runtime
// metric bundle (latency, token counts) into a single comparable number.
type RuntimeAggregation int

const (
	RuntimeTotal RuntimeAggregation = iota
	RuntimeAverage
	RuntimeMax
	RuntimeMin
)

// String returns the display label for the aggregation mode.
func (a RuntimeAggregation) String() string {
	switch a {
	case RuntimeTotal:
		return "total"
	case RuntimeAverage:
		return "average"
	case RuntimeMax:
		return "max"
	case RuntimeMin:
		return "min"
	}
	return "unknown"
}

// orZero dereferences an optional statistic, treating absence as zero.
// Partial bundles are expected when an evaluator did not run on every
// experiment.
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// AggregateScore collapses an evaluator score bundle under the given mode.
// When the backend omits the sum, it is reconstructed as average*count.
func AggregateScore(b evalapi.ScoreBundle, mode ScoreAggregation) float64 {
	switch mode {
	case ScoreAverage:
		return orZero(b.Average)
	case ScoreMax:
		return orZero(b.Max)
	case ScoreMin:
		return orZero(b.Min)
	case ScoreSum:
		if b.Sum != nil {
			return *b.Sum
		}
		return orZero(b.Average) * orZero(b.Count)
	case ScoreCount:
		return orZero(b.Count)
	}
	return 0
}

// AggregateRuntime collapses a runtime metric bundle under the given mode.
func AggregateRuntime(b evalapi.RuntimeBundle, mode RuntimeAggregation) float64 {
	switch mode {
	case RuntimeTotal:
		return orZero(b.Value)
	case RuntimeAverage:
		return orZero(b.AvgValue)
	case RuntimeMax:
		return orZero(b.MaxValue)
	case RuntimeMin:
		return orZero(b.MinValue)
	}
	return 0
}
