// internal/report/report.go
// Package report renders a committed, hydrated comparison to JSON,
// Markdown, and YAML files.
package report

import (
	"fmt"
	"time"

	"github.com/evaldeck/evaldeck/internal/comparison"
	"github.com/evaldeck/evaldeck/internal/evalapi"
)

// runtimeMetricNames lists the runtime series in display order.
var runtimeMetricNames = []string{"latency", "inputTokens", "outputTokens", "totalTokens"}

// Aggregation supplies the per-series aggregation modes chosen in the
// dashboard.
type Aggregation interface {
	ScoreMode(versionID int64) comparison.ScoreAggregation
	RuntimeMode(metric string) comparison.RuntimeAggregation
}

// ExperimentSummary is one experiment's aggregated line in the report.
type ExperimentSummary struct {
	ExperimentID evalapi.ExperimentID `json:"experimentId" yaml:"experimentId"`
	Role         string               `json:"role" yaml:"role"`
	Scores       map[string]float64   `json:"scores" yaml:"scores"`
	Runtime      map[string]float64   `json:"runtime" yaml:"runtime"`
}

// Report is the exportable form of a comparison.
type Report struct {
	GeneratedAtUTC time.Time            `json:"generatedAtUTC" yaml:"generatedAtUTC"`
	Baseline       evalapi.ExperimentID `json:"baseline" yaml:"baseline"`
	RowCount       int                  `json:"rowCount" yaml:"rowCount"`
	Experiments    []ExperimentSummary  `json:"experiments" yaml:"experiments"`
}

// Build assembles a report from a hydration, collapsing every metric
// series under the caller's selected aggregation modes.
func Build(h *comparison.Hydration, agg Aggregation) Report {
	rep := Report{
		GeneratedAtUTC: time.Now().UTC(),
		Baseline:       h.Set.Baseline,
		RowCount:       len(h.Rows),
	}

	scores := h.Metrics.EvaluatorScores
	runtime := h.Metrics.RuntimeMetrics

	for _, id := range h.Set.IDs() {
		summary := ExperimentSummary{
			ExperimentID: id,
			Role:         comparison.RoleOf(h.Set, id).String(),
			Scores:       make(map[string]float64),
			Runtime:      make(map[string]float64),
		}
		for _, ref := range scores.CommonEvaluators {
			series, ok := scores.Series[ref.VersionID]
			if !ok {
				continue
			}
			mode := agg.ScoreMode(ref.VersionID)
			label := fmt.Sprintf("%s v%d (%s)", ref.Name, ref.Version, mode)
			summary.Scores[label] = comparison.AggregateScore(series[id], mode)
		}
		for _, metric := range runtimeMetricNames {
			series := runtimeSeries(runtime, metric)
			if series == nil {
				continue
			}
			mode := agg.RuntimeMode(metric)
			label := fmt.Sprintf("%s (%s)", metric, mode)
			summary.Runtime[label] = comparison.AggregateRuntime(series[id], mode)
		}
		rep.Experiments = append(rep.Experiments, summary)
	}
	return rep
}

func runtimeSeries(m evalapi.RuntimeMetrics, metric string) map[evalapi.ExperimentID]evalapi.RuntimeBundle {
	switch metric {
	case "latency":
		return m.Latency
	case "inputTokens":
		return m.InputTokens
	case "outputTokens":
		return m.OutputTokens
	case "totalTokens":
		return m.TotalTokens
	}
	return nil
}
