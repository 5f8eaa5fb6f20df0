// internal/dashboard/dashboard.go
// Package dashboard holds the view state behind the comparison dashboard:
// the committed set's hydrated data, per-series aggregation choices, and
// the restore-on-load orchestration.
package dashboard

import (
	"context"
	"sync"

	"github.com/evaldeck/evaldeck/internal/comparison"
	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/logging"
)

// Lister fetches the live experiment list.
type Lister interface {
	ListExperiments(ctx context.Context) ([]evalapi.Experiment, error)
}

// SessionSource is the persisted-session side the dashboard restores from.
type SessionSource interface {
	TakeRestore() (evalapi.ExperimentID, []evalapi.ExperimentID, bool)
	Clear() error
}

// Dashboard mirrors the hydrated comparison plus the transient per-series
// aggregation selections. Aggregation choices are never persisted.
type Dashboard struct {
	mu       sync.Mutex
	lister   Lister
	hydrator comparison.Hydrator
	selector *comparison.Selector
	store    SessionSource

	current      *comparison.Hydration
	scoreModes   map[int64]comparison.ScoreAggregation
	runtimeModes map[string]comparison.RuntimeAggregation
}

// New creates a dashboard over the given collaborators.
func New(lister Lister, hydrator comparison.Hydrator, selector *comparison.Selector, store SessionSource) *Dashboard {
	return &Dashboard{
		lister:       lister,
		hydrator:     hydrator,
		selector:     selector,
		store:        store,
		scoreModes:   make(map[int64]comparison.ScoreAggregation),
		runtimeModes: make(map[string]comparison.RuntimeAggregation),
	}
}

// Selector exposes the selection state machine driving this dashboard.
func (d *Dashboard) Selector() *comparison.Selector {
	return d.selector
}

// Lister exposes the experiment list source.
func (d *Dashboard) Lister() Lister {
	return d.lister
}

// Apply installs a hydration as the displayed state. A hydration older
// than the currently displayed one is dropped: a superseded fetch is not
// cancelled, only de-prioritized against a newer successful one.
func (d *Dashboard) Apply(h *comparison.Hydration) bool {
	if h == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil && h.Generation < d.current.Generation {
		logging.LogEvent("dropping stale hydration %s (generation %d < %d)",
			h.RequestID, h.Generation, d.current.Generation)
		return false
	}
	d.current = h
	return true
}

// Current returns the displayed hydration, or nil when the dashboard is
// unconfigured.
func (d *Dashboard) Current() *comparison.Hydration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Reset clears the displayed comparison.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
}

// ScoreMode returns the aggregation mode for an evaluator series,
// defaulting to the average.
func (d *Dashboard) ScoreMode(versionID int64) comparison.ScoreAggregation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scoreModes[versionID]
}

// SetScoreMode selects the aggregation mode for an evaluator series.
func (d *Dashboard) SetScoreMode(versionID int64, mode comparison.ScoreAggregation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scoreModes[versionID] = mode
}

// RuntimeMode returns the aggregation mode for a runtime metric,
// defaulting to the total.
func (d *Dashboard) RuntimeMode(metric string) comparison.RuntimeAggregation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runtimeModes[metric]
}

// SetRuntimeMode selects the aggregation mode for a runtime metric.
func (d *Dashboard) SetRuntimeMode(metric string, mode comparison.RuntimeAggregation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.runtimeModes[metric] = mode
}

// ScoreValue reads one experiment's aggregated score for an evaluator
// series under the currently selected mode.
func (d *Dashboard) ScoreValue(versionID int64, id evalapi.ExperimentID) float64 {
	d.mu.Lock()
	current := d.current
	mode := d.scoreModes[versionID]
	d.mu.Unlock()
	if current == nil {
		return 0
	}
	series, ok := current.Metrics.EvaluatorScores.Series[versionID]
	if !ok {
		return 0
	}
	return comparison.AggregateScore(series[id], mode)
}

// RuntimeValue reads one experiment's aggregated runtime metric under the
// currently selected mode.
func (d *Dashboard) RuntimeValue(metric string, id evalapi.ExperimentID) float64 {
	d.mu.Lock()
	current := d.current
	mode := d.runtimeModes[metric]
	d.mu.Unlock()
	if current == nil {
		return 0
	}
	series := runtimeSeries(current.Metrics.RuntimeMetrics, metric)
	if series == nil {
		return 0
	}
	return comparison.AggregateRuntime(series[id], mode)
}

// runtimeSeries maps a metric name to its series.
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

// Restore replays the persisted comparison through the fetch path. It runs
// at most once per process. A persisted set whose members no longer
// resolve against the live experiment list, or with fewer than two
// resolvable members, is discarded silently: the dashboard stays empty
// rather than half-populated.
func (d *Dashboard) Restore(ctx context.Context) bool {
	baseline, candidates, ok := d.store.TakeRestore()
	if !ok {
		return false
	}

	set := comparison.Set{Baseline: baseline, Candidates: candidates}
	live, err := d.lister.ListExperiments(ctx)
	if err != nil {
		logging.LogEvent("restore skipped, experiment list unavailable: %v", err)
		return false
	}

	known := make(map[evalapi.ExperimentID]struct{}, len(live))
	for _, exp := range live {
		known[exp.ID] = struct{}{}
	}
	resolvable := 0
	missing := false
	for _, id := range set.IDs() {
		if _, ok := known[id]; ok {
			resolvable++
		} else {
			missing = true
		}
	}
	if missing || resolvable < 2 {
		logging.LogEvent("discarding persisted comparison: stale experiment ids")
		if err := d.store.Clear(); err != nil {
			logging.LogEvent("could not clear comparison session: %v", err)
		}
		return false
	}

	hydration, err := d.hydrator.Hydrate(ctx, set)
	if err != nil {
		logging.LogEvent("restore hydration failed: %v", err)
		return false
	}
	if err := d.selector.AdoptCommitted(set); err != nil {
		return false
	}
	return d.Apply(hydration)
}
