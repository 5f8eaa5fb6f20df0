// internal/metadata/cache.go
// Package metadata memoizes per-experiment descriptive metadata for
// on-demand lookups, decoupled from the main comparison fetch path.
package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/logging"
)

// placeholder stands in for a descriptive field whose sub-fetch failed.
const placeholder = "unavailable"

// API is the slice of the evaluation-management API the cache consumes.
type API interface {
	GetExperiment(ctx context.Context, id evalapi.ExperimentID) (evalapi.Experiment, error)
	GetDatasetVersion(ctx context.Context, id int64) (evalapi.DatasetVersion, error)
	GetEvaluatorVersion(ctx context.Context, id int64) (evalapi.EvaluatorVersion, error)
	GetEvaluator(ctx context.Context, id int64) (evalapi.Evaluator, error)
	GetModelSet(ctx context.Context, id int64) (evalapi.ModelSet, error)
	GetPrompt(ctx context.Context, id int64) (evalapi.Prompt, error)
}

// EvaluatorInfo names one evaluator version attached to an experiment.
type EvaluatorInfo struct {
	Name    string
	Version int
}

// ExperimentMetadata aggregates the descriptive facts shown on demand for
// one experiment.
type ExperimentMetadata struct {
	Name       string
	Dataset    string
	Target     string
	Evaluators []EvaluatorInfo
}

// entryState distinguishes an in-flight lookup from a settled one. Absence
// from the map means the lookup was never attempted, which is distinct
// from a cached failure.
type entryState int

const (
	stateLoading entryState = iota
	stateFound
	stateNotFound
)

type entry struct {
	state entryState
	value *ExperimentMetadata
	done  chan struct{}
}

// Cache is a memoizing, single-flight metadata cache. Values never expire;
// metadata is treated as immutable for the lifetime of the session.
// Clearing the cache is the only way to force a retry after a failure.
type Cache struct {
	mu      sync.Mutex
	api     API
	entries map[evalapi.ExperimentID]*entry
}

// NewCache creates an empty cache backed by the given API client.
func NewCache(api API) *Cache {
	return &Cache{api: api, entries: make(map[evalapi.ExperimentID]*entry)}
}

// Get returns the metadata for an experiment, fetching it on first use.
// Concurrent requests for the same id share one upstream fetch. A false
// result means the primary experiment record could not be fetched; that
// failure is cached so repeated requests do not retry indefinitely.
func (c *Cache) Get(ctx context.Context, id evalapi.ExperimentID) (*ExperimentMetadata, bool) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		if e.state != stateLoading {
			c.mu.Unlock()
			return e.value, e.state == stateFound
		}
		done := e.done
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, false
		}
		c.mu.Lock()
		e = c.entries[id]
		c.mu.Unlock()
		if e == nil {
			return nil, false
		}
		return e.value, e.state == stateFound
	}

	e := &entry{state: stateLoading, done: make(chan struct{})}
	c.entries[id] = e
	c.mu.Unlock()

	value, ok := c.lookup(ctx, id)

	c.mu.Lock()
	if ok {
		e.state = stateFound
		e.value = value
	} else {
		e.state = stateNotFound
		e.value = nil
	}
	close(e.done)
	c.mu.Unlock()
	return e.value, ok
}

// Peek returns the cached value without triggering a fetch. The second
// result is false while the id is absent or still loading.
func (c *Cache) Peek(id evalapi.ExperimentID) (*ExperimentMetadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.state == stateLoading {
		return nil, false
	}
	return e.value, true
}

// Clear drops every cached entry, including cached failures.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[evalapi.ExperimentID]*entry)
}

// Len returns the number of settled or in-flight entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// lookup performs the upstream fetches. The primary experiment record is
// required; each of the three descriptive sub-fetches degrades to a
// placeholder on failure instead of failing the lookup.
func (c *Cache) lookup(ctx context.Context, id evalapi.ExperimentID) (*ExperimentMetadata, bool) {
	exp, err := c.api.GetExperiment(ctx, id)
	if err != nil {
		logging.LogEvent("metadata lookup failed for experiment %d: %v", id, err)
		return nil, false
	}

	meta := &ExperimentMetadata{
		Name:    exp.Name,
		Dataset: placeholder,
		Target:  placeholder,
	}

	if exp.DatasetVersionID != 0 {
		if dv, err := c.api.GetDatasetVersion(ctx, exp.DatasetVersionID); err == nil {
			meta.Dataset = fmt.Sprintf("%s v%d", dv.Name, dv.Version)
		} else {
			logging.LogEvent("dataset lookup failed for experiment %d: %v", id, err)
		}
	}

	meta.Target = c.lookupTarget(ctx, exp)
	meta.Evaluators = c.lookupEvaluators(ctx, exp)
	return meta, true
}

// lookupTarget resolves the evaluation target description: a model set
// when one is referenced, otherwise a prompt.
func (c *Cache) lookupTarget(ctx context.Context, exp evalapi.Experiment) string {
	switch {
	case exp.ModelSetID != 0:
		ms, err := c.api.GetModelSet(ctx, exp.ModelSetID)
		if err != nil {
			logging.LogEvent("model set lookup failed for experiment %d: %v", exp.ID, err)
			return placeholder
		}
		if ms.Model != "" {
			return fmt.Sprintf("%s (%s)", ms.Name, ms.Model)
		}
		return ms.Name
	case exp.PromptID != 0:
		p, err := c.api.GetPrompt(ctx, exp.PromptID)
		if err != nil {
			logging.LogEvent("prompt lookup failed for experiment %d: %v", exp.ID, err)
			return placeholder
		}
		return p.Name
	}
	return placeholder
}

// lookupEvaluators resolves the evaluator name/version pairs. A failed
// version or evaluator fetch yields a placeholder entry for that slot.
func (c *Cache) lookupEvaluators(ctx context.Context, exp evalapi.Experiment) []EvaluatorInfo {
	infos := make([]EvaluatorInfo, 0, len(exp.EvaluatorVersionIDs))
	for _, versionID := range exp.EvaluatorVersionIDs {
		ev, err := c.api.GetEvaluatorVersion(ctx, versionID)
		if err != nil {
			logging.LogEvent("evaluator version lookup failed for experiment %d: %v", exp.ID, err)
			infos = append(infos, EvaluatorInfo{Name: placeholder})
			continue
		}
		e, err := c.api.GetEvaluator(ctx, ev.EvaluatorID)
		if err != nil {
			logging.LogEvent("evaluator lookup failed for experiment %d: %v", exp.ID, err)
			infos = append(infos, EvaluatorInfo{Name: placeholder, Version: ev.Version})
			continue
		}
		infos = append(infos, EvaluatorInfo{Name: e.Name, Version: ev.Version})
	}
	return infos
}
