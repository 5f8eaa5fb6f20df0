package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/evaldeck/evaldeck/internal/comparison"
	"github.com/evaldeck/evaldeck/internal/evalapi"
)

type fakeLister struct {
	experiments []evalapi.Experiment
	err         error
	calls       int
}

func (f *fakeLister) ListExperiments(_ context.Context) ([]evalapi.Experiment, error) {
	f.calls++
	return f.experiments, f.err
}

type fakeHydrator struct {
	err          error
	hydrateCalls int
	gen          uint64
}

func (f *fakeHydrator) Validate(_ context.Context, ids []evalapi.ExperimentID) error {
	return nil
}

func (f *fakeHydrator) Hydrate(_ context.Context, set comparison.Set) (*comparison.Hydration, error) {
	f.hydrateCalls++
	if f.err != nil {
		return nil, f.err
	}
	f.gen++
	return &comparison.Hydration{RequestID: "restore", Generation: f.gen, Set: set}, nil
}

type fakeSession struct {
	baseline   evalapi.ExperimentID
	candidates []evalapi.ExperimentID
	present    bool
	taken      bool
	cleared    bool
}

func (f *fakeSession) TakeRestore() (evalapi.ExperimentID, []evalapi.ExperimentID, bool) {
	if f.taken || !f.present {
		return 0, nil, false
	}
	f.taken = true
	return f.baseline, f.candidates, true
}

func (f *fakeSession) Clear() error {
	f.cleared = true
	return nil
}

func experimentsByID(ids ...evalapi.ExperimentID) []evalapi.Experiment {
	out := make([]evalapi.Experiment, len(ids))
	for i, id := range ids {
		out[i] = evalapi.Experiment{ID: id, Status: "completed"}
	}
	return out
}

func newDashboard(lister *fakeLister, hydrator *fakeHydrator, store *fakeSession) *Dashboard {
	selector := comparison.NewSelector(hydrator, nil)
	return New(lister, hydrator, selector, store)
}

func TestRestoreReplaysPersistedSession(t *testing.T) {
	lister := &fakeLister{experiments: experimentsByID(7, 8, 9)}
	hydrator := &fakeHydrator{}
	store := &fakeSession{baseline: 7, candidates: []evalapi.ExperimentID{8, 9}, present: true}
	d := newDashboard(lister, hydrator, store)

	if !d.Restore(context.Background()) {
		t.Fatal("expected restore to succeed")
	}
	current := d.Current()
	if current == nil {
		t.Fatal("expected hydrated state")
	}
	if current.Set.Baseline != 7 {
		t.Fatalf("baseline = %d", current.Set.Baseline)
	}
	if set, ok := d.Selector().Committed(); !ok || set.Baseline != 7 {
		t.Fatalf("selector not committed: %v %v", set, ok)
	}
}

func TestRestoreDiscardsStaleSession(t *testing.T) {
	// Experiment 9 no longer exists in the live list.
	lister := &fakeLister{experiments: experimentsByID(7, 8)}
	hydrator := &fakeHydrator{}
	store := &fakeSession{baseline: 7, candidates: []evalapi.ExperimentID{8, 9}, present: true}
	d := newDashboard(lister, hydrator, store)

	if d.Restore(context.Background()) {
		t.Fatal("restore must no-op on stale ids")
	}
	if !store.cleared {
		t.Fatal("stale session must be cleared")
	}
	if d.Current() != nil {
		t.Fatal("dashboard must stay empty, no partial restore")
	}
	if hydrator.hydrateCalls != 0 {
		t.Fatal("no hydration may be issued for a discarded session")
	}
}

func TestRestoreRunsOnce(t *testing.T) {
	lister := &fakeLister{experiments: experimentsByID(7, 8)}
	hydrator := &fakeHydrator{}
	store := &fakeSession{baseline: 7, candidates: []evalapi.ExperimentID{8}, present: true}
	d := newDashboard(lister, hydrator, store)

	if !d.Restore(context.Background()) {
		t.Fatal("first restore should succeed")
	}
	if d.Restore(context.Background()) {
		t.Fatal("second restore must no-op")
	}
	if hydrator.hydrateCalls != 1 {
		t.Fatalf("hydrations = %d, want 1", hydrator.hydrateCalls)
	}
}

func TestRestoreKeepsSessionOnFetchFailure(t *testing.T) {
	lister := &fakeLister{experiments: experimentsByID(7, 8)}
	hydrator := &fakeHydrator{err: errors.New("comparison endpoints down")}
	store := &fakeSession{baseline: 7, candidates: []evalapi.ExperimentID{8}, present: true}
	d := newDashboard(lister, hydrator, store)

	if d.Restore(context.Background()) {
		t.Fatal("restore must fail")
	}
	if store.cleared {
		t.Fatal("a transient fetch failure must not discard the session")
	}
	if d.Current() != nil {
		t.Fatal("dashboard must stay empty")
	}
}

func TestApplyDropsStaleHydration(t *testing.T) {
	d := newDashboard(&fakeLister{}, &fakeHydrator{}, &fakeSession{})
	set := comparison.Set{Baseline: 7, Candidates: []evalapi.ExperimentID{8}}

	if !d.Apply(&comparison.Hydration{Generation: 2, Set: set}) {
		t.Fatal("newer hydration must apply")
	}
	if d.Apply(&comparison.Hydration{Generation: 1, Set: set}) {
		t.Fatal("stale hydration must be dropped")
	}
	if current := d.Current(); current.Generation != 2 {
		t.Fatalf("displayed generation = %d, want 2", current.Generation)
	}
}

func TestValuesFollowSelectedModes(t *testing.T) {
	d := newDashboard(&fakeLister{}, &fakeHydrator{}, &fakeSession{})
	set := comparison.Set{Baseline: 7, Candidates: []evalapi.ExperimentID{8}}

	avg, max, count := 0.5, 0.9, 4.0
	total, peak := 1200.0, 500.0
	h := &comparison.Hydration{
		Generation: 1,
		Set:        set,
		Metrics: evalapi.ComparisonMetrics{
			EvaluatorScores: evalapi.EvaluatorScores{
				Series: map[int64]map[evalapi.ExperimentID]evalapi.ScoreBundle{
					31: {7: {Average: &avg, Max: &max, Count: &count}},
				},
			},
			RuntimeMetrics: evalapi.RuntimeMetrics{
				Latency: map[evalapi.ExperimentID]evalapi.RuntimeBundle{
					7: {Value: &total, MaxValue: &peak},
				},
			},
		},
	}
	d.Apply(h)

	if got := d.ScoreValue(31, 7); got != 0.5 {
		t.Fatalf("default score mode should be average: %v", got)
	}
	d.SetScoreMode(31, comparison.ScoreMax)
	if got := d.ScoreValue(31, 7); got != 0.9 {
		t.Fatalf("score under max mode: %v", got)
	}

	if got := d.RuntimeValue("latency", 7); got != 1200 {
		t.Fatalf("default runtime mode should be total: %v", got)
	}
	d.SetRuntimeMode("latency", comparison.RuntimeMax)
	if got := d.RuntimeValue("latency", 7); got != 500 {
		t.Fatalf("runtime under max mode: %v", got)
	}
}
