package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evaldeck/evaldeck/internal/evalapi"
)

// fakeAPI serves canned records and counts experiment fetches.
type fakeAPI struct {
	experimentCalls atomic.Int64
	release         chan struct{} // when set, GetExperiment blocks until closed

	experiment    evalapi.Experiment
	experimentErr error

	datasetErr   error
	evaluatorErr error
	targetErr    error
}

func (f *fakeAPI) GetExperiment(ctx context.Context, id evalapi.ExperimentID) (evalapi.Experiment, error) {
	f.experimentCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.experimentErr != nil {
		return evalapi.Experiment{}, f.experimentErr
	}
	exp := f.experiment
	exp.ID = id
	return exp, nil
}

func (f *fakeAPI) GetDatasetVersion(ctx context.Context, id int64) (evalapi.DatasetVersion, error) {
	if f.datasetErr != nil {
		return evalapi.DatasetVersion{}, f.datasetErr
	}
	return evalapi.DatasetVersion{ID: id, Name: "qa-pairs", Version: 3}, nil
}

func (f *fakeAPI) GetEvaluatorVersion(ctx context.Context, id int64) (evalapi.EvaluatorVersion, error) {
	if f.evaluatorErr != nil {
		return evalapi.EvaluatorVersion{}, f.evaluatorErr
	}
	return evalapi.EvaluatorVersion{ID: id, EvaluatorID: 100 + id, Version: 2}, nil
}

func (f *fakeAPI) GetEvaluator(ctx context.Context, id int64) (evalapi.Evaluator, error) {
	if f.evaluatorErr != nil {
		return evalapi.Evaluator{}, f.evaluatorErr
	}
	return evalapi.Evaluator{ID: id, Name: "relevance"}, nil
}

func (f *fakeAPI) GetModelSet(ctx context.Context, id int64) (evalapi.ModelSet, error) {
	if f.targetErr != nil {
		return evalapi.ModelSet{}, f.targetErr
	}
	return evalapi.ModelSet{ID: id, Name: "prod-models", Model: "gpt-x"}, nil
}

func (f *fakeAPI) GetPrompt(ctx context.Context, id int64) (evalapi.Prompt, error) {
	if f.targetErr != nil {
		return evalapi.Prompt{}, f.targetErr
	}
	return evalapi.Prompt{ID: id, Name: "summarize-v2"}, nil
}

func fullExperiment() evalapi.Experiment {
	return evalapi.Experiment{
		Name:                "run-42",
		DatasetVersionID:    11,
		ModelSetID:          21,
		EvaluatorVersionIDs: []int64{31, 32},
	}
}

func TestGetComposesMetadata(t *testing.T) {
	api := &fakeAPI{experiment: fullExperiment()}
	cache := NewCache(api)

	meta, ok := cache.Get(context.Background(), 42)
	if !ok {
		t.Fatal("expected a successful lookup")
	}
	if meta.Dataset != "qa-pairs v3" {
		t.Fatalf("dataset = %q", meta.Dataset)
	}
	if meta.Target != "prod-models (gpt-x)" {
		t.Fatalf("target = %q", meta.Target)
	}
	if len(meta.Evaluators) != 2 || meta.Evaluators[0].Name != "relevance" || meta.Evaluators[0].Version != 2 {
		t.Fatalf("evaluators = %+v", meta.Evaluators)
	}
}

func TestGetMemoizes(t *testing.T) {
	api := &fakeAPI{experiment: fullExperiment()}
	cache := NewCache(api)

	if _, ok := cache.Get(context.Background(), 42); !ok {
		t.Fatal("first lookup failed")
	}
	if _, ok := cache.Get(context.Background(), 42); !ok {
		t.Fatal("second lookup failed")
	}
	if calls := api.experimentCalls.Load(); calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", calls)
	}
}

func TestGetSingleFlight(t *testing.T) {
	api := &fakeAPI{experiment: fullExperiment(), release: make(chan struct{})}
	cache := NewCache(api)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = cache.Get(context.Background(), 42)
		}(i)
	}

	// Let both callers enter before the upstream fetch resolves.
	for api.experimentCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(api.release)
	wg.Wait()

	if !results[0] || !results[1] {
		t.Fatalf("both callers must see the shared result: %v", results)
	}
	if calls := api.experimentCalls.Load(); calls != 1 {
		t.Fatalf("expected exactly one upstream fetch, got %d", calls)
	}
}

func TestGetCachesFailure(t *testing.T) {
	api := &fakeAPI{experimentErr: errors.New("not found")}
	cache := NewCache(api)

	if _, ok := cache.Get(context.Background(), 42); ok {
		t.Fatal("expected lookup failure")
	}
	if _, ok := cache.Get(context.Background(), 42); ok {
		t.Fatal("expected cached failure")
	}
	if calls := api.experimentCalls.Load(); calls != 1 {
		t.Fatalf("cached failures must not retry, got %d calls", calls)
	}

	// A cached failure is distinct from an absent entry.
	if _, settled := cache.Peek(42); !settled {
		t.Fatal("failure must be a settled entry")
	}
	if _, settled := cache.Peek(43); settled {
		t.Fatal("never-requested id must be absent")
	}

	// Clearing is the only way to force a retry.
	cache.Clear()
	api.experimentErr = nil
	api.experiment = fullExperiment()
	if _, ok := cache.Get(context.Background(), 42); !ok {
		t.Fatal("expected retry after Clear")
	}
}

func TestSubFetchFailuresDegradeToPlaceholder(t *testing.T) {
	api := &fakeAPI{
		experiment:   fullExperiment(),
		datasetErr:   errors.New("dataset service down"),
		targetErr:    errors.New("model service down"),
		evaluatorErr: errors.New("evaluator service down"),
	}
	cache := NewCache(api)

	meta, ok := cache.Get(context.Background(), 42)
	if !ok {
		t.Fatal("sub-fetch failures must not fail the lookup")
	}
	if meta.Dataset != placeholder {
		t.Fatalf("dataset = %q, want placeholder", meta.Dataset)
	}
	if meta.Target != placeholder {
		t.Fatalf("target = %q, want placeholder", meta.Target)
	}
	if len(meta.Evaluators) != 2 || meta.Evaluators[0].Name != placeholder {
		t.Fatalf("evaluators = %+v", meta.Evaluators)
	}
}

func TestTargetFallsBackToPrompt(t *testing.T) {
	exp := fullExperiment()
	exp.ModelSetID = 0
	exp.PromptID = 5
	api := &fakeAPI{experiment: exp}
	cache := NewCache(api)

	meta, ok := cache.Get(context.Background(), 42)
	if !ok {
		t.Fatal("lookup failed")
	}
	if meta.Target != "summarize-v2" {
		t.Fatalf("target = %q", meta.Target)
	}
}
