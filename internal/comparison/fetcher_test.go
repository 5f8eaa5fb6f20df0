package comparison

import (
	"context"
	"errors"
	"testing"

	"github.com/evaldeck/evaldeck/internal/evalapi"
)

// fakeAPI implements API with scripted responses.
type fakeAPI struct {
	validation    evalapi.ValidationResult
	validationErr error
	rows          []evalapi.ComparisonRow
	rowsErr       error
	metrics       evalapi.ComparisonMetrics
	metricsErr    error

	validateCalls int
	detailCalls   int
	metricCalls   int
}

func (f *fakeAPI) ValidateComparison(_ context.Context, ids []evalapi.ExperimentID) (evalapi.ValidationResult, error) {
	f.validateCalls++
	return f.validation, f.validationErr
}

func (f *fakeAPI) GetComparisonDetails(_ context.Context, ids []evalapi.ExperimentID) ([]evalapi.ComparisonRow, error) {
	f.detailCalls++
	return f.rows, f.rowsErr
}

func (f *fakeAPI) GetComparisonMetrics(_ context.Context, ids []evalapi.ExperimentID) (evalapi.ComparisonMetrics, error) {
	f.metricCalls++
	return f.metrics, f.metricsErr
}

func TestValidateRejectsShortSets(t *testing.T) {
	api := &fakeAPI{}
	f := NewFetcher(api)

	err := f.Validate(context.Background(), []evalapi.ExperimentID{7})
	if !errors.Is(err, ErrTooFewCandidates) {
		t.Fatalf("expected ErrTooFewCandidates, got %v", err)
	}
	if api.validateCalls != 0 {
		t.Fatal("short sets must be rejected before any network call")
	}
}

func TestValidateSurfacesReasonVerbatim(t *testing.T) {
	api := &fakeAPI{validation: evalapi.ValidationResult{Valid: false, Message: "dataset versions differ"}}
	f := NewFetcher(api)

	err := f.Validate(context.Background(), []evalapi.ExperimentID{7, 8})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != "dataset versions differ" {
		t.Fatalf("reason = %q", verr.Reason)
	}
}

func TestValidateWrapsTransportError(t *testing.T) {
	api := &fakeAPI{validationErr: errors.New("connection refused")}
	f := NewFetcher(api)

	err := f.Validate(context.Background(), []evalapi.ExperimentID{7, 8})
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatal("transport failures are not validation verdicts")
	}
}

func TestHydrateJoinsBothFetches(t *testing.T) {
	api := &fakeAPI{
		validation: evalapi.ValidationResult{Valid: true},
		rows:       []evalapi.ComparisonRow{{DatasetItemID: 1}},
	}
	f := NewFetcher(api)
	set := Set{Baseline: 7, Candidates: []evalapi.ExperimentID{8}}

	hydration, err := f.Hydrate(context.Background(), set)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if api.detailCalls != 1 || api.metricCalls != 1 {
		t.Fatalf("both fetches must be issued: details=%d metrics=%d", api.detailCalls, api.metricCalls)
	}
	if len(hydration.Rows) != 1 {
		t.Fatalf("rows = %v", hydration.Rows)
	}
	if hydration.RequestID == "" {
		t.Fatal("expected a request id")
	}
}

func TestHydrateFailsWholesale(t *testing.T) {
	api := &fakeAPI{metricsErr: errors.New("metrics endpoint down")}
	f := NewFetcher(api)
	set := Set{Baseline: 7, Candidates: []evalapi.ExperimentID{8}}

	hydration, err := f.Hydrate(context.Background(), set)
	if err == nil {
		t.Fatal("expected hydration to fail")
	}
	if hydration != nil {
		t.Fatal("partial hydration is not a valid result")
	}
}

func TestHydrationGenerationsIncrease(t *testing.T) {
	api := &fakeAPI{}
	f := NewFetcher(api)
	set := Set{Baseline: 7, Candidates: []evalapi.ExperimentID{8}}

	first, err := f.Hydrate(context.Background(), set)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	second, err := f.Hydrate(context.Background(), set)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if second.Generation <= first.Generation {
		t.Fatalf("generations must increase: %d then %d", first.Generation, second.Generation)
	}
}
