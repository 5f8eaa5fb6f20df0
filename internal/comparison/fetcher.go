// internal/comparison/fetcher.go
package comparison

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/logging"
	"github.com/google/uuid"
)

// API is the slice of the evaluation-management API the fetcher consumes.
type API interface {
	ValidateComparison(ctx context.Context, ids []evalapi.ExperimentID) (evalapi.ValidationResult, error)
	GetComparisonDetails(ctx context.Context, ids []evalapi.ExperimentID) ([]evalapi.ComparisonRow, error)
	GetComparisonMetrics(ctx context.Context, ids []evalapi.ExperimentID) (evalapi.ComparisonMetrics, error)
}

// Hydration is the complete data backing one committed comparison: the
// row-level detail and the aggregate metric series, fetched together.
// Generation orders hydrations so a stale response can never displace a
// newer one.
type Hydration struct {
	RequestID  string
	Generation uint64
	Set        Set
	Rows       []evalapi.ComparisonRow
	Metrics    evalapi.ComparisonMetrics
}

// Fetcher performs the validation call and the two parallel data calls
// that hydrate the dashboard.
type Fetcher struct {
	api API
	gen atomic.Uint64
}

// NewFetcher creates a fetcher backed by the given API client.
func NewFetcher(api API) *Fetcher {
	return &Fetcher{api: api}
}

// Validate runs the server-side compatibility check. A negative verdict is
// returned as a ValidationError carrying the server's reason verbatim; a
// transport failure is wrapped as a plain error.
func (f *Fetcher) Validate(ctx context.Context, ids []evalapi.ExperimentID) error {
	if len(ids) < 2 {
		return ErrTooFewCandidates
	}
	result, err := f.api.ValidateComparison(ctx, ids)
	if err != nil {
		return fmt.Errorf("comparison validation request failed: %w", err)
	}
	if !result.Valid {
		return &ValidationError{Reason: result.Message}
	}
	return nil
}

// Hydrate fetches rows and metrics for the set concurrently and joins the
// results. A failure in either call aborts the hydration as a whole;
// partial hydration is never returned.
func (f *Fetcher) Hydrate(ctx context.Context, set Set) (*Hydration, error) {
	ids := set.IDs()
	if len(ids) < 2 {
		return nil, ErrTooFewCandidates
	}

	hydration := &Hydration{
		RequestID:  uuid.NewString(),
		Generation: f.gen.Add(1),
		Set:        set,
	}
	logging.LogEvent("hydrating comparison %s (%s)", hydration.RequestID, describeSet(set))

	var (
		wg         sync.WaitGroup
		rows       []evalapi.ComparisonRow
		metrics    evalapi.ComparisonMetrics
		rowsErr    error
		metricsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		rows, rowsErr = f.api.GetComparisonDetails(ctx, ids)
	}()
	go func() {
		defer wg.Done()
		metrics, metricsErr = f.api.GetComparisonMetrics(ctx, ids)
	}()
	wg.Wait()

	if rowsErr != nil {
		return nil, fmt.Errorf("fetching comparison details: %w", rowsErr)
	}
	if metricsErr != nil {
		return nil, fmt.Errorf("fetching comparison metrics: %w", metricsErr)
	}

	hydration.Rows = rows
	hydration.Metrics = metrics
	logging.LogEvent("hydration %s complete: %d rows, %d evaluator series",
		hydration.RequestID, len(rows), len(metrics.EvaluatorScores.Series))
	return hydration, nil
}
