package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/evaldeck/evaldeck/internal/evalapi"
)

type scriptedLister struct {
	mu      sync.Mutex
	batches [][]evalapi.Experiment
	calls   int
}

func (s *scriptedLister) ListExperiments(_ context.Context) ([]evalapi.Experiment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.batches[0]
	if len(s.batches) > 1 {
		s.batches = s.batches[1:]
	}
	s.calls++
	return batch, nil
}

func (s *scriptedLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestPollerStopsWhenNothingActive(t *testing.T) {
	lister := &scriptedLister{batches: [][]evalapi.Experiment{
		{{ID: 1, Status: "running"}},
		{{ID: 1, Status: "completed"}},
	}}
	var updates []int
	p := NewPoller(lister, 5*time.Millisecond, func(exps []evalapi.Experiment) {
		updates = append(updates, len(exps))
	})
	p.Start(context.Background())
	p.Wait()

	if lister.callCount() != 2 {
		t.Fatalf("polls = %d, want 2", lister.callCount())
	}
	if len(updates) != 2 {
		t.Fatalf("updates delivered = %d, want 2", len(updates))
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	lister := &scriptedLister{batches: [][]evalapi.Experiment{
		{{ID: 1, Status: "running"}},
	}}
	p := NewPoller(lister, time.Hour, nil)
	p.Start(context.Background())
	p.Stop()
	p.Stop()
	p.Wait()
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	lister := &scriptedLister{batches: [][]evalapi.Experiment{
		{{ID: 1, Status: "running"}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(lister, time.Hour, nil)
	p.Start(ctx)
	cancel()
	p.Wait()
}
