// internal/comparison/selection.go
package comparison

import (
	"context"
	"errors"
	"fmt"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/logging"
)

// Phase is the closed set of selection workflow states. Illegal
// combinations (a committed baseline with zero candidates) are not
// representable: committed data lives in a Set, which is only assigned
// whole after validation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePickingCandidates
	PhasePickingBaseline
	PhaseCommitted
)

// String returns the display name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePickingCandidates:
		return "picking-candidates"
	case PhasePickingBaseline:
		return "picking-baseline"
	case PhaseCommitted:
		return "committed"
	}
	return "unknown"
}

var (
	// ErrTooFewCandidates rejects advancing with fewer than two staged
	// experiments; a comparison of fewer than 2 is meaningless.
	ErrTooFewCandidates = errors.New("select at least 2 experiments to compare")
	// ErrBaselineNotStaged rejects a baseline that is not among the staged
	// candidates.
	ErrBaselineNotStaged = errors.New("baseline must be one of the selected experiments")
	// ErrNotCommitted rejects operations that require a committed comparison.
	ErrNotCommitted = errors.New("no committed comparison")
	// ErrWrongPhase rejects a transition issued from the wrong state.
	ErrWrongPhase = errors.New("operation not allowed in current selection phase")
)

// ValidationError reports that the server judged the experiments
// incompatible. Reason is the server's message, surfaced verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return "experiments cannot be compared"
	}
	return e.Reason
}

// SessionSaver persists the committed comparison. Only the success path of
// a hydration writes through it.
type SessionSaver interface {
	Save(baseline evalapi.ExperimentID, candidates []evalapi.ExperimentID) error
}

// Hydrator validates a candidate set and fetches the data that backs the
// dashboard.
type Hydrator interface {
	Validate(ctx context.Context, ids []evalapi.ExperimentID) error
	Hydrate(ctx context.Context, set Set) (*Hydration, error)
}

// Selector owns the pick-candidates / pick-baseline / confirm workflow and
// the committed comparison set.
type Selector struct {
	hydrator Hydrator
	saver    SessionSaver

	phase     Phase
	staged    []evalapi.ExperimentID
	baseline  evalapi.ExperimentID
	committed Set
}

// NewSelector creates a selector in the idle phase.
func NewSelector(hydrator Hydrator, saver SessionSaver) *Selector {
	return &Selector{hydrator: hydrator, saver: saver}
}

// Phase returns the current workflow phase.
func (s *Selector) Phase() Phase {
	return s.phase
}

// Committed returns the committed comparison set, if any.
func (s *Selector) Committed() (Set, bool) {
	if s.phase != PhaseCommitted {
		return Set{}, false
	}
	return s.committed, true
}

// Staged returns the experiments staged during picking, in pick order.
func (s *Selector) Staged() []evalapi.ExperimentID {
	out := make([]evalapi.ExperimentID, len(s.staged))
	copy(out, s.staged)
	return out
}

// StagedBaseline returns the baseline picked during the baseline phase.
func (s *Selector) StagedBaseline() evalapi.ExperimentID {
	return s.baseline
}

// OpenPicker starts the picking workflow, discarding any previously staged
// selection. A committed set, if present, is untouched until a new commit
// succeeds.
func (s *Selector) OpenPicker() {
	s.staged = nil
	s.baseline = 0
	s.phase = PhasePickingCandidates
}

// ToggleCandidate stages or unstages an experiment while picking
// candidates. Duplicates are impossible: toggling a staged id removes it.
func (s *Selector) ToggleCandidate(id evalapi.ExperimentID) error {
	if s.phase != PhasePickingCandidates {
		return ErrWrongPhase
	}
	for i, staged := range s.staged {
		if staged == id {
			s.staged = append(s.staged[:i], s.staged[i+1:]...)
			return nil
		}
	}
	s.staged = append(s.staged, id)
	return nil
}

// ProceedToBaseline advances to the baseline pick. Fewer than two staged
// experiments is rejected without a transition.
func (s *Selector) ProceedToBaseline() error {
	if s.phase != PhasePickingCandidates {
		return ErrWrongPhase
	}
	if len(s.staged) < 2 {
		return ErrTooFewCandidates
	}
	s.phase = PhasePickingBaseline
	return nil
}

// ChooseBaseline records the baseline pick. It must come from the staged
// candidates.
func (s *Selector) ChooseBaseline(id evalapi.ExperimentID) error {
	if s.phase != PhasePickingBaseline {
		return ErrWrongPhase
	}
	for _, staged := range s.staged {
		if staged == id {
			s.baseline = id
			return nil
		}
	}
	return ErrBaselineNotStaged
}

// Commit validates and hydrates the staged selection. On success the
// candidates are redefined as staged minus the baseline, the set is
// committed, and the session store is updated. On validation failure the
// selector stays in the baseline phase so the user can retry, and the
// store is not touched.
func (s *Selector) Commit(ctx context.Context) (*Hydration, error) {
	if s.phase != PhasePickingBaseline {
		return nil, ErrWrongPhase
	}
	if s.baseline == 0 {
		return nil, ErrBaselineNotStaged
	}
	if len(s.staged) < 2 {
		return nil, ErrTooFewCandidates
	}

	set := Set{Baseline: s.baseline}
	for _, id := range s.staged {
		if id != s.baseline {
			set.Candidates = append(set.Candidates, id)
		}
	}

	hydration, err := s.validateAndHydrate(ctx, set)
	if err != nil {
		return nil, err
	}

	s.committed = set
	s.phase = PhaseCommitted
	s.staged = nil
	s.baseline = 0
	s.persist(set)
	return hydration, nil
}

// Cancel abandons the picking workflow. The previously committed set, if
// any, survives; an empty selector returns to idle.
func (s *Selector) Cancel() {
	s.staged = nil
	s.baseline = 0
	if len(s.committed.Candidates) > 0 {
		s.phase = PhaseCommitted
		return
	}
	s.phase = PhaseIdle
}

// SwapBaseline promotes a member of the committed set to baseline without
// re-entering the picking workflow. The old baseline is appended to the
// candidates, preserving their relative order. On any failure the prior
// committed set and store entry are kept unchanged.
func (s *Selector) SwapBaseline(ctx context.Context, id evalapi.ExperimentID) (*Hydration, error) {
	if s.phase != PhaseCommitted {
		return nil, ErrNotCommitted
	}
	if !s.committed.Contains(id) {
		return nil, ErrBaselineNotStaged
	}
	if id == s.committed.Baseline {
		return s.hydrator.Hydrate(ctx, s.committed)
	}

	next := Set{Baseline: id}
	for _, c := range s.committed.Candidates {
		if c != id {
			next.Candidates = append(next.Candidates, c)
		}
	}
	next.Candidates = append(next.Candidates, s.committed.Baseline)

	hydration, err := s.validateAndHydrate(ctx, next)
	if err != nil {
		return nil, err
	}

	s.committed = next
	s.persist(next)
	return hydration, nil
}

// AdoptCommitted installs an externally restored committed set without
// re-running the picking workflow. Used when replaying a persisted session
// that has already been validated and hydrated.
func (s *Selector) AdoptCommitted(set Set) error {
	if len(set.Candidates) == 0 {
		return ErrTooFewCandidates
	}
	s.committed = set
	s.phase = PhaseCommitted
	s.staged = nil
	s.baseline = 0
	return nil
}

// ClearCommitted drops the committed comparison and returns to idle.
func (s *Selector) ClearCommitted() {
	s.committed = Set{}
	s.phase = PhaseIdle
}

// validateAndHydrate runs the blocking validation call and, only when it
// passes, the concurrent hydration.
func (s *Selector) validateAndHydrate(ctx context.Context, set Set) (*Hydration, error) {
	if err := s.hydrator.Validate(ctx, set.IDs()); err != nil {
		return nil, err
	}
	return s.hydrator.Hydrate(ctx, set)
}

// persist mirrors the committed set into the session store. Store failures
// are logged, not surfaced: the in-memory commit already succeeded.
func (s *Selector) persist(set Set) {
	if s.saver == nil {
		return
	}
	if err := s.saver.Save(set.Baseline, set.Candidates); err != nil {
		logging.LogEvent("failed to persist comparison session (%s): %v", describeSet(set), err)
		return
	}
	logging.LogEvent("comparison session saved: %s", describeSet(set))
}

// describeSet is a compact log label for a set.
func describeSet(set Set) string {
	return fmt.Sprintf("baseline=%d candidates=%v", set.Baseline, set.Candidates)
}
