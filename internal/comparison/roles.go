// internal/comparison/roles.go
package comparison

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/evaldeck/evaldeck/internal/evalapi"
)

// Set is a committed comparison: one baseline plus an ordered list of
// candidates. Candidates never contain the baseline and never repeat.
type Set struct {
	Baseline   evalapi.ExperimentID
	Candidates []evalapi.ExperimentID
}

// IDs returns the baseline followed by the candidates in order.
func (s Set) IDs() []evalapi.ExperimentID {
	ids := make([]evalapi.ExperimentID, 0, len(s.Candidates)+1)
	ids = append(ids, s.Baseline)
	ids = append(ids, s.Candidates...)
	return ids
}

// Contains reports whether id is the baseline or one of the candidates.
func (s Set) Contains(id evalapi.ExperimentID) bool {
	if id == s.Baseline {
		return true
	}
	for _, c := range s.Candidates {
		if c == id {
			return true
		}
	}
	return false
}

// Role labels an experiment's position within a committed set.
type Role struct {
	Kind  RoleKind
	Index int // 1-based candidate position, zero otherwise
}

// RoleKind distinguishes baseline, candidate, and unknown roles.
type RoleKind int

const (
	RoleUnknown RoleKind = iota
	RoleBaseline
	RoleCandidate
)

// String returns the display label for the role.
func (r Role) String() string {
	switch r.Kind {
	case RoleBaseline:
		return "baseline"
	case RoleCandidate:
		return fmt.Sprintf("candidate %d", r.Index)
	}
	return "unknown"
}

// palette holds the display colors assigned to comparison roles. The
// baseline always takes the first entry; candidate i wraps modulo the
// palette size.
var palette = []lipgloss.Color{
	lipgloss.Color("39"),  // baseline blue
	lipgloss.Color("208"), // orange
	lipgloss.Color("40"),  // green
	lipgloss.Color("205"), // pink
	lipgloss.Color("220"), // gold
	lipgloss.Color("135"), // violet
	lipgloss.Color("51"),  // cyan
	lipgloss.Color("196"), // red
}

// RoleOf maps an experiment to its role in the committed set. IDs outside
// the set map to the explicit unknown role, never to a real one.
func RoleOf(set Set, id evalapi.ExperimentID) Role {
	if id == set.Baseline {
		return Role{Kind: RoleBaseline}
	}
	for i, c := range set.Candidates {
		if c == id {
			return Role{Kind: RoleCandidate, Index: i + 1}
		}
	}
	return Role{Kind: RoleUnknown}
}

// ColorOf maps an experiment to its stable palette color. The result is a
// pure function of (set, id), not of fetch order.
func ColorOf(set Set, id evalapi.ExperimentID) lipgloss.Color {
	role := RoleOf(set, id)
	switch role.Kind {
	case RoleBaseline:
		return palette[0]
	case RoleCandidate:
		return palette[role.Index%len(palette)]
	}
	return lipgloss.Color("245") // neutral gray for unknowns
}
