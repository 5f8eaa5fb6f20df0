// cli/dashboard_view.go
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evaldeck/evaldeck/internal/comparison"
	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/util"
)

// runtimeMetricNames lists the runtime series in display order.
var runtimeMetricNames = []string{"latency", "inputTokens", "outputTokens", "totalTokens"}

// dashboardView renders the committed comparison: a header per experiment
// colored by role, the metadata lines, and the aggregated metric tables.
func (m *model) dashboardView() string {
	current := m.board.Current()
	if current == nil {
		return "\n  No comparison committed yet. Press n to pick experiments.\n"
	}

	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	builder.WriteString(headerStyle.Render(fmt.Sprintf("Comparison  rows: %d", len(current.Rows))))
	builder.WriteString("\n\n")

	for _, id := range current.Set.IDs() {
		builder.WriteString(m.experimentLine(current.Set, id))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(m.scoreSection(current))
	builder.WriteString(m.runtimeSection(current))

	if m.statusLine != "" {
		warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
		builder.WriteString(warnStyle.Render("  " + m.statusLine))
		builder.WriteString("\n")
	}

	m.viewport.SetContent(builder.String())

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	help := helpStyle.Render("  m: score mode  r: runtime mode  b: swap baseline  n: new comparison  q: quit")
	return m.viewport.View() + "\n" + help
}

// experimentLine renders one experiment's role badge, name, and metadata.
func (m *model) experimentLine(set comparison.Set, id evalapi.ExperimentID) string {
	role := comparison.RoleOf(set, id)
	roleStyle := lipgloss.NewStyle().Foreground(comparison.ColorOf(set, id)).Bold(true)

	name := fmt.Sprintf("experiment %d", id)
	detail := ""
	if meta, ok := m.cache.Peek(id); ok && meta != nil {
		name = meta.Name
		evaluators := make([]string, len(meta.Evaluators))
		for i, ev := range meta.Evaluators {
			evaluators[i] = fmt.Sprintf("%s v%d", ev.Name, ev.Version)
		}
		detail = fmt.Sprintf("  dataset: %s  target: %s  evaluators: %s",
			meta.Dataset, meta.Target, strings.Join(evaluators, ", "))
	}

	if m.width > 0 {
		detail = util.TruncateRunes(detail, m.width-24)
	}
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return fmt.Sprintf("  %s %s (%d)%s",
		roleStyle.Render(role.String()), name, id, detailStyle.Render(detail))
}

// scoreSection renders one line per common evaluator with the aggregated
// value of every experiment under the currently selected mode.
func (m *model) scoreSection(current *comparison.Hydration) string {
	refs := current.Metrics.EvaluatorScores.CommonEvaluators
	if len(refs) == 0 {
		return ""
	}

	var builder strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true)
	builder.WriteString(titleStyle.Render("  Evaluator scores"))
	builder.WriteString("\n")

	for _, ref := range refs {
		mode := m.board.ScoreMode(ref.VersionID)
		builder.WriteString(fmt.Sprintf("    %s v%d (%s):", ref.Name, ref.Version, mode))
		for _, id := range current.Set.IDs() {
			valueStyle := lipgloss.NewStyle().Foreground(comparison.ColorOf(current.Set, id))
			builder.WriteString("  " + valueStyle.Render(fmt.Sprintf("%.4g", m.board.ScoreValue(ref.VersionID, id))))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	return builder.String()
}

// runtimeSection renders one line per runtime metric.
func (m *model) runtimeSection(current *comparison.Hydration) string {
	var builder strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true)
	builder.WriteString(titleStyle.Render("  Runtime metrics"))
	builder.WriteString("\n")

	for _, metric := range runtimeMetricNames {
		mode := m.board.RuntimeMode(metric)
		builder.WriteString(fmt.Sprintf("    %s (%s):", metric, mode))
		for _, id := range current.Set.IDs() {
			valueStyle := lipgloss.NewStyle().Foreground(comparison.ColorOf(current.Set, id))
			builder.WriteString("  " + valueStyle.Render(fmt.Sprintf("%.4g", m.board.RuntimeValue(metric, id))))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	return builder.String()
}
