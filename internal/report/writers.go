// internal/report/writers.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(path string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteYAML writes the report as YAML.
func WriteYAML(path string, rep Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	return writeFile(path, data)
}

// WriteMarkdown writes the report as a Markdown document with one table
// per metric family.
func WriteMarkdown(path string, rep Report) error {
	var b strings.Builder

	b.WriteString("# Comparison Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.GeneratedAtUTC.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Baseline experiment: %d  \n", rep.Baseline)
	fmt.Fprintf(&b, "Dataset rows: %d\n\n", rep.RowCount)

	writeTable(&b, "Evaluator Scores", rep, func(s ExperimentSummary) map[string]float64 { return s.Scores })
	writeTable(&b, "Runtime Metrics", rep, func(s ExperimentSummary) map[string]float64 { return s.Runtime })

	return writeFile(path, []byte(b.String()))
}

// writeTable renders one Markdown table with experiments as rows and the
// union of metric labels as columns.
func writeTable(b *strings.Builder, title string, rep Report, pick func(ExperimentSummary) map[string]float64) {
	labels := map[string]struct{}{}
	for _, exp := range rep.Experiments {
		for label := range pick(exp) {
			labels[label] = struct{}{}
		}
	}
	if len(labels) == 0 {
		return
	}
	sorted := make([]string, 0, len(labels))
	for label := range labels {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Experiment | Role |")
	for _, label := range sorted {
		fmt.Fprintf(b, " %s |", label)
	}
	b.WriteString("\n|---|---|")
	for range sorted {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, exp := range rep.Experiments {
		fmt.Fprintf(b, "| %d | %s |", exp.ExperimentID, exp.Role)
		values := pick(exp)
		for _, label := range sorted {
			fmt.Fprintf(b, " %.4g |", values[label])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}
