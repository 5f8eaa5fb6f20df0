// internal/evalapi/types.go
// Package evalapi is the HTTP client for the external evaluation-management API.
package evalapi

// ExperimentID identifies a single evaluation run. IDs are assigned by the
// evaluation system and never reused.
type ExperimentID int64

// Experiment is a single batch evaluation run as returned by the list and
// detail endpoints.
type Experiment struct {
	ID                  ExperimentID `json:"id"`
	Name                string       `json:"name"`
	Status              string       `json:"status"`
	Description         string       `json:"description,omitempty"`
	DatasetVersionID    int64        `json:"datasetVersionId,omitempty"`
	ModelSetID          int64        `json:"modelSetId,omitempty"`
	PromptID            int64        `json:"promptId,omitempty"`
	EvaluatorVersionIDs []int64      `json:"evaluatorVersionIds,omitempty"`
}

// Active reports whether the experiment is still producing results.
func (e Experiment) Active() bool {
	switch e.Status {
	case "pending", "queued", "running":
		return true
	}
	return false
}

// ValidationResult is the server's verdict on whether a set of experiments
// can be compared. Message carries the human-readable reason when Valid is
// false and must be surfaced verbatim.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ExperimentCell is one experiment's output for a single dataset item.
type ExperimentCell struct {
	ExperimentID  ExperimentID `json:"experimentId"`
	Response      string       `json:"response"`
	Status        string       `json:"status"`
	LatencyMs     float64      `json:"latencyMs"`
	InputTokens   int          `json:"inputTokens"`
	OutputTokens  int          `json:"outputTokens"`
	Score         *float64     `json:"score,omitempty"`
	EvaluatorName string       `json:"evaluatorName,omitempty"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
}

// ComparisonRow is one dataset item with the aligned outputs of every
// experiment in the comparison.
type ComparisonRow struct {
	DatasetItemID   int64            `json:"datasetItemId"`
	Input           string           `json:"input"`
	ReferenceOutput string           `json:"referenceOutput,omitempty"`
	PerExperiment   []ExperimentCell `json:"perExperiment"`
}

// ScoreBundle is the raw statistic bundle for one evaluator on one
// experiment. Fields are pointers because the backend omits statistics that
// were not computed; absence is expected, not an error.
type ScoreBundle struct {
	Average *float64 `json:"average,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Sum     *float64 `json:"sum,omitempty"`
	Count   *float64 `json:"count,omitempty"`
}

// RuntimeBundle is the raw statistic bundle for one runtime metric (latency
// or token counts) on one experiment.
type RuntimeBundle struct {
	Value    *float64 `json:"value,omitempty"`
	AvgValue *float64 `json:"avg_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	MinValue *float64 `json:"min_value,omitempty"`
}

// EvaluatorRef names an evaluator version shared by every experiment in a
// comparison.
type EvaluatorRef struct {
	VersionID int64  `json:"versionId"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
}

// EvaluatorScores holds the per-evaluator score series, keyed by
// evaluator-version id.
type EvaluatorScores struct {
	CommonEvaluators []EvaluatorRef                         `json:"commonEvaluators"`
	Series           map[int64]map[ExperimentID]ScoreBundle `json:"perEvaluatorSeries"`
}

// RuntimeMetrics holds the runtime metric series, one map per metric name.
type RuntimeMetrics struct {
	Latency      map[ExperimentID]RuntimeBundle `json:"latency"`
	InputTokens  map[ExperimentID]RuntimeBundle `json:"inputTokens"`
	OutputTokens map[ExperimentID]RuntimeBundle `json:"outputTokens"`
	TotalTokens  map[ExperimentID]RuntimeBundle `json:"totalTokens"`
}

// ComparisonMetrics is the aggregate-metrics payload for a comparison.
type ComparisonMetrics struct {
	EvaluatorScores EvaluatorScores `json:"evaluatorScores"`
	RuntimeMetrics  RuntimeMetrics  `json:"runtimeMetrics"`
}

// DatasetVersion describes one immutable snapshot of a dataset.
type DatasetVersion struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// EvaluatorVersion is a pinned revision of an evaluator.
type EvaluatorVersion struct {
	ID          int64 `json:"id"`
	EvaluatorID int64 `json:"evaluatorId"`
	Version     int   `json:"version"`
}

// Evaluator is a scoring function, prompt- or code-based.
type Evaluator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ModelSet is a named model configuration used as an evaluation target.
type ModelSet struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model,omitempty"`
}

// Prompt is a prompt template used as an evaluation target.
type Prompt struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
