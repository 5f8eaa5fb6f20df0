// internal/evalapi/client.go
package evalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evaldeck/evaldeck/internal/logging"
)

// defaultRequestTimeout defines the fallback HTTP timeout for API calls.
const defaultRequestTimeout = 120 * time.Second

// Client talks to the evaluation-management API over HTTP/JSON.
type Client struct {
	baseURL        string
	client         *http.Client
	requestTimeout time.Duration
}

// NewClient creates a client for the API at baseURL. A zero timeout falls
// back to the package default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: timeout},
		requestTimeout: timeout,
	}
}

// BaseURL returns the configured API endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest executes an HTTP request against the API with context
// cancellation support and decodes the JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request for %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.LogRequest("out", c.baseURL, path, payload)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// ListExperiments returns every experiment known to the API.
func (c *Client) ListExperiments(ctx context.Context) ([]Experiment, error) {
	var resp struct {
		Experiments []Experiment `json:"experiments"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/experiments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Experiments, nil
}

// idsPayload is the request body shared by the comparison endpoints.
type idsPayload struct {
	ExperimentIDs []ExperimentID `json:"experimentIds"`
}

// ValidateComparison asks the API whether the given experiments can be
// compared. The verdict is authoritative; a false result carries the reason.
func (c *Client) ValidateComparison(ctx context.Context, ids []ExperimentID) (ValidationResult, error) {
	var result ValidationResult
	err := c.doRequest(ctx, http.MethodPost, "/api/experiments/comparison/validate", idsPayload{ExperimentIDs: ids}, &result)
	if err != nil {
		return ValidationResult{}, err
	}
	return result, nil
}

// GetComparisonDetails fetches the row-level detail for a comparison.
func (c *Client) GetComparisonDetails(ctx context.Context, ids []ExperimentID) ([]ComparisonRow, error) {
	var resp struct {
		Rows []ComparisonRow `json:"rows"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/experiments/comparison/details", idsPayload{ExperimentIDs: ids}, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// GetComparisonMetrics fetches the aggregate metric series for a comparison.
func (c *Client) GetComparisonMetrics(ctx context.Context, ids []ExperimentID) (ComparisonMetrics, error) {
	var metrics ComparisonMetrics
	err := c.doRequest(ctx, http.MethodPost, "/api/experiments/comparison/metrics", idsPayload{ExperimentIDs: ids}, &metrics)
	if err != nil {
		return ComparisonMetrics{}, err
	}
	return metrics, nil
}

// GetExperiment fetches a single experiment record.
func (c *Client) GetExperiment(ctx context.Context, id ExperimentID) (Experiment, error) {
	var exp Experiment
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/experiments/%d", id), nil, &exp)
	if err != nil {
		return Experiment{}, err
	}
	return exp, nil
}

// GetDatasetVersion fetches a dataset version record.
func (c *Client) GetDatasetVersion(ctx context.Context, id int64) (DatasetVersion, error) {
	var dv DatasetVersion
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/dataset-versions/%d", id), nil, &dv)
	if err != nil {
		return DatasetVersion{}, err
	}
	return dv, nil
}

// GetEvaluatorVersion fetches an evaluator version record.
func (c *Client) GetEvaluatorVersion(ctx context.Context, id int64) (EvaluatorVersion, error) {
	var ev EvaluatorVersion
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/evaluator-versions/%d", id), nil, &ev)
	if err != nil {
		return EvaluatorVersion{}, err
	}
	return ev, nil
}

// GetEvaluator fetches an evaluator record.
func (c *Client) GetEvaluator(ctx context.Context, id int64) (Evaluator, error) {
	var e Evaluator
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/evaluators/%d", id), nil, &e)
	if err != nil {
		return Evaluator{}, err
	}
	return e, nil
}

// GetModelSet fetches a model configuration record.
func (c *Client) GetModelSet(ctx context.Context, id int64) (ModelSet, error) {
	var ms ModelSet
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/model-sets/%d", id), nil, &ms)
	if err != nil {
		return ModelSet{}, err
	}
	return ms, nil
}

// GetPrompt fetches a prompt record.
func (c *Client) GetPrompt(ctx context.Context, id int64) (Prompt, error) {
	var p Prompt
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/prompts/%d", id), nil, &p)
	if err != nil {
		return Prompt{}, err
	}
	return p, nil
}
