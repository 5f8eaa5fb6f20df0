package evalapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListExperiments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/experiments" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %q", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"experiments": []map[string]any{
				{"id": 7, "name": "run-a", "status": "completed"},
				{"id": 8, "name": "run-b", "status": "running"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	experiments, err := client.ListExperiments(context.Background())
	if err != nil {
		t.Fatalf("ListExperiments: %v", err)
	}
	if len(experiments) != 2 {
		t.Fatalf("got %d experiments, want 2", len(experiments))
	}
	if experiments[0].ID != 7 || experiments[0].Name != "run-a" {
		t.Fatalf("unexpected first experiment: %+v", experiments[0])
	}
	if !experiments[1].Active() {
		t.Fatal("a running experiment should report active")
	}
}

func TestValidateComparisonPostsIDs(t *testing.T) {
	var received idsPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/experiments/comparison/validate" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"valid":   false,
			"message": "experiments use different dataset versions",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	result, err := client.ValidateComparison(context.Background(), []ExperimentID{7, 8})
	if err != nil {
		t.Fatalf("ValidateComparison: %v", err)
	}
	if result.Valid {
		t.Fatal("expected a rejected validation")
	}
	if result.Message != "experiments use different dataset versions" {
		t.Fatalf("message = %q", result.Message)
	}
	if len(received.ExperimentIDs) != 2 || received.ExperimentIDs[0] != 7 {
		t.Fatalf("server received ids %v", received.ExperimentIDs)
	}
}

func TestGetComparisonMetricsDecodesBundles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"evaluatorScores": map[string]any{
				"perEvaluatorSeries": map[string]any{
					"31": map[string]any{
						"7": map[string]any{"average": 0.5, "count": 4},
					},
				},
			},
			"runtimeMetrics": map[string]any{
				"latency": map[string]any{
					"7": map[string]any{"value": 1200.0},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	metrics, err := client.GetComparisonMetrics(context.Background(), []ExperimentID{7, 8})
	if err != nil {
		t.Fatalf("GetComparisonMetrics: %v", err)
	}
	bundle := metrics.EvaluatorScores.Series[31][7]
	if bundle.Average == nil || *bundle.Average != 0.5 {
		t.Fatalf("average bundle not decoded: %+v", bundle)
	}
	if bundle.Sum != nil {
		t.Fatal("absent sum must decode to nil")
	}
	latency := metrics.RuntimeMetrics.Latency[7]
	if latency.Value == nil || *latency.Value != 1200 {
		t.Fatalf("latency not decoded: %+v", latency)
	}
}

func TestGetExperimentByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/experiments/42" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 42, "name": "nightly", "status": "completed"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	exp, err := client.GetExperiment(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetExperiment: %v", err)
	}
	if exp.ID != 42 || exp.Name != "nightly" {
		t.Fatalf("unexpected experiment: %+v", exp)
	}
}

func TestNonOKStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "experiment not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.GetExperiment(context.Background(), 99)
	if err == nil {
		t.Fatal("expected an error on 404")
	}
	if got := err.Error(); got != "/api/experiments/99 returned 404: experiment not found" {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:8080/", 0)
	if client.BaseURL() != "http://localhost:8080" {
		t.Fatalf("base url = %q", client.BaseURL())
	}
}
