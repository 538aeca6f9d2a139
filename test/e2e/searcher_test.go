// Package e2e runs HTTP requests against a searcher service started with
// cmd/searcher over a built index. Tests skip when the service is not
// reachable.
//
// Run with:
//
//	E2E_SEARCHER_URL=http://localhost:8080 go test -v -timeout=60s ./test/e2e/...
package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

var client = &http.Client{Timeout: 5 * time.Second}

func searcherURL() string {
	if v := os.Getenv("E2E_SEARCHER_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func getJSON(t *testing.T, path string, v any) int {
	t.Helper()
	resp, err := client.Get(searcherURL() + path)
	if err != nil {
		t.Skipf("searcher unavailable: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("decoding %s: %v (%s)", path, err, body)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			var body map[string]any
			if code := getJSON(t, path, &body); code != http.StatusOK {
				t.Errorf("%s: status %d, body %v", path, code, body)
			}
		})
	}
}

func TestBooleanQueries(t *testing.T) {
	var resp struct {
		Results []string `json:"results"`
		Total   int      `json:"total"`
	}
	code := getJSON(t, "/api/v1/search/boolean?q="+url.QueryEscape("python OR NOT python"), &resp)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if resp.Total != len(resp.Results) {
		t.Errorf("total %d != len(results) %d", resp.Total, len(resp.Results))
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i-1] >= resp.Results[i] {
			t.Fatalf("results not strictly ascending at %d: %v", i, resp.Results[i-1:i+1])
		}
	}

	var errBody map[string]string
	if code := getJSON(t, "/api/v1/search/boolean?q="+url.QueryEscape("python AND"), &errBody); code != http.StatusBadRequest {
		t.Errorf("dangling operator: status %d, want 400", code)
	}
}

func TestRankedQuery(t *testing.T) {
	var resp struct {
		Results []struct {
			DocID string  `json:"doc_id"`
			Score float64 `json:"score"`
		} `json:"results"`
		Limit int `json:"limit"`
	}
	code := getJSON(t, "/api/v1/search/ranked?limit=5&q="+url.QueryEscape("python data science"), &resp)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(resp.Results) > resp.Limit {
		t.Errorf("%d results over limit %d", len(resp.Results), resp.Limit)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i-1].Score < resp.Results[i].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestCacheStats(t *testing.T) {
	var stats map[string]any
	if code := getJSON(t, "/api/v1/cache/stats", &stats); code != http.StatusOK {
		t.Errorf("status %d", code)
	}
}
