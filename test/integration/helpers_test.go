package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
)

// testServer holds the base URL of a running calc server, or "" when the
// integration tests should be skipped.
var testServer string

func init() {
	testServer = os.Getenv("CALC_SERVER_URL")
	if testServer == "" {
		return
	}
	// Ensure the URL has a scheme.
	if !strings.HasPrefix(testServer, "http://") && !strings.HasPrefix(testServer, "https://") {
		testServer = "http://" + testServer
	}
}

func requireServer(t *testing.T) {
	t.Helper()
	if testServer == "" {
		t.Skip("CALC_SERVER_URL not set; start `calc serve` and point it there")
	}
}

// apiURL builds a full URL for the given API path.
func apiURL(path string) string {
	return strings.TrimRight(testServer, "/") + "/v1/" + path
}

// postJSON sends body to path and decodes the JSON response.
func postJSON(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	data, _ := json.Marshal(body)
	resp, err := http.Post(apiURL(path), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s HTTP error: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("POST %s decode error: %v (body %s)", path, err, raw)
	}
	return resp.StatusCode, result
}

// evaluate posts one expression and returns the status code and body.
func evaluate(t *testing.T, expression string) (int, map[string]interface{}) {
	t.Helper()
	return postJSON(t, "evaluate", map[string]string{"expression": expression})
}

// errorKind extracts error.kind from a failed evaluation response.
func errorKind(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response: %v", body)
	}
	kind, _ := errObj["kind"].(string)
	return kind
}
