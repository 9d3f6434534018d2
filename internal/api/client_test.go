package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(testKey, WithEndpoint(server.URL+"/api/v2/report"))
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestSubmit_SendsFormRequest(t *testing.T) {
	var got url.Values
	var headers http.Header
	var method, path string

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		headers = r.Header.Clone()
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		got = r.PostForm
		respond(http.StatusOK, `{"data":{"ipAddress":"192.0.2.1","abuseConfidenceScore":52}}`)(w, r)
	})

	outcome := client.Submit(context.Background(), "192.0.2.1", []int{18, 22}, "SSH brute force", 75)
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}

	if method != http.MethodPost {
		t.Errorf("expected POST, got %s", method)
	}
	if path != "/api/v2/report" {
		t.Errorf("unexpected path %s", path)
	}
	if headers.Get("Key") != testKey {
		t.Errorf("expected Key header to carry the API key, got %q", headers.Get("Key"))
	}
	if headers.Get("Accept") != "application/json" {
		t.Errorf("unexpected Accept header %q", headers.Get("Accept"))
	}
	if got.Get("ip") != "192.0.2.1" {
		t.Errorf("unexpected ip %q", got.Get("ip"))
	}
	if got.Get("categories") != "18,22" {
		t.Errorf("expected comma-joined categories, got %q", got.Get("categories"))
	}
	if got.Get("comment") != "SSH brute force" {
		t.Errorf("unexpected comment %q", got.Get("comment"))
	}
	if got.Get("confidence") != "75" {
		t.Errorf("unexpected confidence %q", got.Get("confidence"))
	}
}

func TestSubmit_ResponseClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		success bool
		message string
		detail  string
	}{
		{"ok with data", 200, `{"data":{"ipAddress":"192.0.2.1"}}`, true, MsgSubmitted, ""},
		{"created with data", 201, `{"data":{}}`, true, MsgSubmitted, ""},
		{"ok without data", 200, `{"meta":{}}`, false, MsgAPIError, DetailUnknownError},
		{"bad request with detail", 400, `{"errors":[{"detail":"The ip field must be a valid IP address.","status":422}]}`, false, MsgBadRequest, "The ip field must be a valid IP address."},
		{"bad request without detail", 400, `{}`, false, MsgBadRequest, MsgBadRequest},
		{"unauthorized", 401, `{"errors":[{"detail":"Authentication failed. Your API key is either missing, incorrect, or revoked."}]}`, false, MsgAuthFailed, DetailInvalidAPIKey},
		{"unauthorized with data", 401, `{"data":{}}`, false, MsgAuthFailed, DetailInvalidAPIKey},
		{"rate limited", 429, `{"errors":[{"detail":"Daily rate limit of 1000 requests exceeded"}]}`, false, MsgRateLimited, DetailRateLimited},
		{"server error", 500, `{"errors":[]}`, false, MsgServerError, DetailServerError},
		{"bad gateway", 502, `{}`, false, MsgServerError, DetailServerError},
		{"unprocessable", 422, `{"errors":[{"detail":"You can only report the same IP address once in 15 minutes."}]}`, false, MsgAPIError, "You can only report the same IP address once in 15 minutes."},
		{"forbidden without errors", 403, `{}`, false, MsgAPIError, DetailUnknownError},
		{"html error page", 503, `<html>Service Unavailable</html>`, false, MsgParseFailed, DetailInvalidJSON},
		{"empty body", 200, ``, false, MsgParseFailed, DetailInvalidJSON},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, client := newTestServer(t, respond(test.status, test.body))

			outcome := client.Submit(context.Background(), "192.0.2.1", []int{18}, "test", 100)
			if outcome.Success != test.success {
				t.Errorf("expected success=%v, got %v", test.success, outcome.Success)
			}
			if outcome.Message != test.message {
				t.Errorf("expected message %q, got %q", test.message, outcome.Message)
			}
			if outcome.Error != test.detail {
				t.Errorf("expected detail %q, got %q", test.detail, outcome.Error)
			}
			if outcome.StatusCode != test.status {
				t.Errorf("expected status %d to be preserved, got %d", test.status, outcome.StatusCode)
			}
		})
	}
}

func TestSubmit_SuccessAttachesPayload(t *testing.T) {
	_, client := newTestServer(t, respond(http.StatusOK, `{"data":{"ipAddress":"192.0.2.1","abuseConfidenceScore":52}}`))

	outcome := client.Submit(context.Background(), "192.0.2.1", []int{4}, "ddos", 90)
	data, ok := outcome.Response["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data payload, got %v", outcome.Response)
	}
	if data["ipAddress"] != "192.0.2.1" {
		t.Errorf("unexpected payload %v", data)
	}
}

func TestSubmit_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(testKey, WithEndpoint(server.URL), WithTimeout(50*time.Millisecond))
	outcome := client.Submit(context.Background(), "192.0.2.1", []int{18}, "test", 100)

	if outcome.Success {
		t.Fatal("expected failure on timeout")
	}
	if outcome.Message != MsgTimedOut {
		t.Errorf("expected %q, got %q (%s)", MsgTimedOut, outcome.Message, outcome.Error)
	}
	if outcome.Error != "The API request exceeded 0.05 seconds" {
		t.Errorf("unexpected detail %q", outcome.Error)
	}
	if outcome.StatusCode != 0 {
		t.Errorf("expected no status code, got %d", outcome.StatusCode)
	}
}

func TestSubmit_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := NewClient(testKey, WithEndpoint(endpoint))
	outcome := client.Submit(context.Background(), "192.0.2.1", []int{18}, "test", 100)

	if outcome.Success {
		t.Fatal("expected failure when the server is unreachable")
	}
	if outcome.Message != MsgConnectionError {
		t.Errorf("expected %q, got %q (%s)", MsgConnectionError, outcome.Message, outcome.Error)
	}
	if outcome.Error == "" {
		t.Error("expected the underlying error text to be attached")
	}
}

func TestSubmit_CanceledContext(t *testing.T) {
	_, client := newTestServer(t, respond(http.StatusOK, `{"data":{}}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := client.Submit(ctx, "192.0.2.1", []int{18}, "test", 100)
	if outcome.Success {
		t.Fatal("expected failure with canceled context")
	}
	if outcome.Message != MsgRequestFailed {
		t.Errorf("expected %q, got %q", MsgRequestFailed, outcome.Message)
	}
	if !strings.Contains(outcome.Error, "canceled") {
		t.Errorf("expected cancellation in detail, got %q", outcome.Error)
	}
}

func TestClassify_RuleNames(t *testing.T) {
	tests := []struct {
		status int
		body   string
		rule   string
	}{
		{200, `not json`, "unparseable"},
		{200, `[1,2,3]`, "unparseable"},
		{200, `null`, "unparseable"},
		{201, `{"data":null}`, "success"},
		{400, `{"data":{}}`, "bad_request"},
		{401, `{}`, "unauthorized"},
		{429, `{}`, "rate_limited"},
		{500, `{"data":{}}`, "server_error"},
		{200, `{}`, "api_error"},
		{302, `{}`, "api_error"},
	}

	for _, test := range tests {
		_, rule := Classify(test.status, []byte(test.body))
		if rule != test.rule {
			t.Errorf("Classify(%d, %s): expected rule %s, got %s", test.status, test.body, test.rule, rule)
		}
	}
}

func TestJoinIDs(t *testing.T) {
	if got := joinIDs([]int{18, 22, 4}); got != "18,22,4" {
		t.Errorf("unexpected join %q", got)
	}
	if got := joinIDs(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSubmit_OversizedResponse(t *testing.T) {
	body := `{"data":{"padding":"` + strings.Repeat("x", maxResponseBytes) + `"}}`
	_, client := newTestServer(t, respond(http.StatusOK, body))

	outcome := client.Submit(context.Background(), "192.0.2.1", []int{18}, "test", 100)
	if outcome.Success {
		t.Fatal("expected a truncated reply to fail parsing")
	}
	if outcome.Message != MsgParseFailed {
		t.Errorf("expected %q, got %q", MsgParseFailed, outcome.Message)
	}
}

func TestWithHTTPClient(t *testing.T) {
	server := httptest.NewTLSServer(respond(http.StatusOK, `{"data":{"ipAddress":"192.0.2.1"}}`))
	defer server.Close()

	shared := server.Client()
	shared.Timeout = time.Minute

	client := NewClient(testKey, WithEndpoint(server.URL), WithHTTPClient(shared), WithTimeout(2*time.Second))
	outcome := client.Submit(context.Background(), "192.0.2.1", []int{18}, "test", 100)

	if !outcome.Success {
		t.Fatalf("expected success over the supplied transport, got %q (%s)", outcome.Message, outcome.Error)
	}
	if shared.Timeout != time.Minute {
		t.Errorf("caller's client timeout changed to %s", shared.Timeout)
	}
	if client.httpClient == shared || client.httpClient.Timeout != 2*time.Second {
		t.Errorf("expected a copied client with a 2s timeout, got %s", client.httpClient.Timeout)
	}
}
