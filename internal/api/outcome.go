package api

import (
	"encoding/json"
	"net/http"
)

// Outcome messages
const (
	MsgSubmitted       = "Report submitted successfully"
	MsgParseFailed     = "Failed to parse API response"
	MsgBadRequest      = "Bad request"
	MsgAuthFailed      = "Authentication failed"
	MsgRateLimited     = "Rate limit exceeded"
	MsgServerError     = "Server error"
	MsgAPIError        = "API error"
	MsgTimedOut        = "Request timed out"
	MsgConnectionError = "Connection error"
	MsgRequestFailed   = "Request failed"
)

// Outcome details with a fixed wording
const (
	DetailInvalidJSON   = "Invalid JSON in response body"
	DetailInvalidAPIKey = "Invalid API key"
	DetailRateLimited   = "Too many requests - please wait before trying again"
	DetailServerError   = "AbuseIPDB API server error"
	DetailUnknownError  = "Unknown error"
)

// Outcome is the result of one submission attempt. StatusCode is zero when no
// HTTP response was received; Response and Error are empty when absent.
type Outcome struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	StatusCode int            `json:"status_code,omitempty"`
	Response   map[string]any `json:"response,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// response is a received HTTP reply as seen by the classification rules
type response struct {
	status int
	body   map[string]any
	parsed bool
}

// rule pairs a predicate with the outcome it produces. Rules are evaluated
// in order and the first match wins.
type rule struct {
	name  string
	match func(r *response) bool
	build func(r *response) Outcome
}

var rules = []rule{
	{
		name:  "unparseable",
		match: func(r *response) bool { return !r.parsed },
		build: func(r *response) Outcome {
			return Outcome{Message: MsgParseFailed, StatusCode: r.status, Error: DetailInvalidJSON}
		},
	},
	{
		name: "success",
		match: func(r *response) bool {
			_, hasData := r.body["data"]
			return (r.status == http.StatusOK || r.status == http.StatusCreated) && hasData
		},
		build: func(r *response) Outcome {
			return Outcome{Success: true, Message: MsgSubmitted, StatusCode: r.status, Response: r.body}
		},
	},
	{
		name:  "bad_request",
		match: statusIs(http.StatusBadRequest),
		build: func(r *response) Outcome {
			return failure(r, MsgBadRequest, firstErrorDetail(r.body, MsgBadRequest))
		},
	},
	{
		name:  "unauthorized",
		match: statusIs(http.StatusUnauthorized),
		build: func(r *response) Outcome {
			return failure(r, MsgAuthFailed, DetailInvalidAPIKey)
		},
	},
	{
		name:  "rate_limited",
		match: statusIs(http.StatusTooManyRequests),
		build: func(r *response) Outcome {
			return failure(r, MsgRateLimited, DetailRateLimited)
		},
	},
	{
		name:  "server_error",
		match: func(r *response) bool { return r.status >= http.StatusInternalServerError },
		build: func(r *response) Outcome {
			return failure(r, MsgServerError, DetailServerError)
		},
	},
	{
		name:  "api_error",
		match: func(*response) bool { return true },
		build: func(r *response) Outcome {
			return failure(r, MsgAPIError, firstErrorDetail(r.body, DetailUnknownError))
		},
	},
}

// Classify turns a status code and raw body into an Outcome. It also returns
// the name of the rule that matched.
func Classify(status int, body []byte) (Outcome, string) {
	r := &response{status: status}
	if err := json.Unmarshal(body, &r.body); err == nil && r.body != nil {
		r.parsed = true
	}

	for _, rl := range rules {
		if rl.match(r) {
			return rl.build(r), rl.name
		}
	}
	// unreachable: the last rule matches everything
	return failure(r, MsgAPIError, DetailUnknownError), "api_error"
}

func statusIs(code int) func(r *response) bool {
	return func(r *response) bool { return r.status == code }
}

func failure(r *response, message, detail string) Outcome {
	return Outcome{
		Success:    false,
		Message:    message,
		StatusCode: r.status,
		Response:   r.body,
		Error:      detail,
	}
}

// firstErrorDetail returns errors[0].detail from an AbuseIPDB error body
func firstErrorDetail(body map[string]any, fallback string) string {
	list, ok := body["errors"].([]any)
	if !ok || len(list) == 0 {
		return fallback
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return fallback
	}
	if detail, ok := first["detail"].(string); ok && detail != "" {
		return detail
	}
	return fallback
}
