package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/abusectl/abusectl/internal/metrics"
)

const (
	// DefaultEndpoint is the AbuseIPDB v2 report endpoint
	DefaultEndpoint = "https://api.abuseipdb.com/api/v2/report"
	// DefaultTimeout bounds a single submission
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent identifies the client to AbuseIPDB
	DefaultUserAgent = "abusectl"

	// maxResponseBytes caps how much of a reply is read
	maxResponseBytes = 1 << 20
)

// Client submits abuse reports to AbuseIPDB
type Client struct {
	endpoint   string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithEndpoint overrides the report endpoint
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPClient uses a copy of httpClient for requests, keeping its
// transport. The copy's Timeout is set to the client timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			copied := *httpClient
			c.httpClient = &copied
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new report client for apiKey
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		apiKey:     strings.TrimSpace(apiKey),
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = c.timeout
	return c
}

// Endpoint returns the URL reports are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts one report and classifies the result. It never returns an
// error: transport and protocol failures are reported through the Outcome.
// The inputs are expected to be validated already.
func (c *Client) Submit(ctx context.Context, ip string, categoryIDs []int, comment string, confidence int) Outcome {
	form := url.Values{}
	form.Set("ip", ip)
	form.Set("categories", joinIDs(categoryIDs))
	form.Set("comment", comment)
	form.Set("confidence", strconv.Itoa(confidence))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{
			Success: false,
			Message: MsgRequestFailed,
			Error:   fmt.Sprintf("failed to create request: %v", err),
		}
	}

	req.Header.Set("Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("submitting report", "ip", ip, "categories", form.Get("categories"), "confidence", confidence)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome := c.transportFailure(err)
		c.logger.Debug("report request failed", "ip", ip, "message", outcome.Message, "error", err)
		return outcome
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome := c.transportFailure(fmt.Errorf("failed to read response: %w", err))
		outcome.StatusCode = resp.StatusCode
		return outcome
	}

	metrics.ObserveRequestDuration(time.Since(start).Seconds())
	metrics.RecordAPIResponse(resp.StatusCode)

	outcome, rule := Classify(resp.StatusCode, body)
	c.logger.Debug("report response classified", "ip", ip, "status", resp.StatusCode, "rule", rule, "success", outcome.Success)
	return outcome
}

// transportFailure maps an error from the HTTP round trip to an Outcome
func (c *Client) transportFailure(err error) Outcome {
	kind := transportErrorKind(err)
	metrics.RecordTransportError(string(kind))

	switch kind {
	case transportTimeout:
		return Outcome{
			Success: false,
			Message: MsgTimedOut,
			Error:   fmt.Sprintf("The API request exceeded %s seconds", strconv.FormatFloat(c.timeout.Seconds(), 'f', -1, 64)),
		}
	case transportConnection:
		return Outcome{
			Success: false,
			Message: MsgConnectionError,
			Error:   err.Error(),
		}
	default:
		return Outcome{
			Success: false,
			Message: MsgRequestFailed,
			Error:   err.Error(),
		}
	}
}

type transportKind string

const (
	transportTimeout    transportKind = "timeout"
	transportConnection transportKind = "connection"
	transportRequest    transportKind = "request"
)

func transportErrorKind(err error) transportKind {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return transportTimeout
	}
	if errors.Is(err, context.Canceled) {
		return transportRequest
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return transportConnection
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return transportConnection
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return transportConnection
	}
	return transportRequest
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
