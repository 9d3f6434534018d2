package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/abusectl/abusectl/internal/api"
	"github.com/abusectl/abusectl/internal/metrics"
	"github.com/abusectl/abusectl/internal/validate"
)

// ErrCredential is returned when the API key is missing or malformed. The
// validator error is wrapped alongside it.
var ErrCredential = errors.New("API key unusable")

// MsgDryRun is the outcome message of a validated dry run
const MsgDryRun = "Validation passed (dry-run)"

// Sender performs one report submission
type Sender interface {
	Submit(ctx context.Context, ip string, categoryIDs []int, comment string, confidence int) api.Outcome
}

// SenderFactory builds a Sender for an API key
type SenderFactory func(apiKey string) Sender

// Options configures a Submitter
type Options struct {
	// APIKey is checked once per Submit or SubmitBulk call
	APIKey string
	// NewSender defaults to an api.Client with default settings
	NewSender SenderFactory
	// Limiter paces bulk submissions; nil means no pacing
	Limiter *rate.Limiter
	Logger  *log.Logger
}

// Submitter validates reports and hands them to the report client
type Submitter struct {
	apiKey    string
	newSender SenderFactory
	limiter   *rate.Limiter
	logger    *log.Logger
}

// Result is the terminal state of a single submission. Trace lists every
// state the submission passed through, ending with State.
type Result struct {
	Request Request     `json:"-"`
	State   State       `json:"state"`
	Trace   []State     `json:"trace"`
	Outcome api.Outcome `json:"outcome"`
}

// enter appends next to the trace and makes it the current state
func (r *Result) enter(next State) {
	r.State = next
	r.Trace = append(r.Trace, next)
}

// BulkItem is the outcome for one IP in a bulk run
type BulkItem struct {
	Index   int         `json:"index"`
	IP      string      `json:"ip"`
	Outcome api.Outcome `json:"outcome"`
}

// BulkResult summarizes a bulk run
type BulkResult struct {
	DryRun    bool       `json:"dry_run"`
	Total     int        `json:"total"`
	Validated int        `json:"validated"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Items     []BulkItem `json:"items,omitempty"`
}

// NewSubmitter creates a new Submitter
func NewSubmitter(opts Options) *Submitter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	newSender := opts.NewSender
	if newSender == nil {
		newSender = func(apiKey string) Sender {
			return api.NewClient(apiKey, api.WithLogger(logger))
		}
	}

	return &Submitter{
		apiKey:    opts.APIKey,
		newSender: newSender,
		limiter:   opts.Limiter,
		logger:    logger,
	}
}

// Validate builds a Request from in, recording the failing field in metrics
func (s *Submitter) Validate(in Input) (Request, error) {
	req, err := NewRequest(in)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			metrics.RecordValidationFailure(verr.Field)
		}
		return Request{}, err
	}
	return req, nil
}

// sender checks the API key and builds a Sender for it
func (s *Submitter) sender() (Sender, error) {
	if err := validate.APIKey(s.apiKey); err != nil {
		metrics.RecordValidationFailure("api_key")
		return nil, fmt.Errorf("%w: %w", ErrCredential, err)
	}
	return s.newSender(s.apiKey), nil
}

// Submit validates in and, unless dryRun is set, submits it once. Validation
// and credential problems are returned as errors; everything that happens
// after the request is built is reported through the Result.
func (s *Submitter) Submit(ctx context.Context, in Input, dryRun bool) (*Result, error) {
	result := &Result{State: StateCollecting, Trace: []State{StateCollecting}}

	result.enter(StateValidating)
	req, err := s.Validate(in)
	if err != nil {
		result.enter(StateFailed)
		return result, err
	}
	result.Request = req

	if dryRun {
		metrics.RecordReport(metrics.ResultDryRun)
		s.logger.Debug("dry run validated", "ip", req.IP(), "categories", req.CategoryIDs())
		result.enter(StateDryRunDone)
		result.Outcome = api.Outcome{Success: true, Message: MsgDryRun}
		return result, nil
	}

	result.enter(StateAwaitingCredential)
	sender, err := s.sender()
	if err != nil {
		result.enter(StateFailed)
		return result, err
	}

	result.enter(StateSubmitting)
	result.Outcome = s.send(ctx, sender, req)
	if result.Outcome.Success {
		result.enter(StateSucceeded)
	} else {
		result.enter(StateFailed)
	}
	return result, nil
}

// SubmitBulk validates every input first and then, unless dryRun is set,
// submits them one at a time in order. A failed submission is recorded and
// the loop continues. onItem, if not nil, is called after each submission.
func (s *Submitter) SubmitBulk(ctx context.Context, inputs []Input, dryRun bool, onItem func(BulkItem)) (*BulkResult, error) {
	requests, err := s.ValidateBulk(inputs)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{
		DryRun:    dryRun,
		Total:     len(requests),
		Validated: len(requests),
	}

	if dryRun {
		metrics.RecordBulkBatch(metrics.ResultDryRun)
		for range requests {
			metrics.RecordReport(metrics.ResultDryRun)
		}
		s.logger.Debug("bulk dry run validated", "reports", len(requests))
		return result, nil
	}

	sender, err := s.sender()
	if err != nil {
		return nil, err
	}
	metrics.RecordBulkBatch("submit")

	for i, req := range requests {
		var outcome api.Outcome
		if err := s.wait(ctx); err != nil {
			outcome = api.Outcome{Message: api.MsgRequestFailed, Error: err.Error()}
			metrics.RecordReport(metrics.ResultFailed)
		} else {
			outcome = s.send(ctx, sender, req)
		}

		item := BulkItem{Index: i + 1, IP: req.IP(), Outcome: outcome}
		result.Items = append(result.Items, item)
		if outcome.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}

		if onItem != nil {
			onItem(item)
		}
	}

	s.logger.Info("bulk submission complete", "succeeded", result.Succeeded, "failed", result.Failed, "total", result.Total)
	return result, nil
}

// ValidateBulk checks the batch size and every input, stopping at the first
// invalid one
func (s *Submitter) ValidateBulk(inputs []Input) ([]Request, error) {
	if err := validate.BatchSize(len(inputs)); err != nil {
		metrics.RecordValidationFailure("count")
		return nil, err
	}

	requests := make([]Request, 0, len(inputs))
	for i, in := range inputs {
		req, err := s.Validate(in)
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", i+1, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// wait blocks for the bulk pacing limiter, or reports a done context
func (s *Submitter) wait(ctx context.Context) error {
	if s.limiter != nil {
		return s.limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (s *Submitter) send(ctx context.Context, sender Sender, req Request) api.Outcome {
	outcome := sender.Submit(ctx, req.IP(), req.CategoryIDs(), req.Comment(), req.Confidence())

	if outcome.Success {
		metrics.RecordReport(metrics.ResultSuccess)
		s.logger.Info("report submitted", "ip", req.IP(), "status", outcome.StatusCode)
	} else {
		metrics.RecordReport(metrics.ResultFailed)
		s.logger.Warn("report failed", "ip", req.IP(), "message", outcome.Message, "error", outcome.Error, "status", outcome.StatusCode)
	}
	return outcome
}
