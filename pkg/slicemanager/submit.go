package slicemanager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/observability"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

// payloadValidator is a singleton validator instance for payload contracts.
var payloadValidator = validator.New()

// State is the submission state.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Result describes a finished Send.
type Result struct {
	Report   validate.Report
	Response *Response
	Duration time.Duration
}

// Submitter validates and sends topologies, one at a time.
type Submitter struct {
	client *Client
	rules  validate.Options
	logger *log.Logger
	state  atomic.Int32
}

// NewSubmitter wraps c. rules configures the pre-submission validation.
func NewSubmitter(c *Client, rules validate.Options, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = log.Default()
	}
	return &Submitter{client: c, rules: rules, logger: logger}
}

// State reports whether a submission is in flight.
func (s *Submitter) State() State { return State(s.state.Load()) }

// Send validates t and posts its payload. It returns a VALIDATION_FAILED
// error without any network call when t is invalid, and
// SUBMISSION_IN_PROGRESS when another Send has not finished. The returned
// Result is non-nil whenever validation ran.
func (s *Submitter) Send(ctx context.Context, t topology.Topology) (*Result, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		return nil, apperrors.New(apperrors.ErrCodeSubmissionInProgress, "a submission is already in progress")
	}
	defer s.state.Store(int32(StateIdle))

	hooks := observability.Submission()
	res := &Result{Report: validate.Validate(t, s.rules)}
	hooks.OnValidate(ctx, res.Report.Valid, len(res.Report.Errors))
	if !res.Report.Valid {
		s.logger.Debug("submission blocked", "problems", len(res.Report.Errors))
		return res, res.Report.Err()
	}

	payload := serialize.NewPayload(t)
	if err := CheckPayload(payload); err != nil {
		return res, err
	}

	hooks.OnSubmitStart(ctx, len(payload.Nodes), len(payload.Links))
	start := time.Now()
	resp, err := s.client.Post(ctx, payload)
	res.Response = resp
	res.Duration = time.Since(start)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	hooks.OnSubmitComplete(ctx, status, res.Duration, err)
	if err != nil {
		s.logger.Debug("submission failed", "error", err, "status", status)
		return res, err
	}
	s.logger.Info("topology submitted",
		"nodes", len(payload.Nodes),
		"links", len(payload.Links),
		"status", status,
		"duration", res.Duration)
	return res, nil
}

// CheckPayload enforces the payload contract tags. Violations are returned
// as a VALIDATION_FAILED error listing every field.
func CheckPayload(p serialize.Payload) error {
	err := payloadValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "check payload")
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("payload %s fails %q", fe.Namespace(), fe.Tag()))
	}
	slices.Sort(problems)
	return &apperrors.ValidationError{Problems: problems}
}
