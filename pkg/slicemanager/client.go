package slicemanager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/slicetopo/pkg/buildinfo"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/observability"
	"github.com/matzehuels/slicetopo/pkg/serialize"
)

// DefaultTimeout bounds a submission when none is configured.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response body is kept.
const maxBody = 64 << 10

// Config holds the connection settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Response is what the Slice Manager answered. Body is kept verbatim; it
// is informational only.
type Response struct {
	StatusCode int
	RequestID  string
	Body       []byte
}

// Client POSTs payloads to one Slice Manager endpoint.
type Client struct {
	url     *url.URL
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *log.Logger
}

// NewClient checks cfg and returns a client. A missing or non-HTTP URL is an
// INVALID_CONFIG error.
func NewClient(cfg Config, logger *log.Logger) (*Client, error) {
	if err := apperrors.ValidateURL(cfg.URL); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "slice manager url")
	}
	u, _ := url.Parse(cfg.URL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		url:     u,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: cfg.Timeout,
		http:    &http.Client{},
		logger:  logger,
	}, nil
}

// URL returns the endpoint.
func (c *Client) URL() string { return c.url.String() }

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Post sends p. The call is bounded by the client timeout in addition to
// ctx.
func (c *Client) Post(ctx context.Context, p serialize.Payload) (*Response, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode payload")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "build request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, c.url.Host, c.url.Path)
	c.logger.Debug("posting topology", "url", c.url.Redacted(), "bytes", len(body), "request_id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, c.url.Host, c.url.Path, err)
		return nil, transportError(err, c.url.Host)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, c.url.Host, c.url.Path, resp.StatusCode, time.Since(start))

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	out := &Response{StatusCode: resp.StatusCode, RequestID: requestID, Body: data}
	if err := checkStatus(resp.StatusCode, data); err != nil {
		return out, err
	}
	return out, nil
}

func checkStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	msg := fmt.Sprintf("slice manager returned HTTP %d %s", code, http.StatusText(code))
	if detail := strings.TrimSpace(string(body)); detail != "" {
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		msg += ": " + detail
	}
	return apperrors.New(apperrors.ErrCodeHTTPStatus, "%s", msg)
}

func transportError(err error, host string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "slice manager at %s did not answer in time", host)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "submission to %s was cancelled", host)
	}
	return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "could not reach slice manager at %s", host)
}
