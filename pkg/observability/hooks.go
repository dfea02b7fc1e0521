// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about editing sessions, submissions, and HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Prometheus] is the bundled backend; `slicetopo serve` registers it and
// exposes it on /metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	metrics := observability.NewPrometheus(nil)
//	metrics.Install()
//	defer observability.Reset()
//
// Libraries call hooks to emit events:
//
//	observability.Submission().OnSubmitStart(ctx, nodes, links)
//	// ... POST payload ...
//	observability.Submission().OnSubmitComplete(ctx, status, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from an editing session.
type EditorHooks interface {
	// OnMutation records a graph change. op is a dotted name such as
	// "node.create" or "connection.delete".
	OnMutation(ctx context.Context, op string, nodeCount, connectionCount int)

	// OnLinkStateChange records a link-mode transition.
	OnLinkStateChange(ctx context.Context, from, to string)

	// OnGenerate records a preset generation.
	OnGenerate(ctx context.Context, preset string, nodes, connections int, duration time.Duration, err error)
}

// =============================================================================
// Submission Hooks
// =============================================================================

// SubmissionHooks receives events from validation and Slice Manager
// submission.
type SubmissionHooks interface {
	// OnValidate records a validation pass.
	OnValidate(ctx context.Context, valid bool, problems int)

	// OnSubmitStart records a submission leaving the editor.
	OnSubmitStart(ctx context.Context, nodes, links int)

	// OnSubmitComplete records the outcome. statusCode is 0 when no response
	// was received.
	OnSubmitComplete(ctx context.Context, statusCode int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, int, int)                       {}
func (NoopEditorHooks) OnLinkStateChange(context.Context, string, string)                  {}
func (NoopEditorHooks) OnGenerate(context.Context, string, int, int, time.Duration, error) {}

// NoopSubmissionHooks is a no-op implementation of SubmissionHooks.
type NoopSubmissionHooks struct{}

func (NoopSubmissionHooks) OnValidate(context.Context, bool, int)                      {}
func (NoopSubmissionHooks) OnSubmitStart(context.Context, int, int)                    {}
func (NoopSubmissionHooks) OnSubmitComplete(context.Context, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks     EditorHooks     = NoopEditorHooks{}
	submissionHooks SubmissionHooks = NoopSubmissionHooks{}
	httpHooks       HTTPHooks       = NoopHTTPHooks{}
	hooksMu         sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before any editing.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetSubmissionHooks registers custom submission hooks.
// This should be called once at application startup before any submission.
func SetSubmissionHooks(h SubmissionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		submissionHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Submission returns the registered submission hooks.
func Submission() SubmissionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return submissionHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	submissionHooks = NoopSubmissionHooks{}
	httpHooks = NoopHTTPHooks{}
}
