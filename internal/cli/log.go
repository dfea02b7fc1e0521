// Package cli implements the slicetopo command-line interface.
//
// Every command works on a named draft (--draft, default "default") kept in
// the configured draft store, so a topology can be built up across several
// invocations and then validated, exported, rendered or submitted. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
//   - draft: create, list, show and remove drafts
//   - node, link: edit the working draft
//   - generate: add a preset batch (star, tree, ring, bus, mesh, fullmesh)
//   - validate, export, import: check and move topologies as JSON
//   - send: submit the draft to the Slice Manager
//   - render: draw the draft as DOT, SVG, PNG or PDF
//   - edit: interactive terminal editor
//   - serve: HTTP API over the same operations
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Submitted web-lab (1.234s)"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
