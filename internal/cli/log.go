// Package cli implements the regroup command-line interface.
//
// This package provides commands for building metrical hierarchies, splitting
// spans against them, exploring a hierarchy interactively and serving the
// split API over HTTP. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - hierarchy: Build a hierarchy and print it as a table, JSON, DOT or SVG
//   - split: Split one span into fragments
//   - batch: Split every span of a file concurrently
//   - explore: Step through a hierarchy and split spans interactively
//   - serve: Run the HTTP API
//   - cache: Manage the hierarchy cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Split 120 spans (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports pipeline events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnBuildStart(ctx context.Context, kind string) {
	h.logger.Debug("build start", "source", kind)
}

func (h *logHooks) OnBuildComplete(ctx context.Context, kind string, depth int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "source", kind, "error", err)
		return
	}
	h.logger.Debug("build done", "source", kind, "depth", depth, "duration", duration)
}

func (h *logHooks) OnSplitComplete(ctx context.Context, mode string, fragments int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("split failed", "mode", mode, "error", err)
	}
}

func (h *logHooks) OnBatchComplete(ctx context.Context, batchID string, spans int, duration time.Duration, err error) {
	h.logger.Debug("batch done", "batch", batchID, "spans", spans, "duration", duration, "error", err)
}

func (h *logHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *logHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *logHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

// httpLogHooks logs request starts at debug level. Completed requests are
// logged by the server itself.
type httpLogHooks struct {
	logger *log.Logger
}

func (h *httpLogHooks) OnRequest(ctx context.Context, method, path string) {
	h.logger.Debug("request start", "method", method, "path", path)
}

func (h *httpLogHooks) OnResponse(ctx context.Context, method, path string, status int, duration time.Duration) {}
