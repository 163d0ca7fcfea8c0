package sqlexec

import "context"

// Action tells the runner what to do after a statement fails.
type Action string

const (
	ActionFail Action = "fail" // Stop the file run and return the error
	ActionSkip Action = "skip" // Skip this statement and continue with the next
)

// ErrorHandler customizes per-statement error handling. Without an
// ErrorHandler, a file run stops on the first statement error.
//
// OnError is consulted only for non-retryable failures (a rejected
// statement, a sink write failure). Connection-class failures always
// abort the file run so the retry coordinator can re-open the connection
// and redo the file; skipping them would leave a dead connection in use.
//
// Example:
//
//	func (c *myConnector) OnError(ctx context.Context, stmt sqlexec.Statement, err error) sqlexec.Action {
//	    slog.Warn("skipping statement", "statement", stmt.LogName(), "error", err)
//	    return sqlexec.ActionSkip
//	}
//
// Skipped errors still increment Stats.Errors.
type ErrorHandler interface {
	// OnError is called when a statement fails with a non-retryable error.
	// Return ActionSkip to continue with the next statement, ActionFail to
	// stop the file run.
	OnError(ctx context.Context, stmt Statement, err error) Action
}

// ProgressReporter receives periodic progress callbacks during a file
// run. OnProgress is invoked whenever the cumulative row count crosses a
// multiple of ReportInterval, and once more after each statement
// completes.
//
// Example:
//
//	func (c *myConnector) ReportInterval() int { return 50000 }
//	func (c *myConnector) OnProgress(ctx context.Context, stats *Stats) {
//	    slog.Info("progress", "stats", stats)
//	}
type ProgressReporter interface {
	// ReportInterval returns the row interval between progress reports.
	ReportInterval() int
	// OnProgress is called with the running totals.
	OnProgress(ctx context.Context, stats *Stats)
}

// Starter is called before a file run begins. The returned context is
// used for the entire run, which makes it the right place to attach
// logger fields, trace spans, or deadlines.
//
// Start is called once per RunFile invocation, before the source file is
// read.
type Starter interface {
	// Start is called before execution begins.
	// The returned context is used for the entire run.
	Start(ctx context.Context) context.Context
}

// Stopper is called after a file run completes, whether it succeeded or
// failed. The err parameter is the same error value RunFile returns;
// errors skipped through an ErrorHandler do not appear in it, though
// they increment stats.Errors.
//
// Stop is called exactly once per RunFile invocation.
type Stopper interface {
	// Stop is called exactly once, after the run finishes.
	Stop(ctx context.Context, stats *Stats, err error)
}
