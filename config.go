package sqlexec

import "time"

// Default configuration values.
const (
	DefaultPageSize       = 1000
	DefaultFileWorkers    = 1
	DefaultReportInterval = 10000
)

// DefaultRetryPolicy is used by the runner when neither WithRetryPolicy
// nor the RetryPolicyProvider interface supplies one.
var DefaultRetryPolicy = RetryPolicy{Tries: 3, Delay: 2 * time.Second, Backoff: 2}

// PageSizeProvider sets the ambient fetch page size from the connector
// value rather than the runner builder. Statements carrying their own
// PAGINATE SIZE directive ignore this value.
//
// The value can be overridden at runtime via WithPageSize, which takes
// precedence. If neither is set, DefaultPageSize is used.
type PageSizeProvider interface {
	// PageSize returns the number of rows to fetch per batch.
	PageSize() int
}

// RowLimitProvider sets an ambient cap on rows fetched per statement.
// Statements carrying their own ROW LIMIT directive ignore this value.
//
// The value can be overridden at runtime via WithRowLimit, which takes
// precedence. If neither is set, statements without a directive are
// unbounded.
type RowLimitProvider interface {
	// RowLimit returns the maximum rows to fetch for one statement.
	RowLimit() int
}

// FileWorkersProvider sets how many files the directory runner executes
// concurrently. Each worker opens its own connection; statements within
// one file always run sequentially in index order.
//
// The value can be overridden at runtime via WithFileWorkers, which
// takes precedence. If neither is set, DefaultFileWorkers (1) is used.
type FileWorkersProvider interface {
	// FileWorkers returns the number of concurrent file workers.
	FileWorkers() int
}

// RetryPolicyProvider sets the connection-failure retry policy from the
// connector value rather than the runner builder.
//
// The value can be overridden at runtime via WithRetryPolicy, which
// takes precedence. If neither is set, DefaultRetryPolicy is used.
type RetryPolicyProvider interface {
	// RetryPolicy returns the policy for connection-failure recovery.
	RetryPolicy() RetryPolicy
}

// resolvePageSize returns the effective ambient page size.
// Priority: WithPageSize > PageSizeProvider > DefaultPageSize.
func (r *Runner) resolvePageSize() int {
	if r.pageSize != nil {
		return *r.pageSize
	}
	if r.pageSizeIface != nil {
		return r.pageSizeIface.PageSize()
	}
	return DefaultPageSize
}

// resolveRowLimit returns the effective ambient row cap, or -1 for none.
// Priority: WithRowLimit > RowLimitProvider > unbounded.
func (r *Runner) resolveRowLimit() int {
	if r.rowLimit != nil {
		return *r.rowLimit
	}
	if r.rowLimitIface != nil {
		return r.rowLimitIface.RowLimit()
	}
	return -1
}

// resolveFileWorkers returns the effective file worker count.
// Priority: WithFileWorkers > FileWorkersProvider > DefaultFileWorkers.
func (r *Runner) resolveFileWorkers() int {
	if r.fileWorkers != nil {
		return *r.fileWorkers
	}
	if r.fileWorkersIface != nil {
		return r.fileWorkersIface.FileWorkers()
	}
	return DefaultFileWorkers
}

// resolveRetryPolicy returns the effective retry policy.
// Priority: WithRetryPolicy > RetryPolicyProvider > DefaultRetryPolicy.
func (r *Runner) resolveRetryPolicy() RetryPolicy {
	if r.retry != nil {
		return *r.retry
	}
	if r.retryIface != nil {
		return r.retryIface.RetryPolicy()
	}
	return DefaultRetryPolicy
}

// resolveReportInterval returns the effective progress interval.
// Priority: WithReportInterval > ProgressReporter.ReportInterval >
// DefaultReportInterval.
func (r *Runner) resolveReportInterval() int {
	if r.reportInterval != nil {
		return *r.reportInterval
	}
	if r.progress != nil {
		if n := r.progress.ReportInterval(); n >= 1 {
			return n
		}
	}
	return DefaultReportInterval
}
