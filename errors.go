package sqlexec

import (
	"errors"
	"fmt"
)

// Sentinel errors for statement lookup and transaction scope misuse.
// Use errors.Is to test for them; lookup failures wrap these with the
// offending index or name.
var (
	// ErrNoSuchIndex is returned by Script.ByIndex for an out-of-range index.
	ErrNoSuchIndex = errors.New("sqlexec: no statement at index")

	// ErrNoSuchName is returned by Script.ByName when no statement carries
	// the requested NAME directive.
	ErrNoSuchName = errors.New("sqlexec: no statement with name")

	// ErrTxNested is returned when a transaction scope is opened on a
	// connection that already has an open scope.
	ErrTxNested = errors.New("sqlexec: transaction scope already open on connection")

	// ErrTxDone is returned when Commit or Rollback is called on a scope
	// that has already been finished.
	ErrTxDone = errors.New("sqlexec: transaction scope already finished")
)

// ParseError reports malformed directive syntax in a SQL file. It is never
// produced for unrecognized SQL content; statement text other than
// directive comments passes through unparsed.
type ParseError struct {
	Line   int    // 1-based line of the offending directive
	Detail string // what was malformed
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sqlexec: parse error at line %d: %s", e.Line, e.Detail)
}

// ConnectionError tags a transient connectivity failure: the connection
// was lost, refused, or is otherwise unusable. It is the only error class
// the retry coordinator re-attempts. Backend adapters wrap driver-level
// transient failures in ConnectionError; everything else surfaces as a
// QueryError.
type ConnectionError struct {
	Backend string // adapter name, e.g. "postgres"
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("sqlexec: %s connection failure: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionFailure reports whether err is classified as a transient
// connection failure anywhere in its chain.
func IsConnectionFailure(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// QueryError reports that the backend rejected or aborted a statement.
// It is not retryable by itself, but may wrap a ConnectionError when the
// failure happened mid-fetch because the connection dropped; retry
// classification looks through the wrapping.
type QueryError struct {
	Query string // statement text as sent to the backend
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sqlexec: query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// MappingError reports a field-count mismatch between a batch and the
// field order given to MapBatches. It aborts mapping for that batch;
// batches yielded before it remain valid.
type MappingError struct {
	Want int // len(fieldOrder)
	Got  int // row width of the batch
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("sqlexec: field order has %d fields but rows have %d columns", e.Want, e.Got)
}

// RetryExhaustedError wraps the last connection failure after the retry
// coordinator has used up every attempt.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("sqlexec: giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }
