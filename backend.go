package sqlexec

import "context"

// Row is one result row in backend column order.
type Row []any

// Connector describes how to establish a backend connection. It is a
// descriptor, not a live connection: the retry coordinator opens a fresh
// connection from it on every attempt, because a dropped connection can
// only be re-opened, never resurrected.
//
// The postgres, oracle and mysql subpackages provide implementations
// configured from envconf parameters.
type Connector interface {
	// Connect opens a new connection. Failures should be wrapped in
	// *ConnectionError so the retry coordinator classifies them as
	// retryable.
	Connect(ctx context.Context) (Conn, error)
}

// ConnectorFunc adapts a plain function to the [Connector] interface.
type ConnectorFunc func(ctx context.Context) (Conn, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Conn, error) { return f(ctx) }

// Conn is a live backend connection. A Conn is single-owner: it must not
// be handed to a second operation while a statement execution or an open
// transaction scope holds it. The library never enforces this with locks;
// it is an ownership discipline (there is no intra-process concurrency in
// the core, and the folder runner gives each worker its own Conn).
type Conn interface {
	// Execute sends a statement and returns a streaming cursor over its
	// result. Parameters are forwarded in the backend's native positional
	// or named convention; this interface does not interpret them.
	// Statement rejections surface as *QueryError, transport loss as
	// *ConnectionError.
	Execute(ctx context.Context, query string, args ...any) (Cursor, error)

	// Begin opens a transaction. Opening a second transaction while one
	// is in progress returns ErrTxNested.
	Begin(ctx context.Context) error

	// Commit commits the open transaction, if any.
	Commit(ctx context.Context) error

	// Rollback aborts the open transaction, if any.
	Rollback(ctx context.Context) error

	// Healthy reports whether the connection is still usable. Adapters
	// implement it with a cheap liveness probe.
	Healthy(ctx context.Context) bool

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Cursor is a server-side iteration state over one statement's result.
// Rows are pulled in bounded pages so arbitrarily large result sets never
// materialize in client memory. While a Cursor is open it keeps its Conn
// busy; close it before running the next statement.
type Cursor interface {
	// Columns returns the result column names in order. Empty for
	// statements that produce no result set.
	Columns() []string

	// FetchMany returns up to n rows. Fewer than n rows, or zero rows,
	// means the result is exhausted.
	FetchMany(ctx context.Context, n int) ([]Row, error)

	// Close releases the cursor's backend resources. Safe to call more
	// than once.
	Close(ctx context.Context) error
}
