// Package dbsql adapts a database/sql driver to the sqlexec backend
// interfaces. It pins one session from the pool so server-side state
// (transactions, temp tables) behaves like a single connection, which is
// what the execution engine assumes.
//
// The oracle and mysql subpackages build on this package; postgres
// speaks pgx natively.
package dbsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/suri14878/sqlexec"
)

// Classifier reports whether a driver error is a transient connection
// failure. Matching errors are wrapped in *sqlexec.ConnectionError so
// the retry coordinator re-attempts them.
type Classifier func(err error) bool

// Open connects through the named database/sql driver and pins a single
// session. backend names the adapter in error messages ("oracle",
// "mysql").
func Open(ctx context.Context, driverName, dsn, backend string, classify Classifier) (sqlexec.Conn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &sqlexec.ConnectionError{Backend: backend, Err: err}
	}
	sc, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, &sqlexec.ConnectionError{Backend: backend, Err: err}
	}
	return &conn{db: db, sc: sc, backend: backend, classify: classify}, nil
}

type conn struct {
	db       *sql.DB
	sc       *sql.Conn
	tx       *sql.Tx
	backend  string
	classify Classifier
}

// wrap tags connection-class driver errors; everything else passes
// through for the engine to wrap as a query failure.
func (c *conn) wrap(err error) error {
	if err == nil {
		return nil
	}
	if c.classify != nil && c.classify(err) {
		return &sqlexec.ConnectionError{Backend: c.backend, Err: err}
	}
	return err
}

func (c *conn) Execute(ctx context.Context, query string, args ...any) (sqlexec.Cursor, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if c.tx != nil {
		rows, err = c.tx.QueryContext(ctx, query, args...)
	} else {
		rows, err = c.sc.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, c.wrap(err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, c.wrap(err)
	}
	return &cursor{rows: rows, cols: cols, conn: c}, nil
}

func (c *conn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return sqlexec.ErrTxNested
	}
	tx, err := c.sc.BeginTx(ctx, nil)
	if err != nil {
		return c.wrap(err)
	}
	c.tx = tx
	return nil
}

func (c *conn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return nil // autocommit session, nothing pending
	}
	tx := c.tx
	c.tx = nil
	return c.wrap(tx.Commit())
}

func (c *conn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return c.wrap(tx.Rollback())
}

func (c *conn) Healthy(ctx context.Context) bool {
	return c.sc.PingContext(ctx) == nil
}

func (c *conn) Close(ctx context.Context) error {
	if c.tx != nil {
		c.tx.Rollback()
		c.tx = nil
	}
	scErr := c.sc.Close()
	dbErr := c.db.Close()
	if scErr != nil {
		return fmt.Errorf("dbsql: close: %w", scErr)
	}
	if dbErr != nil {
		return fmt.Errorf("dbsql: close: %w", dbErr)
	}
	return nil
}

type cursor struct {
	rows *sql.Rows
	cols []string
	conn *conn
	done bool
}

func (cur *cursor) Columns() []string { return cur.cols }

func (cur *cursor) FetchMany(ctx context.Context, n int) ([]sqlexec.Row, error) {
	if cur.done {
		return nil, nil
	}
	out := make([]sqlexec.Row, 0, n)
	for len(out) < n {
		if !cur.rows.Next() {
			cur.done = true
			if err := cur.rows.Err(); err != nil {
				return nil, cur.conn.wrap(err)
			}
			break
		}
		vals := make([]any, len(cur.cols))
		dest := make([]any, len(cur.cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := cur.rows.Scan(dest...); err != nil {
			return nil, cur.conn.wrap(err)
		}
		for i, v := range vals {
			// database/sql hands back []byte for text on several
			// drivers; normalize so sinks render strings, not bytes.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, sqlexec.Row(vals))
	}
	return out, nil
}

func (cur *cursor) Close(ctx context.Context) error {
	if cur.done {
		return nil
	}
	cur.done = true
	return cur.conn.wrap(cur.rows.Close())
}
