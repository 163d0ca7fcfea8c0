// Package postgres is the PostgreSQL backend adapter, speaking the pgx
// protocol directly.
package postgres

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/suri14878/sqlexec"
	"github.com/suri14878/sqlexec/envconf"
)

// Connector opens PostgreSQL connections from envconf parameters.
type Connector struct {
	params envconf.Params
}

// NewConnector builds a connector from connection parameters.
func NewConnector(params envconf.Params) *Connector {
	return &Connector{params: params}
}

// Connect opens a single connection. Failures are connection-class by
// definition and come back wrapped for the retry coordinator.
func (c *Connector) Connect(ctx context.Context) (sqlexec.Conn, error) {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.params.User, c.params.Password),
		Host:   net.JoinHostPort(c.params.Host, strconv.Itoa(c.params.Port)),
		Path:   "/" + c.params.DBName,
	}
	pg, err := pgx.Connect(ctx, u.String())
	if err != nil {
		return nil, &sqlexec.ConnectionError{Backend: "postgres", Err: err}
	}
	return &conn{pg: pg}, nil
}

type conn struct {
	pg *pgx.Conn
	tx pgx.Tx
}

// isConnErr classifies driver errors that mean the connection itself is
// gone: network failures, errors pgconn marks safe to retry, and server
// errors in SQLSTATE class 08 (connection exception).
func isConnErr(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return false
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	if isConnErr(err) {
		return &sqlexec.ConnectionError{Backend: "postgres", Err: err}
	}
	return err
}

func (c *conn) Execute(ctx context.Context, query string, args ...any) (sqlexec.Cursor, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if c.tx != nil {
		rows, err = c.tx.Query(ctx, query, args...)
	} else {
		rows, err = c.pg.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, wrap(err)
	}
	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return &cursor{rows: rows, cols: cols}, nil
}

func (c *conn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return sqlexec.ErrTxNested
	}
	tx, err := c.pg.Begin(ctx)
	if err != nil {
		return wrap(err)
	}
	c.tx = tx
	return nil
}

func (c *conn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return wrap(tx.Commit(ctx))
}

func (c *conn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	err := tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return wrap(err)
}

func (c *conn) Healthy(ctx context.Context) bool {
	return c.pg.Ping(ctx) == nil
}

func (c *conn) Close(ctx context.Context) error {
	if c.tx != nil {
		c.tx.Rollback(ctx)
		c.tx = nil
	}
	return c.pg.Close(ctx)
}

type cursor struct {
	rows pgx.Rows
	cols []string
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
				return nil, wrap(err)
			}
			break
		}
		vals, err := cur.rows.Values()
		if err != nil {
			return nil, wrap(err)
		}
		out = append(out, sqlexec.Row(vals))
	}
	return out, nil
}

func (cur *cursor) Close(ctx context.Context) error {
	cur.done = true
	cur.rows.Close()
	return wrap(cur.rows.Err())
}
