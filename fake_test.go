package sqlexec_test

import (
	"context"
	"fmt"

	"github.com/suri14878/sqlexec"
)

// fakeCursor serves a fixed result set in pages and records every fetch
// size so tests can assert on paging behavior.
type fakeCursor struct {
	cols       []string
	rows       []sqlexec.Row
	pos        int
	fetchSizes []int
	fetchErr   error // returned by the fetch after errAfter successful ones
	errAfter   int
	closed     bool
}

func (c *fakeCursor) Columns() []string { return c.cols }

func (c *fakeCursor) FetchMany(_ context.Context, n int) ([]sqlexec.Row, error) {
	if c.fetchErr != nil && len(c.fetchSizes) >= c.errAfter {
		return nil, c.fetchErr
	}
	c.fetchSizes = append(c.fetchSizes, n)
	end := c.pos + n
	if end > len(c.rows) {
		end = len(c.rows)
	}
	out := c.rows[c.pos:end]
	c.pos = end
	return out, nil
}

func (c *fakeCursor) Close(context.Context) error {
	c.closed = true
	return nil
}

// fakeConn routes Execute through onExecute (or serves cols/rows when
// unset) and tracks transaction and lifecycle calls.
type fakeConn struct {
	cols      []string
	rows      []sqlexec.Row
	onExecute func(query string) ([]string, []sqlexec.Row, error)

	executed  []string
	cursors   []*fakeCursor
	inTx      bool
	commits   int
	rollbacks int
	beginErr  error
	closed    bool
}

func (c *fakeConn) Execute(_ context.Context, query string, _ ...any) (sqlexec.Cursor, error) {
	c.executed = append(c.executed, query)
	cols, rows := c.cols, c.rows
	if c.onExecute != nil {
		var err error
		cols, rows, err = c.onExecute(query)
		if err != nil {
			return nil, err
		}
	}
	cur := &fakeCursor{cols: cols, rows: rows}
	c.cursors = append(c.cursors, cur)
	return cur, nil
}

func (c *fakeConn) Begin(context.Context) error {
	if c.beginErr != nil {
		return c.beginErr
	}
	if c.inTx {
		return sqlexec.ErrTxNested
	}
	c.inTx = true
	return nil
}

func (c *fakeConn) Commit(context.Context) error {
	c.inTx = false
	c.commits++
	return nil
}

func (c *fakeConn) Rollback(context.Context) error {
	c.inTx = false
	c.rollbacks++
	return nil
}

func (c *fakeConn) Healthy(context.Context) bool { return !c.closed }

func (c *fakeConn) Close(context.Context) error {
	c.closed = true
	return nil
}

// makeRows builds n two-column rows: (1, "row-1"), (2, "row-2"), ...
func makeRows(n int) []sqlexec.Row {
	rows := make([]sqlexec.Row, n)
	for i := range rows {
		rows[i] = sqlexec.Row{i + 1, fmt.Sprintf("row-%d", i+1)}
	}
	return rows
}
