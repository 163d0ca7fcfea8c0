package sqlexec

import (
	"context"
	"iter"
)

// Batch is one bounded page of rows pulled from a streaming cursor.
// Rows never exceeds the effective page size. Last is true on the final
// batch of the sequence: the backend returned fewer rows than requested,
// or the row-limit cap was reached. A Batch is owned by the iteration
// step that produced it; the engine does not retain it past yielding.
type Batch struct {
	Columns []string
	Rows    []Row
	Index   int
	First   bool
	Last    bool
}

// BatchOptions control one engine run.
type BatchOptions struct {
	// PageSize is the number of rows fetched per step. Values <= 0 fall
	// back to DefaultPageSize.
	PageSize int

	// RowLimit caps the total rows yielded across all batches. nil means
	// unbounded. A reached cap truncates the final batch and ends the
	// sequence even if the backend cursor is not exhausted.
	RowLimit *int
}

// Batches executes one statement and returns a lazy, finite sequence of
// row pages. The statement runs when iteration starts, not when Batches
// is called, and the sequence is not restartable: ranging over it a
// second time re-executes the statement.
//
// The connection is busy for the whole iteration. Abandoning the
// sequence early (break) closes the cursor deterministically before the
// range loop exits. A backend failure mid-fetch ends the sequence with a
// *QueryError; the engine never retries. Wrap the whole operation with
// [Do] for that.
//
//	for batch, err := range sqlexec.Batches(ctx, conn, stmt.Text(), nil, opts) {
//	    if err != nil {
//	        return err
//	    }
//	    write(batch.Columns, batch.Rows)
//	}
func Batches(ctx context.Context, conn Conn, query string, params []any, opts BatchOptions) iter.Seq2[Batch, error] {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return func(yield func(Batch, error) bool) {
		remaining := -1 // rows still allowed; -1 means unbounded
		if opts.RowLimit != nil {
			remaining = *opts.RowLimit
			if remaining < 0 {
				remaining = 0
			}
		}
		if remaining == 0 {
			return
		}

		cur, err := conn.Execute(ctx, query, params...)
		if err != nil {
			yield(Batch{}, wrapQueryErr(query, err))
			return
		}
		defer cur.Close(ctx)

		cols := cur.Columns()

		fetch := func() ([]Row, error) {
			n := pageSize
			if remaining >= 0 && remaining < n {
				n = remaining
			}
			if n == 0 {
				return nil, nil
			}
			rows, ferr := cur.FetchMany(ctx, n)
			if ferr != nil {
				return nil, wrapQueryErr(query, ferr)
			}
			if remaining >= 0 {
				remaining -= len(rows)
			}
			return rows, nil
		}

		page, err := fetch()
		if err != nil {
			yield(Batch{}, err)
			return
		}

		for index := 0; len(page) > 0; index++ {
			// One page of lookahead decides Last without ever yielding an
			// empty trailing batch.
			last := len(page) < pageSize || remaining == 0
			var next []Row
			if !last {
				next, err = fetch()
				if err != nil {
					yield(Batch{}, err)
					return
				}
				last = len(next) == 0
			}

			b := Batch{
				Columns: cols,
				Rows:    page,
				Index:   index,
				First:   index == 0,
				Last:    last,
			}
			if !yield(b, nil) {
				return
			}
			if last {
				return
			}
			page = next
		}
	}
}

// StatementBatches runs one parsed statement, resolving its page size and
// row cap with directive precedence: a PAGINATE SIZE or ROW LIMIT
// directive on the statement always beats the caller's ambient defaults,
// which apply only to statements lacking their own directive. Pass
// defaultRowLimit < 0 for no ambient cap.
func StatementBatches(ctx context.Context, conn Conn, stmt Statement, params []any, defaultPageSize, defaultRowLimit int) iter.Seq2[Batch, error] {
	opts := BatchOptions{PageSize: stmt.EffectivePageSize(defaultPageSize)}
	if limit, ok := stmt.EffectiveRowLimit(defaultRowLimit); ok {
		opts.RowLimit = &limit
	}
	return Batches(ctx, conn, stmt.Text(), params, opts)
}

// wrapQueryErr wraps backend failures as *QueryError unless the error is
// already one (adapters may pre-wrap). Connection-class failures stay
// visible through the wrapping for retry classification.
func wrapQueryErr(query string, err error) error {
	if _, ok := err.(*QueryError); ok {
		return err
	}
	return &QueryError{Query: query, Err: err}
}
