package sqlexec

import (
	"context"
	"errors"
	"fmt"
)

// TxScope is a scoped transaction guard over one connection. Exactly one
// of Commit or Rollback happens per scope; a second finish attempt
// returns ErrTxDone. The scope owns its connection for its lifetime;
// do not hand the connection to another operation until the scope is
// finished.
//
// Prefer [Transact] unless you need the explicit guard.
type TxScope struct {
	conn Conn
	done bool
}

// Begin opens a transaction scope on conn. Opening a scope while another
// is already open on the same connection fails with an error wrapping
// ErrTxNested; scopes do not nest, flatten, or reuse an outer
// transaction.
func Begin(ctx context.Context, conn Conn) (*TxScope, error) {
	if err := conn.Begin(ctx); err != nil {
		return nil, err
	}
	return &TxScope{conn: conn}, nil
}

// Commit commits the transaction and finishes the scope.
func (s *TxScope) Commit(ctx context.Context) error {
	if s.done {
		return ErrTxDone
	}
	s.done = true
	return s.conn.Commit(ctx)
}

// Rollback aborts the transaction and finishes the scope.
func (s *TxScope) Rollback(ctx context.Context) error {
	if s.done {
		return ErrTxDone
	}
	s.done = true
	return s.conn.Rollback(ctx)
}

// Finished reports whether the scope has already committed or rolled
// back.
func (s *TxScope) Finished() bool { return s.done }

// Transact runs fn inside a transaction scope on conn. A nil return from
// fn commits; any error rolls back before the error propagates
// unchanged. A panic inside fn rolls back and re-panics. The scope never
// swallows fn's error: a rollback failure is attached alongside it with
// errors.Join.
func Transact(ctx context.Context, conn Conn, fn func(ctx context.Context) error) (err error) {
	scope, err := Begin(ctx, conn)
	if err != nil {
		return err
	}

	defer func() {
		if scope.Finished() {
			return
		}
		// Reached only when fn panicked: roll back, then let the panic
		// continue.
		_ = scope.Rollback(ctx)
	}()

	if err = fn(ctx); err != nil {
		if rbErr := scope.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	return scope.Commit(ctx)
}
