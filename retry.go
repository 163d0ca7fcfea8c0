package sqlexec

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy governs connection-failure recovery: how many total
// attempts to make and how long to wait between them. The wait before
// attempt n+1 is Delay * Backoff^(n-1), so with Delay=1s and Backoff=2
// the waits are 1s, 2s, 4s, ...
type RetryPolicy struct {
	Tries   int           // total attempts, including the first; >= 1
	Delay   time.Duration // wait before the second attempt; >= 0
	Backoff float64       // delay multiplier per subsequent attempt; >= 1
}

// Validate reports whether the policy's fields are in range.
func (p RetryPolicy) Validate() error {
	if p.Tries < 1 {
		return fmt.Errorf("sqlexec: retry tries must be >= 1, got %d", p.Tries)
	}
	if p.Delay < 0 {
		return fmt.Errorf("sqlexec: retry delay must be >= 0, got %v", p.Delay)
	}
	if p.Backoff < 1 {
		return fmt.Errorf("sqlexec: retry backoff must be >= 1, got %v", p.Backoff)
	}
	return nil
}

// Do runs op with connection-failure recovery. Each attempt opens a
// fresh connection from the connector (a lost connection cannot be
// resurrected, only re-opened), calls op with it, and closes it when op
// returns.
//
// Only errors classified as connection failures (see
// [IsConnectionFailure]) trigger a retry; anything else, such as a SQL
// syntax or constraint violation, propagates immediately. When every
// attempt fails with a connection failure, the last one is returned
// wrapped in *RetryExhaustedError.
//
// op must be safe to run repeatedly from a clean connection state: each
// attempt redoes all of its work, including any transaction scopes it
// opens. That is the caller's obligation; the coordinator does not
// enforce it.
func Do(ctx context.Context, connector Connector, policy RetryPolicy, op func(ctx context.Context, conn Conn) error) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	delay := policy.Delay
	var lastErr error

	for attempt := 1; attempt <= policy.Tries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = time.Duration(float64(delay) * policy.Backoff)
		}

		err := attemptOnce(ctx, connector, op)
		if err == nil {
			return nil
		}
		if !IsConnectionFailure(err) {
			return err
		}
		lastErr = err
	}

	return &RetryExhaustedError{Attempts: policy.Tries, Err: lastErr}
}

// attemptOnce opens, runs, and closes one connection.
func attemptOnce(ctx context.Context, connector Connector, op func(ctx context.Context, conn Conn) error) error {
	conn, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return op(ctx, conn)
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
