package sqlexec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suri14878/sqlexec"
)

// countingConnector tracks opened connections so tests can assert on
// attempt counts and cleanup.
type countingConnector struct {
	conns []*fakeConn
}

func (c *countingConnector) Connect(context.Context) (sqlexec.Conn, error) {
	conn := &fakeConn{}
	c.conns = append(c.conns, conn)
	return conn, nil
}

var quick = sqlexec.RetryPolicy{Tries: 3, Delay: time.Millisecond, Backoff: 1}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	connector := &countingConnector{}

	err := sqlexec.Do(context.Background(), connector, quick, func(ctx context.Context, conn sqlexec.Conn) error {
		return nil
	})

	require.NoError(t, err)
	require.Len(t, connector.conns, 1)
	require.True(t, connector.conns[0].closed)
}

func TestDoRetriesConnectionFailure(t *testing.T) {
	connector := &countingConnector{}
	attempts := 0

	err := sqlexec.Do(context.Background(), connector, quick, func(ctx context.Context, conn sqlexec.Conn) error {
		attempts++
		if attempts < 3 {
			return &sqlexec.ConnectionError{Backend: "fake", Err: errors.New("gone")}
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Len(t, connector.conns, 3)
	for _, conn := range connector.conns {
		require.True(t, conn.closed)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	connector := &countingConnector{}
	lost := &sqlexec.ConnectionError{Backend: "fake", Err: errors.New("gone")}

	err := sqlexec.Do(context.Background(), connector,
		sqlexec.RetryPolicy{Tries: 2, Delay: time.Millisecond, Backoff: 1},
		func(ctx context.Context, conn sqlexec.Conn) error {
			return lost
		})

	var exhausted *sqlexec.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 2, exhausted.Attempts)
	require.ErrorIs(t, err, lost)
	require.Len(t, connector.conns, 2)
}

func TestDoNonRetryableStopsImmediately(t *testing.T) {
	connector := &countingConnector{}
	rejected := errors.New("syntax error")

	err := sqlexec.Do(context.Background(), connector, quick, func(ctx context.Context, conn sqlexec.Conn) error {
		return rejected
	})

	require.ErrorIs(t, err, rejected)
	require.Len(t, connector.conns, 1)
}

func TestDoRetriesConnectFailure(t *testing.T) {
	calls := 0
	connector := sqlexec.ConnectorFunc(func(context.Context) (sqlexec.Conn, error) {
		calls++
		if calls < 2 {
			return nil, &sqlexec.ConnectionError{Backend: "fake", Err: errors.New("refused")}
		}
		return &fakeConn{}, nil
	})

	err := sqlexec.Do(context.Background(), connector, quick, func(ctx context.Context, conn sqlexec.Conn) error {
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestDoValidatesPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy sqlexec.RetryPolicy
	}{
		{"zero tries", sqlexec.RetryPolicy{Tries: 0, Delay: 0, Backoff: 1}},
		{"negative delay", sqlexec.RetryPolicy{Tries: 1, Delay: -time.Second, Backoff: 1}},
		{"backoff below one", sqlexec.RetryPolicy{Tries: 1, Delay: 0, Backoff: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sqlexec.Do(context.Background(), &countingConnector{}, tt.policy,
				func(ctx context.Context, conn sqlexec.Conn) error { return nil })
			require.Error(t, err)
		})
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	connector := &countingConnector{}

	err := sqlexec.Do(ctx, connector,
		sqlexec.RetryPolicy{Tries: 3, Delay: time.Minute, Backoff: 1},
		func(ctx context.Context, conn sqlexec.Conn) error {
			cancel()
			return &sqlexec.ConnectionError{Backend: "fake", Err: errors.New("gone")}
		})

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, connector.conns, 1)
}
