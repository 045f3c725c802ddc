package common

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "bad conn", err: fmt.Errorf("ping: %w", driver.ErrBadConn), want: true},
		{name: "invalid conn", err: mysql.ErrInvalidConn, want: true},
		{name: "dial refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: stderrors.New("connection refused")}, want: true},
		{name: "syntax error", err: &mysql.MySQLError{Number: 1064, Message: "syntax"}, want: false},
		{name: "plain", err: stderrors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return driver.ErrBadConn
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := stderrors.New("access denied")
	err := WithRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return driver.ErrBadConn
	})
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 2, calls)
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, 3, time.Hour, func(context.Context) error {
		return driver.ErrBadConn
	})
	assert.ErrorIs(t, err, context.Canceled)
}
