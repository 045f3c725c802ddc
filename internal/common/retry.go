package common

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"net"
	"time"

	"coffeeshop-backend/internal/util"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// IsTemporary 判断是否为临时性错误
func IsTemporary(err error) bool {
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var temp interface{ Temporary() bool }
	if stderrors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}

// IsRetryable 连接类错误可重试，SQL 本身的错误不重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return IsTemporary(err) ||
		stderrors.Is(err, sql.ErrConnDone) ||
		stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, mysql.ErrInvalidConn)
}

// WithRetry 通用重试机制，第 i 次失败后等待 i*backoff
func WithRetry(ctx context.Context, maxRetries int, backoff time.Duration, operation func(ctx context.Context) error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = operation(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) || i == maxRetries-1 {
			return err
		}
		util.Logger.Warn("操作失败，准备重试", zap.Int("attempt", i+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return err
}
