package interfaces

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrReferenced 记录仍被其他表引用，无法删除
	ErrReferenced = errors.New("record is still referenced")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
	// ErrDuplicatePhone 手机号唯一键冲突，同时满足 errors.Is(err, ErrDuplicate)
	ErrDuplicatePhone = fmt.Errorf("%w: phone_number", ErrDuplicate)
)

// TxManager 在同一个数据库事务中执行 fn，fn 收到的 ctx 携带事务
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
