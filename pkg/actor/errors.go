package actor

import (
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════
// 框架错误
// ═══════════════════════════════════════════════════════════════════════════

var (
	// ErrActorClosed 邮箱已关闭，请求未被接收
	ErrActorClosed = errors.New("actor closed")

	// ErrActorDropped 回复槽在写入结果之前被丢弃
	ErrActorDropped = errors.New("actor dropped response channel")

	// ErrNotFound 实体不存在，可用 errors.Is 判断
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyStarted Worker 已经运行过
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrUnexpectedCall Mock 收到未预期或类型不匹配的请求
	ErrUnexpectedCall = errors.New("unexpected call")
)

// NotFoundError 查找的 ID 不在存储中
type NotFoundError struct {
	ID string
}

// Error 实现 error 接口
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item not found: %s", e.ID)
}

// Is 使 errors.Is(err, ErrNotFound) 成立
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// EntityError 包装生命周期钩子或动作处理返回的错误
//
// 框架不检查 Err 的内容，只负责透传；调用方可以通过 errors.As 取回领域错误。
type EntityError struct {
	Op  Op
	Err error
}

// Error 实现 error 接口
func (e *EntityError) Error() string {
	return fmt.Sprintf("entity error (%s): %v", e.Op, e.Err)
}

// Unwrap 返回领域错误
func (e *EntityError) Unwrap() error {
	return e.Err
}

func notFound[ID comparable](id ID) error {
	return &NotFoundError{ID: fmt.Sprint(id)}
}

func entityErr(op Op, err error) error {
	return &EntityError{Op: op, Err: err}
}

// IsEntityError 检查错误是否来自实体钩子
func IsEntityError(err error) bool {
	var ee *EntityError
	return errors.As(err, &ee)
}
