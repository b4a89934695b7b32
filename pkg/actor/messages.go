package actor

import (
	"context"
	"fmt"
	"sync"
)

// ═══════════════════════════════════════════════════════════════════════════
// 一次性回复槽
// ═══════════════════════════════════════════════════════════════════════════

// Result 回复槽中传递的结果
type Result[T any] struct {
	Value T
	Err   error
}

// Reply 一次性、单消费者的回复槽
//
// 最多写入一次；未写入就被 Drop 时，等待方得到 ErrActorDropped 而不会永久阻塞。
// 通道容量为 1，写入方永远不会因为调用方放弃等待而阻塞。
type Reply[T any] struct {
	ch   chan Result[T]
	once sync.Once
}

func newReply[T any]() *Reply[T] {
	return &Reply[T]{ch: make(chan Result[T], 1)}
}

// Respond 写入结果并关闭回复槽，返回是否为首次写入
func (r *Reply[T]) Respond(value T, err error) bool {
	sent := false
	r.once.Do(func() {
		TrySend(r.ch, Result[T]{Value: value, Err: err})
		close(r.ch)
		sent = true
	})
	return sent
}

// Fail 以零值和错误回复
func (r *Reply[T]) Fail(err error) bool {
	var zero T
	return r.Respond(zero, err)
}

// Drop 不写入结果直接关闭回复槽
func (r *Reply[T]) Drop() bool {
	dropped := false
	r.once.Do(func() {
		close(r.ch)
		dropped = true
	})
	return dropped
}

// wait 等待结果；回复槽被丢弃时返回 ErrActorDropped
func (r *Reply[T]) wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case res, ok := <-r.ch:
		if !ok {
			return zero, ErrActorDropped
		}
		return res.Value, res.Err
	case <-ctx.Done():
		return zero, fmt.Errorf("waiting for reply: %w", ctx.Err())
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 请求消息
// ═══════════════════════════════════════════════════════════════════════════

// CreateRequest 创建请求
type CreateRequest[ID comparable, C any] struct {
	Params C
	Reply  *Reply[ID]
}

// Kind 实现 Message 接口
func (m *CreateRequest[ID, C]) Kind() string { return "resource.create" }

// Op 实现 Message 接口
func (m *CreateRequest[ID, C]) Op() Op { return OpCreate }

// GetRequest 查询请求
type GetRequest[ID comparable, E any] struct {
	ID    ID
	Reply *Reply[Found[E]]
}

// Kind 实现 Message 接口
func (m *GetRequest[ID, E]) Kind() string { return "resource.get" }

// Op 实现 Message 接口
func (m *GetRequest[ID, E]) Op() Op { return OpGet }

// Found 查询结果，Ok 为 false 表示实体不存在
type Found[E any] struct {
	Entity E
	Ok     bool
}

// UpdateRequest 更新请求
type UpdateRequest[ID comparable, E, U any] struct {
	ID     ID
	Update U
	Reply  *Reply[E]
}

// Kind 实现 Message 接口
func (m *UpdateRequest[ID, E, U]) Kind() string { return "resource.update" }

// Op 实现 Message 接口
func (m *UpdateRequest[ID, E, U]) Op() Op { return OpUpdate }

// DeleteRequest 删除请求
type DeleteRequest[ID comparable] struct {
	ID    ID
	Reply *Reply[struct{}]
}

// Kind 实现 Message 接口
func (m *DeleteRequest[ID]) Kind() string { return "resource.delete" }

// Op 实现 Message 接口
func (m *DeleteRequest[ID]) Op() Op { return OpDelete }

// ActionRequest 自定义动作请求
type ActionRequest[ID comparable, A, R any] struct {
	ID     ID
	Action A
	Reply  *Reply[R]
}

// Kind 实现 Message 接口
func (m *ActionRequest[ID, A, R]) Kind() string { return "resource.action" }

// Op 实现 Message 接口
func (m *ActionRequest[ID, A, R]) Op() Op { return OpAction }

// dropper 所有请求共有的丢弃回复能力，用于 panic 恢复
type dropper interface {
	dropReply()
}

func (m *CreateRequest[ID, C]) dropReply()    { m.Reply.Drop() }
func (m *GetRequest[ID, E]) dropReply()       { m.Reply.Drop() }
func (m *UpdateRequest[ID, E, U]) dropReply() { m.Reply.Drop() }
func (m *DeleteRequest[ID]) dropReply()       { m.Reply.Drop() }
func (m *ActionRequest[ID, A, R]) dropReply() { m.Reply.Drop() }
