package actor

import (
	"context"
	"sync"
)

// Client Worker 的轻量客户端句柄
//
// 每个方法把调用转换为一条请求消息，投递到邮箱并等待回复。
// 复制 Client 结构体共享同一个句柄；需要独立生命周期时使用 Clone。
// 所有句柄都 Close 之后邮箱关闭，Worker 排空已接收的请求后退出。
//
// Client 可以被多个 goroutine 并发使用。
type Client[ID comparable, E, C, U, A, R any] struct {
	mb *mailbox
	h  *handle
}

// handle 客户端句柄，保证每个句柄只释放一次引用
type handle struct {
	once sync.Once
	mb   *mailbox
}

func (h *handle) release() {
	h.once.Do(h.mb.release)
}

func newClient[ID comparable, E, C, U, A, R any](mb *mailbox) Client[ID, E, C, U, A, R] {
	mb.acquire()
	return Client[ID, E, C, U, A, R]{mb: mb, h: &handle{mb: mb}}
}

// Clone 创建一个独立的句柄，指向同一个 Worker
func (c Client[ID, E, C, U, A, R]) Clone() Client[ID, E, C, U, A, R] {
	if c.mb == nil {
		return c
	}
	return newClient[ID, E, C, U, A, R](c.mb)
}

// Close 释放当前句柄，幂等
func (c Client[ID, E, C, U, A, R]) Close() {
	if c.h != nil {
		c.h.release()
	}
}

// Closed 报告 Worker 的邮箱是否已关闭
func (c Client[ID, E, C, U, A, R]) Closed() bool {
	return c.mb == nil || c.mb.isClosed()
}

// Create 创建实体并返回新 ID
func (c Client[ID, E, C, U, A, R]) Create(ctx context.Context, params C) (ID, error) {
	req := &CreateRequest[ID, C]{Params: params, Reply: newReply[ID]()}
	if err := c.send(ctx, req); err != nil {
		var zero ID
		return zero, err
	}
	return req.Reply.wait(ctx)
}

// Get 查询实体副本，实体不存在时 ok 为 false
func (c Client[ID, E, C, U, A, R]) Get(ctx context.Context, id ID) (entity E, ok bool, err error) {
	req := &GetRequest[ID, E]{ID: id, Reply: newReply[Found[E]]()}
	if err = c.send(ctx, req); err != nil {
		return entity, false, err
	}
	found, err := req.Reply.wait(ctx)
	if err != nil {
		return entity, false, err
	}
	return found.Entity, found.Ok, nil
}

// Update 更新实体并返回更新后的副本
func (c Client[ID, E, C, U, A, R]) Update(ctx context.Context, id ID, update U) (E, error) {
	req := &UpdateRequest[ID, E, U]{ID: id, Update: update, Reply: newReply[E]()}
	if err := c.send(ctx, req); err != nil {
		var zero E
		return zero, err
	}
	return req.Reply.wait(ctx)
}

// Delete 删除实体
func (c Client[ID, E, C, U, A, R]) Delete(ctx context.Context, id ID) error {
	req := &DeleteRequest[ID]{ID: id, Reply: newReply[struct{}]()}
	if err := c.send(ctx, req); err != nil {
		return err
	}
	_, err := req.Reply.wait(ctx)
	return err
}

// Action 对实体执行自定义动作
func (c Client[ID, E, C, U, A, R]) Action(ctx context.Context, id ID, action A) (R, error) {
	req := &ActionRequest[ID, A, R]{ID: id, Action: action, Reply: newReply[R]()}
	if err := c.send(ctx, req); err != nil {
		var zero R
		return zero, err
	}
	return req.Reply.wait(ctx)
}

func (c Client[ID, E, C, U, A, R]) send(ctx context.Context, msg Message) error {
	if c.mb == nil {
		return ErrActorClosed
	}
	return c.mb.send(ctx, msg)
}
