package actor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stretchr/testify/require"
)

// ═══════════════════════════════════════════════════════════════════════════
// Mock 测试替身
// ═══════════════════════════════════════════════════════════════════════════

// Mock 与真实 Worker 共享客户端协议的可编排测试替身
//
// 预期按 FIFO 顺序消费，每个请求消费一条。请求类型与队首预期不符、
// 或者队列为空时，测试通过 t.Errorf 失败，请求收到 ErrUnexpectedCall，
// 绝不会返回错误的数据。
//
//	m := actor.NewMock[string, *User, UserCreate, UserUpdate, UserAction, bool](t)
//	m.ExpectGet("user_1").ReturnOK(&User{ID: "user_1"})
//	deps := OrderDeps{Users: m.Client()}
//	...
//	m.Verify()
type Mock[ID comparable, E, C, U, A, R any] struct {
	t         require.TestingT
	strictIDs bool

	mu    sync.Mutex
	queue []*expectation[ID, E, R]

	client Client[ID, E, C, U, A, R]
	inbox  *Inbox
	done   chan struct{}
	once   sync.Once
}

// MockOption Mock 配置选项
type MockOption func(*mockOptions)

type mockOptions struct {
	strictIDs  bool
	bufferSize int
}

// MockStrictIDs 要求请求中的 ID 与预期登记的 ID 一致
func MockStrictIDs() MockOption {
	return func(o *mockOptions) { o.strictIDs = true }
}

// MockBuffer 设置 Mock 邮箱容量
func MockBuffer(size int) MockOption {
	return func(o *mockOptions) { o.bufferSize = size }
}

type expectation[ID comparable, E, R any] struct {
	op      Op
	id      ID
	entity  E
	result  R
	missing bool
	err     error
}

func (e *expectation[ID, E, R]) String() string {
	if e.op == OpCreate {
		return e.op.String()
	}
	return fmt.Sprintf("%s(%v)", e.op, e.id)
}

// NewMock 创建 Mock 并启动后台应答 goroutine
//
// t 实现 Cleanup 时（*testing.T），测试结束自动调用 Close。
func NewMock[ID comparable, E, C, U, A, R any](t require.TestingT, opts ...MockOption) *Mock[ID, E, C, U, A, R] {
	o := mockOptions{bufferSize: DefaultMailboxSize}
	for _, opt := range opts {
		opt(&o)
	}

	client, inbox := NewInbox[ID, E, C, U, A, R](o.bufferSize)
	m := &Mock[ID, E, C, U, A, R]{
		t:         t,
		strictIDs: o.strictIDs,
		client:    client,
		inbox:     inbox,
		done:      make(chan struct{}),
	}

	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(m.Close)
	}

	go m.serve()
	return m
}

// Client 返回一个新的客户端句柄
func (m *Mock[ID, E, C, U, A, R]) Client() Client[ID, E, C, U, A, R] {
	return m.client.Clone()
}

// Remaining 返回尚未消费的预期数量
func (m *Mock[ID, E, C, U, A, R]) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Verify 断言所有预期都已被消费
func (m *Mock[ID, E, C, U, A, R]) Verify() {
	if h, ok := m.t.(interface{ Helper() }); ok {
		h.Helper()
	}

	m.mu.Lock()
	pending := make([]string, 0, len(m.queue))
	for _, e := range m.queue {
		pending = append(pending, e.String())
	}
	m.mu.Unlock()

	if len(pending) > 0 {
		m.t.Errorf("mock: %d expectation(s) not consumed: %s", len(pending), strings.Join(pending, ", "))
		m.t.FailNow()
	}
}

// Close 关闭邮箱并等待应答 goroutine 退出，幂等
//
// 之后所有客户端句柄的请求都返回 ErrActorClosed。
func (m *Mock[ID, E, C, U, A, R]) Close() {
	m.once.Do(func() {
		m.client.Close()
		m.inbox.mb.close()
	})
	<-m.done
}

// ExpectCreate 登记一次 Create 请求
func (m *Mock[ID, E, C, U, A, R]) ExpectCreate() *CreateCall[ID, E, R] {
	return &CreateCall[ID, E, R]{call[ID, E, R]{mu: &m.mu, exp: m.push(OpCreate, *new(ID))}}
}

// ExpectGet 登记一次 Get 请求
func (m *Mock[ID, E, C, U, A, R]) ExpectGet(id ID) *GetCall[ID, E, R] {
	return &GetCall[ID, E, R]{call[ID, E, R]{mu: &m.mu, exp: m.push(OpGet, id)}}
}

// ExpectUpdate 登记一次 Update 请求
func (m *Mock[ID, E, C, U, A, R]) ExpectUpdate(id ID) *UpdateCall[ID, E, R] {
	return &UpdateCall[ID, E, R]{call[ID, E, R]{mu: &m.mu, exp: m.push(OpUpdate, id)}}
}

// ExpectDelete 登记一次 Delete 请求
func (m *Mock[ID, E, C, U, A, R]) ExpectDelete(id ID) *DeleteCall[ID, E, R] {
	return &DeleteCall[ID, E, R]{call[ID, E, R]{mu: &m.mu, exp: m.push(OpDelete, id)}}
}

// ExpectAction 登记一次 Action 请求
func (m *Mock[ID, E, C, U, A, R]) ExpectAction(id ID) *ActionCall[ID, E, R] {
	return &ActionCall[ID, E, R]{call[ID, E, R]{mu: &m.mu, exp: m.push(OpAction, id)}}
}

func (m *Mock[ID, E, C, U, A, R]) push(op Op, id ID) *expectation[ID, E, R] {
	e := &expectation[ID, E, R]{op: op, id: id}
	m.mu.Lock()
	m.queue = append(m.queue, e)
	m.mu.Unlock()
	return e
}

// pop 取出与请求匹配的队首预期，不匹配时标记测试失败并返回 nil
func (m *Mock[ID, E, C, U, A, R]) pop(op Op, id ID) *expectation[ID, E, R] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		m.t.Errorf("mock: unexpected %s request: no expectations left", op)
		return nil
	}

	head := m.queue[0]
	m.queue = m.queue[1:]

	if head.op != op {
		m.t.Errorf("mock: expected %s request, got %s", head, op)
		return nil
	}
	if m.strictIDs && op != OpCreate && head.id != id {
		m.t.Errorf("mock: expected %s, got id %v", head, id)
		return nil
	}

	// 在锁内复制，避免与仍在编排的 builder 竞争
	exp := *head
	return &exp
}

func (m *Mock[ID, E, C, U, A, R]) serve() {
	defer close(m.done)
	for {
		msg, err := m.inbox.Next(context.Background())
		if err != nil {
			return
		}
		m.answer(msg)
	}
}

func (m *Mock[ID, E, C, U, A, R]) answer(msg Message) {
	switch req := msg.(type) {
	case *CreateRequest[ID, C]:
		exp := m.pop(OpCreate, *new(ID))
		if exp == nil {
			req.Reply.Fail(ErrUnexpectedCall)
			return
		}
		req.Reply.Respond(exp.id, exp.err)

	case *GetRequest[ID, E]:
		exp := m.pop(OpGet, req.ID)
		switch {
		case exp == nil:
			req.Reply.Fail(ErrUnexpectedCall)
		case exp.err != nil:
			req.Reply.Fail(exp.err)
		case exp.missing:
			req.Reply.Respond(Found[E]{}, nil)
		default:
			req.Reply.Respond(Found[E]{Entity: exp.entity, Ok: true}, nil)
		}

	case *UpdateRequest[ID, E, U]:
		exp := m.pop(OpUpdate, req.ID)
		if exp == nil {
			req.Reply.Fail(ErrUnexpectedCall)
			return
		}
		req.Reply.Respond(exp.entity, exp.err)

	case *DeleteRequest[ID]:
		exp := m.pop(OpDelete, req.ID)
		if exp == nil {
			req.Reply.Fail(ErrUnexpectedCall)
			return
		}
		req.Reply.Respond(struct{}{}, exp.err)

	case *ActionRequest[ID, A, R]:
		exp := m.pop(OpAction, req.ID)
		if exp == nil {
			req.Reply.Fail(ErrUnexpectedCall)
			return
		}
		req.Reply.Respond(exp.result, exp.err)

	default:
		m.t.Errorf("mock: unsupported message %T", msg)
		if d, ok := msg.(dropper); ok {
			d.dropReply()
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 预期编排
// ═══════════════════════════════════════════════════════════════════════════

// 未调用 Return* 的预期以零值成功应答
type call[ID comparable, E, R any] struct {
	mu  *sync.Mutex
	exp *expectation[ID, E, R]
}

func (c call[ID, E, R]) set(fn func(e *expectation[ID, E, R])) {
	c.mu.Lock()
	fn(c.exp)
	c.mu.Unlock()
}

// ReturnErr 以错误应答
func (c call[ID, E, R]) ReturnErr(err error) {
	c.set(func(e *expectation[ID, E, R]) { e.err = err })
}

// CreateCall Create 预期
type CreateCall[ID comparable, E, R any] struct{ call[ID, E, R] }

// ReturnOK 以给定 ID 应答
func (c *CreateCall[ID, E, R]) ReturnOK(id ID) {
	c.set(func(e *expectation[ID, E, R]) { e.id = id })
}

// GetCall Get 预期
type GetCall[ID comparable, E, R any] struct{ call[ID, E, R] }

// ReturnOK 以实体应答
func (c *GetCall[ID, E, R]) ReturnOK(entity E) {
	c.set(func(e *expectation[ID, E, R]) { e.entity = entity })
}

// ReturnMissing 以"不存在"应答
func (c *GetCall[ID, E, R]) ReturnMissing() {
	c.set(func(e *expectation[ID, E, R]) { e.missing = true })
}

// UpdateCall Update 预期
type UpdateCall[ID comparable, E, R any] struct{ call[ID, E, R] }

// ReturnOK 以更新后的实体应答
func (c *UpdateCall[ID, E, R]) ReturnOK(entity E) {
	c.set(func(e *expectation[ID, E, R]) { e.entity = entity })
}

// DeleteCall Delete 预期
type DeleteCall[ID comparable, E, R any] struct{ call[ID, E, R] }

// ReturnOK 以成功应答
func (c *DeleteCall[ID, E, R]) ReturnOK() {}

// ActionCall Action 预期
type ActionCall[ID comparable, E, R any] struct{ call[ID, E, R] }

// ReturnOK 以动作结果应答
func (c *ActionCall[ID, E, R]) ReturnOK(result R) {
	c.set(func(e *expectation[ID, E, R]) { e.result = result })
}
