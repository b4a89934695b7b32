package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultMailboxSize 默认邮箱容量
const DefaultMailboxSize = 100

// mailbox 有界多生产者/单消费者队列
//
// 邮箱满时发送方阻塞（背压）；关闭后新的发送返回 ErrActorClosed，
// 关闭前已入队的消息仍会交付给消费者。
type mailbox struct {
	ch chan Message

	// closing 在 close 开始时关闭，用于唤醒阻塞中的发送方
	closing   chan struct{}
	closeOnce sync.Once

	// mu 保护 ch 的关闭：发送方持读锁，close 持写锁
	mu     sync.RWMutex
	closed bool

	// refs 存活的客户端句柄数量，降为 0 时关闭邮箱
	refs atomic.Int64
}

func newMailbox(size int) *mailbox {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	return &mailbox{
		ch:      make(chan Message, size),
		closing: make(chan struct{}),
	}
}

// send 投递消息，邮箱满时阻塞直到有空间、ctx 取消或邮箱关闭
func (m *mailbox) send(ctx context.Context, msg Message) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrActorClosed
	}

	select {
	case <-m.closing:
		return ErrActorClosed
	default:
	}

	select {
	case m.ch <- msg:
		return nil
	case <-m.closing:
		return ErrActorClosed
	case <-ctx.Done():
		return fmt.Errorf("sending %s: %w", msg.Kind(), ctx.Err())
	}
}

// close 关闭邮箱，幂等
func (m *mailbox) close() {
	m.closeOnce.Do(func() {
		close(m.closing)

		m.mu.Lock()
		m.closed = true
		close(m.ch)
		m.mu.Unlock()
	})
}

// isClosed 邮箱是否已开始关闭
func (m *mailbox) isClosed() bool {
	select {
	case <-m.closing:
		return true
	default:
		return false
	}
}

// len 当前排队的消息数
func (m *mailbox) len() int {
	return len(m.ch)
}

// acquire 增加一个客户端句柄引用
func (m *mailbox) acquire() {
	m.refs.Add(1)
}

// release 释放一个客户端句柄引用，最后一个引用释放时关闭邮箱
func (m *mailbox) release() {
	if m.refs.Add(-1) <= 0 {
		m.close()
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Inbox 原始请求流
// ═══════════════════════════════════════════════════════════════════════════

// Inbox 暴露邮箱的消费端，用于手写响应逻辑的测试
//
//	client, inbox := actor.NewInbox[string, *User, UserCreate, UserUpdate, UserAction, bool](10)
//	go func() { _, _ = client.Create(ctx, UserCreate{Name: "Alice"}) }()
//	msg, _ := inbox.Next(ctx)
//	req := msg.(*actor.CreateRequest[string, UserCreate])
//	req.Reply.Respond("user_1", nil)
type Inbox struct {
	mb *mailbox
}

// NewInbox 创建一个客户端以及对应邮箱的消费端
func NewInbox[ID comparable, E, C, U, A, R any](size int) (Client[ID, E, C, U, A, R], *Inbox) {
	mb := newMailbox(size)
	return newClient[ID, E, C, U, A, R](mb), &Inbox{mb: mb}
}

// Next 取出下一条请求；邮箱关闭且排空后返回 ErrActorClosed
func (i *Inbox) Next(ctx context.Context) (Message, error) {
	select {
	case msg, ok := <-i.mb.ch:
		if !ok {
			return nil, ErrActorClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len 当前排队的请求数
func (i *Inbox) Len() int {
	return i.mb.len()
}
