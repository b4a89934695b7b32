package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ZeroValue(t *testing.T) {
	var c accountClient

	assert.True(t, c.Closed())
	_, err := c.Create(context.Background(), accountCreate{Owner: "alice"})
	assert.ErrorIs(t, err, ErrActorClosed)

	// 零值 Clone/Close 不会 panic
	c.Clone().Close()
	c.Close()
}

func TestClient_SendAfterClose(t *testing.T) {
	ctx := context.Background()
	w, c := newAccounts(accountConfig{})
	go func() { _ = w.Run(ctx, &auditLog{}) }()

	c.Close()
	<-w.Done()

	_, err := c.Create(ctx, accountCreate{Owner: "alice"})
	assert.ErrorIs(t, err, ErrActorClosed)
	_, _, err = c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrActorClosed)
	_, err = c.Update(ctx, 1, accountUpdate{Owner: "bob"})
	assert.ErrorIs(t, err, ErrActorClosed)
	assert.ErrorIs(t, c.Delete(ctx, 1), ErrActorClosed)
	_, err = c.Action(ctx, 1, accountAction{})
	assert.ErrorIs(t, err, ErrActorClosed)
}

func TestClient_CloneKeepsWorkerAlive(t *testing.T) {
	ctx := context.Background()
	w, c := newAccounts(accountConfig{})
	go func() { _ = w.Run(ctx, &auditLog{}) }()

	clone := c.Clone()
	c.Close()
	c.Close() // 幂等，不会释放 clone 的引用

	id, err := clone.Create(ctx, accountCreate{Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.False(t, clone.Closed())

	// 复制结构体共享句柄
	copied := clone
	copied.Close()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after last handle closed")
	}
	assert.True(t, clone.Closed())
}

func TestClient_CancelWhileWaiting(t *testing.T) {
	c, inbox := NewInbox[uint64, *account, accountCreate, accountUpdate, accountAction, int](1)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := c.Get(ctx, 7)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 调用方放弃等待后，迟到的回复不会阻塞应答方
	msg, err := inbox.Next(context.Background())
	require.NoError(t, err)
	req, ok := msg.(*GetRequest[uint64, *account])
	require.True(t, ok)
	assert.Equal(t, uint64(7), req.ID)
	assert.True(t, req.Reply.Respond(Found[*account]{}, nil))
}

func TestInbox_HandWrittenResponder(t *testing.T) {
	ctx := context.Background()
	c, inbox := NewInbox[uint64, *account, accountCreate, accountUpdate, accountAction, int](4)

	go func() {
		for {
			msg, err := inbox.Next(ctx)
			if err != nil {
				return
			}
			switch req := msg.(type) {
			case *CreateRequest[uint64, accountCreate]:
				req.Reply.Respond(100, nil)
			case *ActionRequest[uint64, accountAction, int]:
				req.Reply.Respond(req.Action.Deposit*2, nil)
			default:
				req.(dropper).dropReply()
			}
		}
	}()

	id, err := c.Create(ctx, accountCreate{Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), id)

	result, err := c.Action(ctx, id, accountAction{Deposit: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	err = c.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrActorDropped)

	c.Close()
	_, err = inbox.Next(ctx)
	assert.ErrorIs(t, err, ErrActorClosed)
}

func TestReply(t *testing.T) {
	t.Run("respond once", func(t *testing.T) {
		r := newReply[int]()
		assert.True(t, r.Respond(1, nil))
		assert.False(t, r.Respond(2, nil))
		assert.False(t, r.Drop())

		v, err := r.wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("drop", func(t *testing.T) {
		r := newReply[int]()
		assert.True(t, r.Drop())
		assert.False(t, r.Fail(assert.AnError))

		_, err := r.wait(context.Background())
		assert.ErrorIs(t, err, ErrActorDropped)
	})

	t.Run("fail", func(t *testing.T) {
		r := newReply[string]()
		r.Fail(assert.AnError)

		v, err := r.wait(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, v)
	})
}

func TestMailbox_CloseWakesBlockedSender(t *testing.T) {
	mb := newMailbox(1)
	require.NoError(t, mb.send(context.Background(), &DeleteRequest[int]{Reply: newReply[struct{}]()}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- mb.send(context.Background(), &DeleteRequest[int]{Reply: newReply[struct{}]()})
	}()

	time.Sleep(10 * time.Millisecond)
	mb.close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrActorClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked sender was not released")
	}

	// 关闭前入队的消息仍可读取
	msg, ok := <-mb.ch
	require.True(t, ok)
	assert.Equal(t, OpDelete, msg.Op())
}
