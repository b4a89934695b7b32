package actor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(name string) *System {
	return NewSystemWithConfig(name, &SystemConfig{
		ShutdownTimeout: time.Second,
		Logger:          discardLogger(),
	})
}

func TestNewSystem(t *testing.T) {
	sys := newTestSystem("test")
	require.NotNil(t, sys)
	assert.Equal(t, "test", sys.Name())
	assert.True(t, sys.IsRunning())

	require.NoError(t, sys.Shutdown())
	assert.False(t, sys.IsRunning())
	assert.ErrorIs(t, sys.Context().Err(), context.Canceled)
}

func TestSystem_GoAfterShutdown(t *testing.T) {
	sys := newTestSystem("test")
	require.NoError(t, sys.Shutdown())

	err := sys.Go("late", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrSystemStopped)
}

func TestSystem_CollectsErrors(t *testing.T) {
	sys := newTestSystem("test")
	boom := errors.New("boom")

	require.NoError(t, sys.Go("ok", func(context.Context) error { return nil }))
	require.NoError(t, sys.Go("fails", func(context.Context) error { return boom }))
	require.NoError(t, sys.Go("panics", func(context.Context) error { panic("kaboom") }))
	require.NoError(t, sys.Go("cancelled", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	require.NoError(t, sys.Shutdown())

	err := sys.Err()
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "task panics panicked: kaboom")
	assert.NotContains(t, err.Error(), "cancelled")

	stats := sys.Stats()
	assert.EqualValues(t, 4, stats.TotalTasks)
	assert.EqualValues(t, 0, stats.RunningTasks)
	assert.EqualValues(t, 2, stats.FailedTasks)
}

func TestSystem_PanicHandler(t *testing.T) {
	var handled atomic.Value
	sys := NewSystemWithConfig("test", &SystemConfig{
		Logger: discardLogger(),
		PanicHandler: func(task string, err any) {
			handled.Store(task)
		},
	})

	require.NoError(t, sys.Go("worker", func(context.Context) error { panic("x") }))
	sys.Wait()

	assert.Equal(t, "worker", handled.Load())
	require.NoError(t, sys.Shutdown())
}

func TestSystem_ShutdownTimeout(t *testing.T) {
	sys := newTestSystem("test")
	release := make(chan struct{})

	require.NoError(t, sys.Go("stubborn", func(context.Context) error {
		<-release
		return nil
	}))

	err := sys.ShutdownWithTimeout(10 * time.Millisecond)
	assert.ErrorContains(t, err, "timeout")
	assert.Equal(t, 1, sys.Count())

	close(release)
	sys.Wait()
	assert.Equal(t, 0, sys.Count())
}

func TestStart_ShutdownDrainsWorker(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem("accounts")
	w, c := newAccounts(accountConfig{})
	defer c.Close()

	require.NoError(t, Start(sys, w, &auditLog{}))

	id, err := c.Create(ctx, accountCreate{Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, 1, sys.Count())

	require.NoError(t, sys.Shutdown())
	assert.Equal(t, StateStopped, w.State())
	assert.NoError(t, sys.Err())

	_, err = c.Create(ctx, accountCreate{Owner: "bob"})
	assert.ErrorIs(t, err, ErrActorClosed)
}

func TestStart_WaitAfterClientsClosed(t *testing.T) {
	sys := newTestSystem("accounts")
	w, c := newAccounts(accountConfig{})

	require.NoError(t, Start(sys, w, &auditLog{}))
	c.Close()

	sys.Wait()
	assert.Equal(t, StateStopped, w.State())
	assert.True(t, sys.IsRunning())
	require.NoError(t, sys.Shutdown())
}
