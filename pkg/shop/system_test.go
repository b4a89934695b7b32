package shop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	sys, err := NewSystem(DefaultConfig(), WithLogger(testOptions().Logger))
	require.NoError(t, err)
	return sys
}

func TestSystem_EndToEnd(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t)

	uid, err := sys.Users.Create(ctx, UserCreate{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "user_1", uid)

	pid, err := sys.Products.Create(ctx, ProductCreate{Name: "Widget", Price: 2.5, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, "product_1", pid)

	left, err := sys.Products.Reserve(ctx, pid, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), left)

	_, err = sys.Products.Reserve(ctx, pid, 100)
	require.ErrorIs(t, err, ErrInsufficientStock)

	stock, err := sys.Products.CheckStock(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), stock)

	// 订单跨 Worker 校验用户并预留库存
	oid, err := sys.Orders.PlaceOrder(ctx, uid, pid, 2)
	require.NoError(t, err)

	order, _, err := sys.Orders.Get(ctx, oid)
	require.NoError(t, err)
	assert.Equal(t, 5.0, order.Total)

	stock, err = sys.Products.CheckStock(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), stock)

	_, err = sys.Orders.PlaceOrder(ctx, "user_404", pid, 1)
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = sys.Orders.Cancel(ctx, oid)
	require.NoError(t, err)
	stock, err = sys.Products.CheckStock(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), stock)

	stats := sys.Stats()
	assert.Equal(t, 1, stats["product"].StoreSize)
	assert.Equal(t, 1, stats["order"].StoreSize)

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sys.Shutdown(ctx))

	_, err = sys.Users.Create(context.Background(), UserCreate{Name: "Late", Email: "late@example.com"})
	assert.ErrorIs(t, err, actor.ErrActorClosed)
}

func TestSystem_ShutdownDrainsPendingOrders(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t)

	uid, err := sys.Users.Create(ctx, UserCreate{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	pid, err := sys.Products.Create(ctx, ProductCreate{Name: "Widget", Price: 1, Quantity: 3})
	require.NoError(t, err)

	// 订单 Worker 仍在使用用户和商品 Worker 时开始关闭
	orders := sys.Orders.Clone()
	results := make(chan error, 3)
	for range 3 {
		go func() {
			_, err := orders.PlaceOrder(ctx, uid, pid, 1)
			results <- err
		}()
	}
	for range 3 {
		require.NoError(t, <-results)
	}
	orders.Close()

	require.NoError(t, sys.Shutdown(ctx))
	assert.Equal(t, actor.StateStopped, sys.orders.State())
	assert.Equal(t, actor.StateStopped, sys.products.State())
}

func TestSystem_ShutdownTimeout(t *testing.T) {
	sys := newTestSystem(t)

	// 未释放的句柄使订单 Worker 无法自然退出
	leaked := sys.Orders.Clone()
	defer leaked.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sys.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 运行时取消后 Worker 依然会退出
	assert.Equal(t, actor.StateStopped, sys.orders.State())
}

func TestNewSystem_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"

	_, err := NewSystem(cfg)
	assert.Error(t, err)
}
