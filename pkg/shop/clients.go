package shop

import (
	"context"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

// ═══════════════════════════════════════════════════════════════════════════
// 类型化客户端
// ═══════════════════════════════════════════════════════════════════════════

// UserClient 用户 Worker 客户端
type UserClient struct {
	actor.Client[string, *User, UserCreate, UserUpdate, UserAction, bool]
}

// Clone 创建独立句柄
func (c UserClient) Clone() UserClient {
	return UserClient{c.Client.Clone()}
}

// Activate 激活用户
func (c UserClient) Activate(ctx context.Context, id string) (bool, error) {
	return c.Action(ctx, id, ActivateUser)
}

// Deactivate 停用用户
func (c UserClient) Deactivate(ctx context.Context, id string) (bool, error) {
	return c.Action(ctx, id, DeactivateUser)
}

// ProductClient 商品 Worker 客户端
type ProductClient struct {
	actor.Client[string, *Product, ProductCreate, ProductUpdate, ProductAction, uint32]
}

// Clone 创建独立句柄
func (c ProductClient) Clone() ProductClient {
	return ProductClient{c.Client.Clone()}
}

// CheckStock 查询库存
func (c ProductClient) CheckStock(ctx context.Context, id string) (uint32, error) {
	return c.Action(ctx, id, CheckStock())
}

// Reserve 预留库存，返回剩余数量
func (c ProductClient) Reserve(ctx context.Context, id string, n uint32) (uint32, error) {
	return c.Action(ctx, id, ReserveStock(n))
}

// Release 归还库存，返回当前数量
func (c ProductClient) Release(ctx context.Context, id string, n uint32) (uint32, error) {
	return c.Action(ctx, id, ReleaseStock(n))
}

// OrderClient 订单 Worker 客户端
type OrderClient struct {
	actor.Client[string, *Order, OrderCreate, OrderUpdate, OrderAction, OrderStatus]
}

// Clone 创建独立句柄
func (c OrderClient) Clone() OrderClient {
	return OrderClient{c.Client.Clone()}
}

// PlaceOrder 下单，校验用户并预留库存
func (c OrderClient) PlaceOrder(ctx context.Context, userID, productID string, quantity uint32) (string, error) {
	return c.Create(ctx, OrderCreate{UserID: userID, ProductID: productID, Quantity: quantity})
}

// Ship 发货
func (c OrderClient) Ship(ctx context.Context, id string) (OrderStatus, error) {
	return c.Action(ctx, id, ShipOrder)
}

// Cancel 取消订单并归还库存
func (c OrderClient) Cancel(ctx context.Context, id string) (OrderStatus, error) {
	return c.Action(ctx, id, CancelOrder)
}
