package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// Order 订单实体
//
// 创建时校验用户、按商品单价计算总价并预留库存，均通过注入的客户端完成。
type Order struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  uint32
	Total     float64
	Status    OrderStatus
	Note      string
}

// OrderCreate 创建订单载荷
type OrderCreate struct {
	UserID    string
	ProductID string
	Quantity  uint32
}

// OrderUpdate 订单更新，只允许修改收货备注
type OrderUpdate struct {
	Note string
}

// OrderAction 订单动作，结果为动作执行后的状态
type OrderAction int

const (
	// ShipOrder 发货
	ShipOrder OrderAction = iota
	// CancelOrder 取消并归还库存
	CancelOrder
)

func (a OrderAction) String() string {
	switch a {
	case ShipOrder:
		return "ship"
	case CancelOrder:
		return "cancel"
	default:
		return fmt.Sprintf("OrderAction(%d)", int(a))
	}
}

// OrderDeps 订单 Worker 的依赖，在 Run 时注入
type OrderDeps struct {
	Users    UserClient
	Products ProductClient
}

// NewOrder 构造订单
func NewOrder(id string, params OrderCreate) (*Order, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnknownUser)
	}
	if params.ProductID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrUnknownProduct)
	}
	if params.Quantity == 0 {
		return nil, fmt.Errorf("%w: order quantity must be positive", ErrInvalidQuantity)
	}
	return &Order{
		ID:        id,
		UserID:    params.UserID,
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
		Status:    StatusCreated,
	}, nil
}

// Clone 返回订单副本
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

// OnCreate 校验用户，计算总价并预留库存
func (o *Order) OnCreate(ctx context.Context, deps OrderDeps) error {
	user, ok, err := deps.Users.Get(ctx, o.UserID)
	if err != nil {
		return fmt.Errorf("loading user %s: %w", o.UserID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, o.UserID)
	}
	if !user.Active {
		return fmt.Errorf("%w: %s", ErrInactiveUser, o.UserID)
	}

	product, ok, err := deps.Products.Get(ctx, o.ProductID)
	if err != nil {
		return fmt.Errorf("loading product %s: %w", o.ProductID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, o.ProductID)
	}
	o.Total = product.Price * float64(o.Quantity)

	// 最后一步预留库存，之前的失败无需回滚
	if _, err := deps.Products.Reserve(ctx, o.ProductID, o.Quantity); err != nil {
		return fmt.Errorf("reserving %d of %s: %w", o.Quantity, o.ProductID, err)
	}
	return nil
}

// OnUpdate 修改备注，发货后拒绝更新
func (o *Order) OnUpdate(_ context.Context, update OrderUpdate, _ OrderDeps) error {
	if o.Status == StatusShipped {
		return ErrOrderShipped
	}
	o.Note = update.Note
	return nil
}

// OnDelete 已发货的订单不能删除；未发货的订单删除时归还库存
func (o *Order) OnDelete(ctx context.Context, deps OrderDeps) error {
	switch o.Status {
	case StatusShipped:
		return ErrOrderShipped
	case StatusCreated:
		return o.release(ctx, deps)
	}
	return nil
}

// HandleAction 发货或取消
func (o *Order) HandleAction(ctx context.Context, action OrderAction, deps OrderDeps) (OrderStatus, error) {
	switch action {
	case ShipOrder:
		if o.Status == StatusCancelled {
			return o.Status, ErrOrderCancelled
		}
		o.Status = StatusShipped
		return o.Status, nil

	case CancelOrder:
		switch o.Status {
		case StatusShipped:
			return o.Status, ErrOrderShipped
		case StatusCancelled:
			return o.Status, ErrOrderCancelled
		}
		if err := o.release(ctx, deps); err != nil {
			return o.Status, err
		}
		o.Status = StatusCancelled
		return o.Status, nil

	default:
		return o.Status, fmt.Errorf("unsupported order action %s", action)
	}
}

func (o *Order) release(ctx context.Context, deps OrderDeps) error {
	if _, err := deps.Products.Release(ctx, o.ProductID, o.Quantity); err != nil {
		// 商品已被删除时无需归还
		if errors.Is(err, actor.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("releasing %d of %s: %w", o.Quantity, o.ProductID, err)
	}
	return nil
}
