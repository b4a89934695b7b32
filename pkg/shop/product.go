package shop

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

// Product 商品实体
type Product struct {
	actor.Hooks[struct{}]

	ID       string
	Name     string
	Price    float64
	Quantity uint32
}

// ProductCreate 创建商品载荷
type ProductCreate struct {
	Name     string
	Price    float64
	Quantity uint32
}

// ProductUpdate 更新商品，nil 字段保持不变
type ProductUpdate struct {
	Price    *float64
	Quantity *uint32
}

// StockOp 库存动作类型
type StockOp int

const (
	// OpCheckStock 查询库存
	OpCheckStock StockOp = iota
	// OpReserveStock 预留库存
	OpReserveStock
	// OpReleaseStock 归还预留的库存
	OpReleaseStock
)

// ProductAction 商品动作，结果为动作执行后的库存数量
type ProductAction struct {
	Op       StockOp
	Quantity uint32
}

// CheckStock 查询库存
func CheckStock() ProductAction { return ProductAction{Op: OpCheckStock} }

// ReserveStock 预留 n 件库存
func ReserveStock(n uint32) ProductAction { return ProductAction{Op: OpReserveStock, Quantity: n} }

// ReleaseStock 归还 n 件库存
func ReleaseStock(n uint32) ProductAction { return ProductAction{Op: OpReleaseStock, Quantity: n} }

// NewProduct 构造商品
func NewProduct(id string, params ProductCreate) (*Product, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if err := validatePrice(params.Price); err != nil {
		return nil, err
	}
	return &Product{ID: id, Name: name, Price: params.Price, Quantity: params.Quantity}, nil
}

func validatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price %v", ErrInvalidProduct, price)
	}
	return nil
}

// Clone 返回商品副本
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// OnUpdate 修改价格和库存
func (p *Product) OnUpdate(_ context.Context, update ProductUpdate, _ struct{}) error {
	if update.Price != nil {
		if err := validatePrice(*update.Price); err != nil {
			return err
		}
		p.Price = *update.Price
	}
	if update.Quantity != nil {
		p.Quantity = *update.Quantity
	}
	return nil
}

// HandleAction 执行库存动作
func (p *Product) HandleAction(_ context.Context, action ProductAction, _ struct{}) (uint32, error) {
	switch action.Op {
	case OpCheckStock:
		return p.Quantity, nil

	case OpReserveStock:
		if action.Quantity == 0 {
			return 0, fmt.Errorf("%w: reserve 0", ErrInvalidQuantity)
		}
		if action.Quantity > p.Quantity {
			return 0, &InsufficientStockError{Requested: action.Quantity, Available: p.Quantity}
		}
		p.Quantity -= action.Quantity
		return p.Quantity, nil

	case OpReleaseStock:
		if action.Quantity > math.MaxUint32-p.Quantity {
			return 0, fmt.Errorf("%w: release %d overflows stock %d", ErrInvalidQuantity, action.Quantity, p.Quantity)
		}
		p.Quantity += action.Quantity
		return p.Quantity, nil

	default:
		return 0, fmt.Errorf("unsupported product action %d", action.Op)
	}
}
