package shop

import (
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════
// 领域错误
// ═══════════════════════════════════════════════════════════════════════════

var (
	ErrInvalidUser     = errors.New("invalid user")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownUser     = errors.New("unknown user")
	ErrInactiveUser    = errors.New("inactive user")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrOrderShipped    = errors.New("order already shipped")
	ErrOrderCancelled  = errors.New("order already cancelled")

	// ErrInsufficientStock 可用 errors.Is 匹配任意 *InsufficientStockError
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError 预留数量超过库存
type InsufficientStockError struct {
	Requested uint32
	Available uint32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
