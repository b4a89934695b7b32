package actor

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID 生成器
// ═══════════════════════════════════════════════════════════════════════════

// Sequence 返回从 1 开始单调递增的 ID 生成器，convert 把计数值转换为 ID
func Sequence[ID any](convert func(n uint64) ID) func() ID {
	var counter atomic.Uint64
	return func() ID {
		return convert(counter.Add(1))
	}
}

// PrefixedIDs 返回 "<prefix>_<n>" 形式的字符串 ID 生成器，例如 product_7
func PrefixedIDs(prefix string) func() string {
	return Sequence(func(n uint64) string {
		return fmt.Sprintf("%s_%d", prefix, n)
	})
}

// UUIDs 返回随机 UUID 字符串生成器
func UUIDs() func() string {
	return uuid.NewString
}

// defaultIDs 为常见 ID 类型提供从 1 开始的计数器
func defaultIDs[ID comparable]() (func() ID, bool) {
	var zero ID
	switch any(zero).(type) {
	case uint64:
		return Sequence(func(n uint64) ID { return any(n).(ID) }), true
	case uint32:
		return Sequence(func(n uint64) ID { return any(uint32(n)).(ID) }), true
	case uint:
		return Sequence(func(n uint64) ID { return any(uint(n)).(ID) }), true
	case int64:
		return Sequence(func(n uint64) ID { return any(int64(n)).(ID) }), true
	case int:
		return Sequence(func(n uint64) ID { return any(int(n)).(ID) }), true
	case string:
		return Sequence(func(n uint64) ID { return any(strconv.FormatUint(n, 10)).(ID) }), true
	}
	return nil, false
}
