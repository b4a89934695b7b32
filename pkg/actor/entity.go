package actor

import "context"

// Entity 由 Worker 管理的实体必须实现的能力集合
//
// 类型参数：
//   - E: 实体自身类型（通常是指针类型，例如 *Product）
//   - U: 更新载荷
//   - A: 自定义动作
//   - R: 动作结果
//   - X: 注入的依赖（Context），无依赖时使用 struct{}
//
// Worker 总是在 Clone 出的副本上调用钩子，钩子成功后才提交副本，
// 因此钩子失败不会留下部分修改。
type Entity[E, U, A, R, X any] interface {
	// Clone 返回实体的独立副本，用于回复调用方和隔离钩子的修改
	Clone() E

	// OnCreate 构造完成后、写入存储之前调用，失败则放弃创建
	OnCreate(ctx context.Context, deps X) error

	// OnUpdate 原地修改实体
	OnUpdate(ctx context.Context, update U, deps X) error

	// OnDelete 删除之前调用，失败则保留实体
	OnDelete(ctx context.Context, deps X) error

	// HandleAction 执行领域动作
	HandleAction(ctx context.Context, action A, deps X) (R, error)
}

// Constructor 从 ID 和创建载荷构造实体，同步且无副作用
type Constructor[ID comparable, E, C any] func(id ID, params C) (E, error)

// Hooks 提供 OnCreate/OnDelete 的默认空实现，嵌入即可
//
//	type Product struct {
//	    actor.Hooks[struct{}]
//	    ...
//	}
type Hooks[X any] struct{}

// OnCreate 默认不做任何事
func (Hooks[X]) OnCreate(context.Context, X) error { return nil }

// OnDelete 默认不做任何事
func (Hooks[X]) OnDelete(context.Context, X) error { return nil }
