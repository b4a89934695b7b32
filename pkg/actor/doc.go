// Package actor 提供泛型资源 Actor 运行时
//
// 每个 [Worker] 独占一组同类实体，通过有界邮箱串行处理 CRUD 和自定义动作请求：
// • 实体存储只由 Worker 的处理循环访问（无需锁保护）
// • 请求在邮箱中排队，邮箱满时发送方阻塞
// • 生命周期钩子在循环内执行并被等待，期间不处理其他请求
// • 每个请求携带一次性回复槽 [Reply]
//
// # 核心组件
//
// [Entity] 定义实体必须实现的钩子，[Hooks] 提供 OnCreate/OnDelete 的默认实现。
//
// [New] 创建 Worker 和对应的 [Client]。Worker 通过 [Worker.Run] 启动，
// 此时注入依赖（例如其他 Worker 的 Client）：
//
//	w, products := actor.New[string, *Product, ProductCreate, ProductUpdate, ProductAction, int, struct{}](
//	    actor.Config[string, *Product, ProductCreate]{
//	        NextID:    actor.PrefixedIDs("product"),
//	        Construct: NewProduct,
//	    })
//	go w.Run(ctx, struct{}{})
//	defer products.Close()
//
// [Client] 方法把调用转换为请求消息并等待回复：Create 返回新 ID，Get 返回副本，
// Update 返回更新后的副本，Delete 删除实体，Action 执行领域动作。
//
// [System] 管理一组 Worker 的 goroutine，[Start] 在系统中运行 Worker。
//
// # 错误
//
// [ErrActorClosed] 邮箱已关闭；[ErrActorDropped] Worker 未回复就丢弃了回复槽
// （例如钩子 panic）；[ErrNotFound] 实体不存在；[EntityError] 包装钩子返回的领域错误。
//
// # 提交语义
//
// Update、Delete、Action 的钩子都在实体副本上执行，成功后才写回存储，
// 失败的请求不会留下部分修改。创建失败时已分配的 ID 不会被复用。
//
// # 关闭
//
// 所有 Client 句柄 Close 后邮箱关闭，Worker 处理完已入队的请求后退出。
// 取消 Run 的 ctx 有同样效果。
//
// # 测试
//
// [Mock] 与真实 Worker 共享客户端协议，按 FIFO 顺序应答预先编排的结果；
// [NewInbox] 暴露原始请求流，用于手写应答逻辑。
//
// 完整使用示例请参考 example_test.go 或运行 go doc -all。
package actor
