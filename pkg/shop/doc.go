// Package shop 基于 actor 运行时的示例领域：用户、商品、订单
//
// 三类实体各由一个 Worker 管理：
//   - [User] ID 形如 user_1，动作 Activate/Deactivate
//   - [Product] ID 形如 product_1，动作 CheckStock/Reserve/Release
//   - [Order] ID 为 UUID，创建时通过 [OrderDeps] 校验用户并预留库存
//
// [System] 负责组装和按依赖顺序关闭，[Config] 通过 koanf 从 YAML、JSON 或 TOML 加载。
//
//	cfg, _ := shop.LoadConfig("shop.yaml")
//	sys, _ := shop.NewSystem(cfg)
//	defer sys.Shutdown(context.Background())
//
//	uid, _ := sys.Users.Create(ctx, shop.UserCreate{Name: "Alice", Email: "alice@example.com"})
//	pid, _ := sys.Products.Create(ctx, shop.ProductCreate{Name: "Widget", Price: 2.5, Quantity: 10})
//	oid, _ := sys.Orders.PlaceOrder(ctx, uid, pid, 4)
package shop
