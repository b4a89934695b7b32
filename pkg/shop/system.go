package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

type (
	// UserWorker 用户 Worker
	UserWorker = actor.Worker[string, *User, UserCreate, UserUpdate, UserAction, bool, struct{}]
	// ProductWorker 商品 Worker
	ProductWorker = actor.Worker[string, *Product, ProductCreate, ProductUpdate, ProductAction, uint32, struct{}]
	// OrderWorker 订单 Worker
	OrderWorker = actor.Worker[string, *Order, OrderCreate, OrderUpdate, OrderAction, OrderStatus, OrderDeps]
)

// Options Worker 公共选项
type Options struct {
	MailboxSize int
	Logger      *slog.Logger
	Metrics     actor.Metrics
}

// NewUsers 创建用户 Worker，ID 形如 user_1
func NewUsers(opts Options) (*UserWorker, UserClient) {
	w, c := actor.New[string, *User, UserCreate, UserUpdate, UserAction, bool, struct{}](
		actor.Config[string, *User, UserCreate]{
			Name:        "user",
			MailboxSize: opts.MailboxSize,
			NextID:      actor.PrefixedIDs("user"),
			Construct:   NewUser,
			Logger:      opts.Logger,
			Metrics:     opts.Metrics,
		})
	return w, UserClient{c}
}

// NewProducts 创建商品 Worker，ID 形如 product_1
func NewProducts(opts Options) (*ProductWorker, ProductClient) {
	w, c := actor.New[string, *Product, ProductCreate, ProductUpdate, ProductAction, uint32, struct{}](
		actor.Config[string, *Product, ProductCreate]{
			Name:        "product",
			MailboxSize: opts.MailboxSize,
			NextID:      actor.PrefixedIDs("product"),
			Construct:   NewProduct,
			Logger:      opts.Logger,
			Metrics:     opts.Metrics,
		})
	return w, ProductClient{c}
}

// NewOrders 创建订单 Worker，ID 为 UUID
func NewOrders(opts Options) (*OrderWorker, OrderClient) {
	w, c := actor.New[string, *Order, OrderCreate, OrderUpdate, OrderAction, OrderStatus, OrderDeps](
		actor.Config[string, *Order, OrderCreate]{
			Name:        "order",
			MailboxSize: opts.MailboxSize,
			NextID:      actor.UUIDs(),
			Construct:   NewOrder,
			Logger:      opts.Logger,
			Metrics:     opts.Metrics,
		})
	return w, OrderClient{c}
}

// ═══════════════════════════════════════════════════════════════════════════
// System 编排
// ═══════════════════════════════════════════════════════════════════════════

// System 组装用户、商品、订单三个 Worker
//
// 订单 Worker 依赖另外两个 Worker 的客户端，这些依赖在 Run 时注入，
// 因此三个 Worker 可以先各自创建，再按依赖顺序启动。
type System struct {
	Users    UserClient
	Products ProductClient
	Orders   OrderClient

	users    *UserWorker
	products *ProductWorker
	orders   *OrderWorker
	deps     OrderDeps

	runtime *actor.System
	logger  *slog.Logger
}

// Option System 选项
type Option func(*Options)

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithMetrics 设置监控实现
func WithMetrics(m actor.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// NewSystem 创建并启动商店系统
func NewSystem(cfg Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	withMailbox := func(size int) Options {
		c := o
		c.MailboxSize = size
		return c
	}

	s := &System{
		runtime: actor.NewSystemWithConfig("shop", &actor.SystemConfig{
			ShutdownTimeout: cfg.ShutdownTimeout,
			Logger:          o.Logger,
		}),
		logger: o.Logger,
	}

	s.users, s.Users = NewUsers(withMailbox(cfg.Mailbox.Users))
	s.products, s.Products = NewProducts(withMailbox(cfg.Mailbox.Products))
	s.orders, s.Orders = NewOrders(withMailbox(cfg.Mailbox.Orders))

	// 订单 Worker 持有独立句柄，关闭顺序由 Shutdown 控制
	s.deps = OrderDeps{
		Users:    s.Users.Clone(),
		Products: s.Products.Clone(),
	}

	if err := errors.Join(
		actor.Start(s.runtime, s.users, struct{}{}),
		actor.Start(s.runtime, s.products, struct{}{}),
		actor.Start(s.runtime, s.orders, s.deps),
	); err != nil {
		return nil, err
	}

	s.logger.Info("shop system started",
		"users_mailbox", cfg.Mailbox.Users,
		"products_mailbox", cfg.Mailbox.Products,
		"orders_mailbox", cfg.Mailbox.Orders)
	return s, nil
}

// Shutdown 按依赖顺序关闭
//
// 先关闭订单客户端并等待订单 Worker 排空（其钩子仍可能调用用户和商品 Worker），
// 再释放用户和商品的全部句柄。ctx 到期后取消所有 Worker，已入队的请求仍会处理完。
func (s *System) Shutdown(ctx context.Context) error {
	s.Orders.Close()
	err := s.await(ctx, s.orders)

	s.deps.Users.Close()
	s.deps.Products.Close()
	s.Users.Close()
	s.Products.Close()

	err = errors.Join(err, s.await(ctx, s.users), s.await(ctx, s.products))
	err = errors.Join(err, s.runtime.Shutdown(), s.runtime.Err())

	if err != nil {
		s.logger.Warn("shop system shutdown incomplete", "error", err)
		return err
	}
	s.logger.Info("shop system stopped")
	return nil
}

// Stats 返回各 Worker 的统计快照
func (s *System) Stats() map[string]*actor.ActorStats {
	return map[string]*actor.ActorStats{
		s.users.Name():    s.users.Stats(),
		s.products.Name(): s.products.Stats(),
		s.orders.Name():   s.orders.Stats(),
	}
}

type stoppable interface {
	Name() string
	Done() <-chan struct{}
}

func (s *System) await(ctx context.Context, w stoppable) error {
	select {
	case <-w.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s worker: %w", w.Name(), ctx.Err())
	}
}
