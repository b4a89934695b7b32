package actor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Config Worker 配置
type Config[ID comparable, E, C any] struct {
	// Name 日志和监控中使用的实体名称，默认取实体类型名
	Name string
	// MailboxSize 邮箱容量，默认 DefaultMailboxSize
	MailboxSize int
	// NextID ID 生成器；为空时整数和字符串 ID 使用从 1 开始的计数器
	NextID func() ID
	// Construct 从创建载荷构造实体（必填）
	Construct Constructor[ID, E, C]
	// Logger 自定义日志器
	Logger *slog.Logger
	// Metrics 监控实现
	Metrics Metrics
}

// Worker 独占实体存储和邮箱的处理单元
//
// Worker 是存储的唯一写入者：所有请求在 Run 的循环中逐条处理，
// 包括等待生命周期钩子返回，因此存储无需任何锁。
//
// 状态机：Created → Running → Stopped。
type Worker[ID comparable, E Entity[E, U, A, R, X], C, U, A, R, X any] struct {
	name      string
	mb        *mailbox
	store     map[ID]E
	nextID    func() ID
	construct Constructor[ID, E, C]

	state atomic.Int32
	done  chan struct{}

	stats   *StatsCollector
	metrics Metrics
	logger  *slog.Logger
}

// New 创建 Worker 及其客户端
//
// 返回的 Worker 处于 Created 状态，需要调用 Run 注入依赖后才开始处理请求。
// 在此之前客户端的请求会在邮箱中排队（邮箱满时阻塞）。
func New[ID comparable, E Entity[E, U, A, R, X], C, U, A, R, X any](cfg Config[ID, E, C]) (*Worker[ID, E, C, U, A, R, X], Client[ID, E, C, U, A, R]) {
	if cfg.Construct == nil {
		panic("actor: Config.Construct is required")
	}

	nextID := cfg.NextID
	if nextID == nil {
		var ok bool
		if nextID, ok = defaultIDs[ID](); !ok {
			var zero ID
			panic(fmt.Sprintf("actor: Config.NextID is required for id type %T", zero))
		}
	}

	name := cfg.Name
	if name == "" {
		name = entityName[E]()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopMetrics()
	}

	mb := newMailbox(cfg.MailboxSize)
	w := &Worker[ID, E, C, U, A, R, X]{
		name:      name,
		mb:        mb,
		store:     make(map[ID]E),
		nextID:    nextID,
		construct: cfg.Construct,
		done:      make(chan struct{}),
		stats:     NewStatsCollector(),
		metrics:   metrics,
		logger:    logger.With("entity", name),
	}

	return w, newClient[ID, E, C, U, A, R](mb)
}

// Name 返回实体名称
func (w *Worker[ID, E, C, U, A, R, X]) Name() string {
	return w.name
}

// State 返回当前生命周期状态
func (w *Worker[ID, E, C, U, A, R, X]) State() State {
	return State(w.state.Load())
}

// Done 在 Run 返回后关闭
func (w *Worker[ID, E, C, U, A, R, X]) Done() <-chan struct{} {
	return w.done
}

// Stats 获取统计快照
func (w *Worker[ID, E, C, U, A, R, X]) Stats() *ActorStats {
	return w.stats.Stats()
}

// Run 运行处理循环，直到邮箱关闭且排空
//
// deps 在整个运行期间传给每个钩子。ctx 同样传给钩子；ctx 取消时邮箱停止接收
// 新请求，已经入队的请求仍会被处理完毕，然后返回 ctx.Err()。
// 所有客户端句柄 Close 后正常退出，返回 nil。
func (w *Worker[ID, E, C, U, A, R, X]) Run(ctx context.Context, deps X) error {
	if !w.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	stop := context.AfterFunc(ctx, w.mb.close)
	defer stop()

	w.logger.Info("worker started", "mailbox", cap(w.mb.ch))

	for msg := range w.mb.ch {
		w.metrics.MailboxDepth(w.name, w.mb.len())
		w.process(ctx, msg, deps)
	}

	w.logger.Info("worker stopped", "size", len(w.store))
	w.store = nil
	w.state.Store(int32(StateStopped))
	close(w.done)

	return ctx.Err()
}

// process 处理单条请求并记录统计
func (w *Worker[ID, E, C, U, A, R, X]) process(ctx context.Context, msg Message, deps X) {
	start := time.Now()
	w.stats.RecordReceived()
	timer := w.metrics.RequestDuration(w.name, msg.Op())

	outcome := w.dispatch(ctx, msg, deps)

	timer.ObserveDuration()
	w.metrics.RequestProcessed(w.name, msg.Op(), outcome)
	w.metrics.StoreSize(w.name, len(w.store))
	w.stats.RecordStoreSize(len(w.store))
	w.stats.RecordHandled(time.Since(start))
}

// dispatch 按请求类型分发，钩子 panic 时丢弃回复并继续运行
func (w *Worker[ID, E, C, U, A, R, X]) dispatch(ctx context.Context, msg Message, deps X) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic in entity hook",
				"message", msg.Kind(),
				"error", r,
				"stack", string(debug.Stack()))
			w.metrics.HookPanic(w.name, msg.Op())
			w.stats.RecordError(fmt.Errorf("panic in %s: %v", msg.Op(), r))
			if d, ok := msg.(dropper); ok {
				d.dropReply()
			}
			outcome = OutcomeDropped
		}
	}()

	switch m := msg.(type) {
	case *CreateRequest[ID, C]:
		return w.handleCreate(ctx, m, deps)
	case *GetRequest[ID, E]:
		return w.handleGet(m)
	case *UpdateRequest[ID, E, U]:
		return w.handleUpdate(ctx, m, deps)
	case *DeleteRequest[ID]:
		return w.handleDelete(ctx, m, deps)
	case *ActionRequest[ID, A, R]:
		return w.handleAction(ctx, m, deps)
	default:
		w.logger.Warn("unsupported message", "message", msg.Kind(), "type", fmt.Sprintf("%T", msg))
		if d, ok := msg.(dropper); ok {
			d.dropReply()
		}
		return OutcomeDropped
	}
}

func (w *Worker[ID, E, C, U, A, R, X]) handleCreate(ctx context.Context, m *CreateRequest[ID, C], deps X) Outcome {
	// ID 在构造之前分配，失败的 ID 不会被复用
	id := w.nextID()
	w.logger.Debug("create", "id", id, "params", m.Params)

	item, err := w.construct(id, m.Params)
	if err != nil {
		w.logger.Warn("create failed", "id", id, "error", err)
		m.Reply.Fail(w.fail(OpCreate, err))
		return OutcomeEntityError
	}

	if err := item.OnCreate(ctx, deps); err != nil {
		w.logger.Warn("on_create failed", "id", id, "error", err)
		m.Reply.Fail(w.fail(OpCreate, err))
		return OutcomeEntityError
	}

	w.store[id] = item
	w.logger.Info("created", "id", id, "size", len(w.store))
	m.Reply.Respond(id, nil)
	return OutcomeOK
}

func (w *Worker[ID, E, C, U, A, R, X]) handleGet(m *GetRequest[ID, E]) Outcome {
	item, ok := w.store[m.ID]
	w.logger.Debug("get", "id", m.ID, "found", ok)
	if !ok {
		m.Reply.Respond(Found[E]{}, nil)
		return OutcomeNotFound
	}
	m.Reply.Respond(Found[E]{Entity: item.Clone(), Ok: true}, nil)
	return OutcomeOK
}

func (w *Worker[ID, E, C, U, A, R, X]) handleUpdate(ctx context.Context, m *UpdateRequest[ID, E, U], deps X) Outcome {
	w.logger.Debug("update", "id", m.ID, "update", m.Update)

	item, ok := w.store[m.ID]
	if !ok {
		m.Reply.Fail(w.missing(m.ID, OpUpdate))
		return OutcomeNotFound
	}

	draft := item.Clone()
	if err := draft.OnUpdate(ctx, m.Update, deps); err != nil {
		w.logger.Warn("update failed", "id", m.ID, "error", err)
		m.Reply.Fail(w.fail(OpUpdate, err))
		return OutcomeEntityError
	}

	w.store[m.ID] = draft
	w.logger.Info("updated", "id", m.ID)
	m.Reply.Respond(draft.Clone(), nil)
	return OutcomeOK
}

func (w *Worker[ID, E, C, U, A, R, X]) handleDelete(ctx context.Context, m *DeleteRequest[ID], deps X) Outcome {
	w.logger.Debug("delete", "id", m.ID)

	item, ok := w.store[m.ID]
	if !ok {
		m.Reply.Fail(w.missing(m.ID, OpDelete))
		return OutcomeNotFound
	}

	if err := item.Clone().OnDelete(ctx, deps); err != nil {
		w.logger.Warn("on_delete failed", "id", m.ID, "error", err)
		m.Reply.Fail(w.fail(OpDelete, err))
		return OutcomeEntityError
	}

	delete(w.store, m.ID)
	w.logger.Info("deleted", "id", m.ID, "size", len(w.store))
	m.Reply.Respond(struct{}{}, nil)
	return OutcomeOK
}

func (w *Worker[ID, E, C, U, A, R, X]) handleAction(ctx context.Context, m *ActionRequest[ID, A, R], deps X) Outcome {
	w.logger.Debug("action", "id", m.ID, "action", m.Action)

	item, ok := w.store[m.ID]
	if !ok {
		m.Reply.Fail(w.missing(m.ID, OpAction))
		return OutcomeNotFound
	}

	// 动作在副本上执行，成功后才提交，失败的动作不改变状态
	draft := item.Clone()
	result, err := draft.HandleAction(ctx, m.Action, deps)
	if err != nil {
		w.logger.Warn("action failed", "id", m.ID, "error", err)
		m.Reply.Fail(w.fail(OpAction, err))
		return OutcomeEntityError
	}

	w.store[m.ID] = draft
	w.logger.Info("action ok", "id", m.ID)
	m.Reply.Respond(result, nil)
	return OutcomeOK
}

// fail 记录并包装钩子返回的错误
func (w *Worker[ID, E, C, U, A, R, X]) fail(op Op, err error) error {
	wrapped := entityErr(op, err)
	w.stats.RecordError(wrapped)
	return wrapped
}

func (w *Worker[ID, E, C, U, A, R, X]) missing(id ID, op Op) error {
	w.logger.Warn("not found", "id", id, "op", op.String())
	err := notFound(id)
	w.stats.RecordError(err)
	return err
}
