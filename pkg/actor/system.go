package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSystemStopped 系统已关闭，不再接受新任务
var ErrSystemStopped = errors.New("actor system is not running")

// System Worker 运行组
// 为每个 Worker 提供独立 goroutine，统一取消和等待
type System struct {
	// 基本信息
	name string

	// 生命周期控制
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning atomic.Bool

	// 任务错误
	errs []error

	// 配置
	config *SystemConfig

	// 统计信息
	stats *SystemStats

	// 日志
	logger *slog.Logger
}

// SystemConfig 系统配置
type SystemConfig struct {
	// ShutdownTimeout Shutdown 等待任务退出的最长时间
	ShutdownTimeout time.Duration
	// PanicHandler 任务 panic 处理函数
	PanicHandler func(task string, err any)
	// Logger 自定义日志器
	Logger *slog.Logger
}

// DefaultSystemConfig 默认系统配置
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		ShutdownTimeout: 30 * time.Second,
		PanicHandler:    nil, // 使用默认处理
		Logger:          nil, // 使用默认 logger
	}
}

// SystemStats 系统统计
type SystemStats struct {
	TotalTasks   int64
	RunningTasks int64
	FailedTasks  int64
	StartTime    time.Time
}

// NewSystem 创建新的运行组
func NewSystem(name string) *System {
	return NewSystemWithConfig(name, DefaultSystemConfig())
}

// NewSystemWithConfig 使用配置创建运行组
func NewSystemWithConfig(name string, config *SystemConfig) *System {
	if config == nil {
		config = DefaultSystemConfig()
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultSystemConfig().ShutdownTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &System{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		config: config,
		logger: logger,
		stats: &SystemStats{
			StartTime: time.Now(),
		},
	}

	s.isRunning.Store(true)
	s.logger.Info("actor system started", "name", name)
	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// Context 返回系统上下文，Shutdown 时取消
func (s *System) Context() context.Context {
	return s.ctx
}

// Go 在独立 goroutine 中运行任务
//
// 任务收到系统上下文；返回的非 context 错误和 panic 会被记录，可通过 Err 取回。
func (s *System) Go(name string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return ErrSystemStopped
	}

	atomic.AddInt64(&s.stats.TotalTasks, 1)
	atomic.AddInt64(&s.stats.RunningTasks, 1)

	s.wg.Add(1)
	go s.run(name, fn)

	s.logger.Debug("spawned task", "name", name)
	return nil
}

// run 任务执行循环
func (s *System) run(name string, fn func(ctx context.Context) error) {
	defer s.wg.Done()
	defer atomic.AddInt64(&s.stats.RunningTasks, -1)

	// panic 恢复
	defer func() {
		if r := recover(); r != nil {
			if s.config.PanicHandler != nil {
				s.config.PanicHandler(name, r)
			} else {
				s.logger.Error("panic in task",
					"task", name,
					"error", r,
					"stack", string(debug.Stack()))
			}
			s.recordErr(fmt.Errorf("task %s panicked: %v", name, r))
		}
	}()

	if err := IgnoreContextError(fn(s.ctx)); err != nil {
		s.logger.Warn("task failed", "task", name, "error", err)
		s.recordErr(fmt.Errorf("task %s: %w", name, err))
		return
	}

	s.logger.Debug("task stopped", "task", name)
}

func (s *System) recordErr(err error) {
	atomic.AddInt64(&s.stats.FailedTasks, 1)
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Wait 等待所有任务自然退出（例如所有客户端已 Close）
func (s *System) Wait() {
	s.wg.Wait()
}

// Shutdown 关闭整个运行组
func (s *System) Shutdown() error {
	return s.ShutdownWithTimeout(s.config.ShutdownTimeout)
}

// ShutdownWithTimeout 带超时的关闭
//
// 取消系统上下文：每个 Worker 停止接收新请求，处理完已入队的请求后退出。
func (s *System) ShutdownWithTimeout(timeout time.Duration) error {
	s.logger.Info("actor system shutting down", "name", s.name)

	s.mu.Lock()
	s.isRunning.Store(false)
	s.mu.Unlock()

	// 取消上下文
	s.cancel()

	// 等待所有 goroutine 完成
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("actor system shutdown complete", "name", s.name)
		return nil
	case <-time.After(timeout):
		s.logger.Warn("actor system shutdown timeout", "name", s.name, "running", s.Count())
		return fmt.Errorf("shutdown %s: timeout after %s", s.name, timeout)
	}
}

// Err 返回所有任务记录的错误
func (s *System) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

// Stats 获取统计信息
func (s *System) Stats() *SystemStats {
	return &SystemStats{
		TotalTasks:   atomic.LoadInt64(&s.stats.TotalTasks),
		RunningTasks: atomic.LoadInt64(&s.stats.RunningTasks),
		FailedTasks:  atomic.LoadInt64(&s.stats.FailedTasks),
		StartTime:    s.stats.StartTime,
	}
}

// Count 返回运行中的任务数量
func (s *System) Count() int {
	return int(atomic.LoadInt64(&s.stats.RunningTasks))
}

// IsRunning 检查系统是否运行中
func (s *System) IsRunning() bool {
	return s.isRunning.Load()
}

// Start 在系统中运行 Worker，deps 注入给所有钩子
func Start[ID comparable, E Entity[E, U, A, R, X], C, U, A, R, X any](s *System, w *Worker[ID, E, C, U, A, R, X], deps X) error {
	return s.Go(w.Name(), func(ctx context.Context) error {
		return w.Run(ctx, deps)
	})
}
