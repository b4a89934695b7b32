package actor

// Metrics Worker 的监控接口，所有方法必须并发安全
//
// 默认使用 NopMetrics；Prometheus 实现见 pkg/adapters/prometheus。
type Metrics interface {
	// RequestDuration 返回一个计时器，请求处理完成时调用 ObserveDuration
	RequestDuration(entity string, op Op) Timer
	// RequestProcessed 记录一次请求的处理结果
	RequestProcessed(entity string, op Op, outcome Outcome)
	// HookPanic 记录钩子 panic
	HookPanic(entity string, op Op)
	// StoreSize 记录当前存储中的实体数量
	StoreSize(entity string, size int)
	// MailboxDepth 记录当前邮箱排队深度
	MailboxDepth(entity string, depth int)
}

// Timer 计时器
type Timer interface {
	ObserveDuration()
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

type nopMetrics struct{}

func (nopMetrics) RequestDuration(string, Op) Timer     { return nopTimer{} }
func (nopMetrics) RequestProcessed(string, Op, Outcome) {}
func (nopMetrics) HookPanic(string, Op)                 {}
func (nopMetrics) StoreSize(string, int)                {}
func (nopMetrics) MailboxDepth(string, int)             {}

// NopMetrics 返回不做任何记录的 Metrics
func NopMetrics() Metrics { return nopMetrics{} }
