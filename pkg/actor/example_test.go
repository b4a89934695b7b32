package actor_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

// Counter 示例实体
type Counter struct {
	actor.Hooks[struct{}]

	ID    int
	Label string
	Value int
}

// CounterAction 示例动作
type CounterAction struct {
	Add int
}

var errNegative = errors.New("counter would go negative")

func NewCounter(id int, label string) (*Counter, error) {
	return &Counter{ID: id, Label: label}, nil
}

func (c *Counter) Clone() *Counter {
	clone := *c
	return &clone
}

func (c *Counter) OnUpdate(_ context.Context, label string, _ struct{}) error {
	c.Label = label
	return nil
}

func (c *Counter) HandleAction(_ context.Context, a CounterAction, _ struct{}) (int, error) {
	c.Value += a.Add
	if c.Value < 0 {
		return 0, errNegative
	}
	return c.Value, nil
}

func newCounters() (*actor.Worker[int, *Counter, string, string, CounterAction, int, struct{}], actor.Client[int, *Counter, string, string, CounterAction, int]) {
	return actor.New[int, *Counter, string, string, CounterAction, int, struct{}](
		actor.Config[int, *Counter, string]{
			Construct: NewCounter,
			Logger:    slog.New(slog.DiscardHandler),
		})
}

// Example_basic 演示 Worker 的基本使用
func Example_basic() {
	ctx := context.Background()

	w, counters := newCounters()
	go func() { _ = w.Run(ctx, struct{}{}) }()

	id, _ := counters.Create(ctx, "visits")
	fmt.Println("created:", id)

	value, _ := counters.Action(ctx, id, CounterAction{Add: 3})
	fmt.Println("value:", value)

	// 失败的动作不改变状态
	_, err := counters.Action(ctx, id, CounterAction{Add: -10})
	fmt.Println("error:", errors.Is(err, errNegative))

	c, ok, _ := counters.Get(ctx, id)
	fmt.Println("found:", ok, c.Label, c.Value)

	counters.Close()
	<-w.Done()

	_, err = counters.Create(ctx, "late")
	fmt.Println("closed:", errors.Is(err, actor.ErrActorClosed))

	// Output:
	// created: 1
	// value: 3
	// error: true
	// found: true visits 3
	// closed: true
}

// Example_system 演示在 System 中运行 Worker
func Example_system() {
	ctx := context.Background()
	sys := actor.NewSystemWithConfig("example", &actor.SystemConfig{
		Logger: slog.New(slog.DiscardHandler),
	})

	w, counters := newCounters()
	defer counters.Close()
	_ = actor.Start(sys, w, struct{}{})

	id, _ := counters.Create(ctx, "jobs")
	_, _ = counters.Update(ctx, id, "finished-jobs")

	err := counters.Delete(ctx, id)
	fmt.Println("deleted:", err == nil)

	err = counters.Delete(ctx, id)
	fmt.Println("not found:", errors.Is(err, actor.ErrNotFound))

	_ = sys.Shutdown()
	fmt.Println("state:", w.State())

	// Output:
	// deleted: true
	// not found: true
	// state: stopped
}

// Example_mock 演示用 Mock 替代真实 Worker
func Example_mock() {
	ctx := context.Background()

	// *testing.T 同样满足 require.TestingT
	m := actor.NewMock[int, *Counter, string, string, CounterAction, int](printT{})
	defer m.Close()

	m.ExpectGet(1).ReturnOK(&Counter{ID: 1, Label: "scripted", Value: 42})
	m.ExpectAction(1).ReturnErr(errNegative)

	counters := m.Client()
	c, _, _ := counters.Get(ctx, 1)
	fmt.Println(c.Label, c.Value)

	_, err := counters.Action(ctx, 1, CounterAction{Add: -1})
	fmt.Println(err)

	m.Verify()

	// Output:
	// scripted 42
	// counter would go negative
}

type printT struct{}

func (printT) Errorf(format string, args ...any) { fmt.Printf(format+"\n", args...) }
func (printT) FailNow()                          {}
