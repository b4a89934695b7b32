package prometheus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	timer := m.RequestDuration("user", actor.OpCreate)
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.RequestProcessed("user", actor.OpCreate, actor.OutcomeOK)
	m.RequestProcessed("user", actor.OpGet, actor.OutcomeNotFound)
	m.HookPanic("user", actor.OpUpdate)
	m.StoreSize("user", 3)
	m.MailboxDepth("user", 7)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["resource_actor_request_duration_seconds"])
	assert.True(t, names["resource_actor_requests_total"])
	assert.True(t, names["resource_actor_hook_panics_total"])
	assert.True(t, names["resource_actor_store_size"])
	assert.True(t, names["resource_actor_mailbox_depth"])

	wm := m.(*workerMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(wm.requestsTotal.WithLabelValues("user", "get", "not_found")))
	assert.Equal(t, 3.0, testutil.ToFloat64(wm.storeSize.WithLabelValues("user")))
	assert.Equal(t, 7.0, testutil.ToFloat64(wm.mailboxDepth.WithLabelValues("user")))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

// ============== 与 Worker 集成 ==============

type note struct {
	actor.Hooks[struct{}]
	Text string
}

func (n *note) Clone() *note {
	c := *n
	return &c
}

func (n *note) OnUpdate(_ context.Context, text string, _ struct{}) error {
	if text == "" {
		return errors.New("empty note")
	}
	n.Text = text
	return nil
}

func (n *note) HandleAction(context.Context, struct{}, struct{}) (int, error) {
	return len(n.Text), nil
}

func TestMetrics_WithWorker(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	w, notes := actor.New[int, *note, string, string, struct{}, int, struct{}](actor.Config[int, *note, string]{
		Name:      "note",
		Construct: func(_ int, text string) (*note, error) { return &note{Text: text}, nil },
		Logger:    slog.New(slog.DiscardHandler),
		Metrics:   NewMetrics(reg),
	})
	go func() { _ = w.Run(ctx, struct{}{}) }()

	id, err := notes.Create(ctx, "hello")
	require.NoError(t, err)
	_, err = notes.Update(ctx, id, "")
	require.Error(t, err)
	_, err = notes.Action(ctx, id, struct{}{})
	require.NoError(t, err)

	notes.Close()
	<-w.Done()

	expected := `
# HELP resource_actor_requests_total Total number of requests processed
# TYPE resource_actor_requests_total counter
resource_actor_requests_total{entity="note",op="action",outcome="ok"} 1
resource_actor_requests_total{entity="note",op="create",outcome="ok"} 1
resource_actor_requests_total{entity="note",op="update",outcome="entity_error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "resource_actor_requests_total"))

	count, err := testutil.GatherAndCount(reg, "resource_actor_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
