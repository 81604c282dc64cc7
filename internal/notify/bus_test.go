package notify_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/notify"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := notify.NewBus()

	var got []string
	unsubA := bus.Subscribe(func(n domain.Notification) { got = append(got, "a:"+n.Title) })
	bus.Subscribe(func(n domain.Notification) { got = append(got, "b:"+n.Title) })

	bus.Publish(domain.Notification{Level: domain.LevelSuccess, Title: "Deleted"})
	assert.Equal(t, []string{"a:Deleted", "b:Deleted"}, got)

	unsubA()
	unsubA()
	assert.Equal(t, 1, bus.Len())

	got = nil
	bus.Publish(domain.Notification{Title: "Updated"})
	assert.Equal(t, []string{"b:Updated"}, got)
}

func TestBus_InstancesAreIsolated(t *testing.T) {
	first, second := notify.NewBus(), notify.NewBus()

	calls := 0
	first.Subscribe(func(domain.Notification) { calls++ })
	second.Publish(domain.Notification{Title: "Created"})

	assert.Zero(t, calls)
}

func TestBus_StampsTime(t *testing.T) {
	bus := notify.NewBus()

	var got domain.Notification
	bus.Subscribe(func(n domain.Notification) { got = n })
	bus.Publish(domain.Notification{Title: "Created"})

	assert.False(t, got.Time.IsZero())
}

func TestLogSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	bus := notify.NewBus()
	bus.Subscribe(notify.LogSubscriber(logger))
	bus.Publish(domain.Notification{
		Level:    domain.LevelError,
		Title:    "Delete failed",
		Message:  "item is referenced by an order",
		Resource: domain.KindInventory,
	})

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `msg="Delete failed"`)
	assert.Contains(t, out, "resource=inventory")
}
