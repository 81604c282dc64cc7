// internal/notify/bus.go
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/ports"
)

// Handler receives published notifications.
type Handler func(domain.Notification)

// Bus is an in-process publish/subscribe notification channel. Each Bus is
// independent, so tests and separate dashboards never share subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
	now    func() time.Time
}

var _ ports.Notifier = (*Bus)(nil)

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]Handler),
		now:  time.Now,
	}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers n to every subscriber in subscription order, synchronously.
func (b *Bus) Publish(n domain.Notification) {
	if n.Time.IsZero() {
		n.Time = b.now()
	}

	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	handlers := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(n)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// LogSubscriber renders notifications through logger at a level matching their severity.
func LogSubscriber(logger *slog.Logger) Handler {
	logger = logger.With(slog.String("component", "notify"))
	return func(n domain.Notification) {
		level := slog.LevelInfo
		switch n.Level {
		case domain.LevelWarning:
			level = slog.LevelWarn
		case domain.LevelError:
			level = slog.LevelError
		}
		logger.Log(context.Background(), level, n.Title,
			slog.String("message", n.Message),
			slog.String("resource", string(n.Resource)),
			slog.String("level", string(n.Level)))
	}
}
