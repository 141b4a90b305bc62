// Package refresh carries the host's refresh signal to the grid and lets
// grid mutations trigger a dashboard refresh without knowing the host's
// composition model.
package refresh

import (
	"sync"

	"go.uber.org/zap"
)

// Bus is a minimal event bus for refresh signals. Publish never blocks: a
// subscriber that has not drained its pending signal keeps a single one
// queued, which is enough because refresh handling is idempotent.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
	logger *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]chan struct{}),
		logger: log,
	}
}

// Subscribe registers for refresh signals. The returned cancel func must
// be called when the subscriber is done.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
	return ch, cancel
}

// Publish signals every subscriber.
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.logger.Debug("Published refresh signal", zap.Int("subscribers", len(b.subs)))
}
