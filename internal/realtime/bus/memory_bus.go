package bus

import (
	"context"
	"sync"

	"github.com/yungbote/coursekit-backend/internal/realtime"
)

// memoryBus delivers events to in-process forwarders. It is used when no
// redis is configured and in tests.
type memoryBus struct {
	mu        sync.RWMutex
	listeners []func(ev realtime.Event)
}

func NewMemoryBus() Bus {
	return &memoryBus{}
}

func (b *memoryBus) Publish(ctx context.Context, ev realtime.Event) error {
	b.mu.RLock()
	listeners := append([]func(realtime.Event){}, b.listeners...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error {
	if onEvent == nil {
		return nil
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, onEvent)
	b.mu.Unlock()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.listeners = nil
	b.mu.Unlock()
	return nil
}
