package broadcast

import (
	"context"
	"sync"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// DefaultBufferSize is the per-subscriber channel buffer.
const DefaultBufferSize = 16

// Hub is an in-process fan-out of alert events to live subscribers. Sends are
// non-blocking: a subscriber whose buffer is full misses the event rather than
// stalling delivery to everyone else.
//
// Hub serves double duty in the notification pipeline. As a sink it announces
// newly created alerts; as an event publisher it pushes lifecycle updates. Both
// paths feed the same subscriber set.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan model.AlertEvent]struct{}
	bufferSize  int
	closed      bool
}

// NewHub creates a hub with the given per-subscriber buffer size. Sizes below
// one are raised to DefaultBufferSize.
func NewHub(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subscribers: make(map[chan model.AlertEvent]struct{}),
		bufferSize:  bufferSize,
	}
}

// Name identifies the hub in dispatch outcomes.
func (h *Hub) Name() string { return "broadcast" }

// Notify announces a newly created alert to all subscribers.
func (h *Hub) Notify(ctx context.Context, alert *model.Alert) error {
	return h.Publish(ctx, model.AlertEvent{Type: model.AlertEventCreated, Alert: *alert})
}

// Publish delivers an event to every subscriber whose buffer has room.
// It never blocks and never fails; subscribers that cannot keep up drop events.
func (h *Hub) Publish(_ context.Context, event model.AlertEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber and returns its event channel. The
// subscription is removed and the channel closed when ctx is cancelled or the
// hub is closed.
func (h *Hub) Subscribe(ctx context.Context) <-chan model.AlertEvent {
	ch := make(chan model.AlertEvent, h.bufferSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(ch)
	}()

	return ch
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close removes all subscribers and closes their channels. Events published
// after Close are discarded. Close is safe to call more than once.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for ch := range h.subscribers {
		close(ch)
	}
	clear(h.subscribers)
	return nil
}

func (h *Hub) unsubscribe(ch chan model.AlertEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; !ok {
		return
	}
	delete(h.subscribers, ch)
	close(ch)
}
