package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/cache"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
)

const cartChannel = "cart:events"

// CartEvent tells other open storefront views that a cart changed.
type CartEvent struct {
	Token  string `json:"token"`
	Action string `json:"action"` // updated / cleared
}

// Broadcaster fans cart events out to in-process subscribers and, when
// redis is wired, across processes via pub/sub.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan CartEvent

	cancel context.CancelFunc
}

// New creates an idle broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: map[int]chan CartEvent{}}
}

// Start attaches the redis bridge when the cache is enabled. Without
// redis the broadcaster still serves in-process subscribers.
func (b *Broadcaster) Start(ctx context.Context) {
	if !cache.Enabled() {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	sub := cache.Client().Subscribe(ctx, cache.BuildKey(cartChannel))
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event CartEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Warnw("cart_event_decode_failed", "error", err)
					continue
				}
				b.deliver(event)
			}
		}
	}()
}

// Stop tears down the redis bridge and closes every subscriber channel.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the channel.
func (b *Broadcaster) Subscribe() (<-chan CartEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	ch := make(chan CartEvent, 16)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			close(c)
			delete(b.subs, id)
		}
	}
}

// Publish delivers an event to local subscribers and, when redis is
// wired, to every other process on the channel.
func (b *Broadcaster) Publish(ctx context.Context, event CartEvent) {
	b.deliver(event)
	if !cache.Enabled() {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warnw("cart_event_encode_failed", "error", err)
		return
	}
	if err := cache.Client().Publish(ctx, cache.BuildKey(cartChannel), payload).Err(); err != nil {
		logger.Warnw("cart_event_publish_failed", "error", err)
	}
}

// deliver drops events for slow subscribers rather than blocking cart
// writes.
func (b *Broadcaster) deliver(event CartEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
