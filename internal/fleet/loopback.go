package fleet

import (
	"fmt"
	"sync"
)

// LoopbackLink is an in-process implementation of Link.
//
// It routes published payloads directly to subscribed callbacks with no
// broker, which makes fleet runs deterministic and self-contained: a
// "loopback" fleet exercises the full unit/publisher/subscriber machinery
// while staying inside one process. Tests use it as the transport double.
//
// Delivery is synchronous in the publisher's goroutine, so messages on one
// topic are observed in publish order.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type LoopbackLink struct {
	mu        sync.RWMutex
	callbacks map[string][]func(payload []byte)
	started   bool
	stopped   bool
}

// NewLoopbackLink creates a loopback link with no subscriptions.
func NewLoopbackLink() *LoopbackLink {
	return &LoopbackLink{
		callbacks: make(map[string][]func(payload []byte)),
	}
}

// Start marks the link as delivering. Publishing before Start is an error,
// matching the container's transport-before-scheduler ordering.
func (l *LoopbackLink) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return ErrLinkStopped
	}
	l.started = true
	return nil
}

// Stop halts delivery. Payloads published after Stop are dropped with an
// error. Stop is idempotent.
func (l *LoopbackLink) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.started = false
	l.stopped = true
	return nil
}

// Publish delivers the payload to every callback subscribed to the topic.
// Topics with no subscribers swallow the payload silently, as a broker would.
func (l *LoopbackLink) Publish(topic string, payload []byte) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrLinkPublish)
	}

	l.mu.RLock()
	started := l.started
	callbacks := l.callbacks[topic]
	l.mu.RUnlock()

	if !started {
		return fmt.Errorf("%w: link not started", ErrLinkPublish)
	}

	for _, cb := range callbacks {
		cb(payload)
	}
	return nil
}

// Subscribe registers a callback for a topic. Subscribing is allowed before
// Start so units can wire themselves during container construction.
func (l *LoopbackLink) Subscribe(topic string, callback func(payload []byte)) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrLinkSubscribe)
	}
	if callback == nil {
		return fmt.Errorf("%w: callback cannot be nil", ErrLinkSubscribe)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return ErrLinkStopped
	}
	l.callbacks[topic] = append(l.callbacks[topic], callback)
	return nil
}

// SubscriptionCount returns the number of topics with at least one callback.
func (l *LoopbackLink) SubscriptionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.callbacks)
}
