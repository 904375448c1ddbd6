package fleet

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// capturedMessage is one payload recorded by captureLink.
type capturedMessage struct {
	topic   string
	payload string
}

// captureLink is a Link test double that records every publish.
type captureLink struct {
	mu        sync.Mutex
	published []capturedMessage
	started   bool
	publishErr error
}

func newCaptureLink() *captureLink {
	return &captureLink{}
}

func (c *captureLink) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
	return nil
}

func (c *captureLink) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	return nil
}

func (c *captureLink) Publish(topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, capturedMessage{topic: topic, payload: string(payload)})
	return nil
}

func (c *captureLink) Subscribe(string, func([]byte)) error {
	return nil
}

func (c *captureLink) messages() []capturedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]capturedMessage, len(c.published))
	copy(out, c.published)
	return out
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// errPublishRejected is the failure injected through captureLink.publishErr.
var errPublishRejected = errors.New("publish rejected")
