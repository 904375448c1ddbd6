package fleet

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/logic"
)

// SubscriberMode selects how a subscriber processes inbound payloads.
type SubscriberMode int

const (
	// ModeDataWrite decodes the payload and overwrites one register,
	// last-write-wins.
	ModeDataWrite SubscriberMode = iota

	// ModeRequest hands the payload to a registered request handler on its
	// own goroutine; the handler may trigger a bound notification publisher.
	ModeRequest
)

// String returns the units-file spelling of the mode.
func (m SubscriberMode) String() string {
	switch m {
	case ModeDataWrite:
		return config.SubscriberModeDataWrite
	case ModeRequest:
		return config.SubscriberModeRequest
	default:
		return fmt.Sprintf("SubscriberMode(%d)", int(m))
	}
}

// Subscriber receives payloads on one topic and either writes a register or
// invokes a request handler.
//
// Messages on the subscriber's topic arrive in whatever order the link
// delivers them; the subscriber adds no queueing of its own. A data write is
// handled inline on the delivery path (a single register Set), while request
// handling always hops to a fresh goroutine so a slow handler cannot stall
// subsequent deliveries.
type Subscriber struct {
	id       string
	unit     string
	topic    string
	writeKey string
	mode     SubscriberMode

	handler  logic.RequestHandlerFunc
	notifier *Publisher

	store  *Store
	logger Logger
}

// newSubscriber builds a subscriber from its descriptor and registers it
// with the link for its topic.
//
// Request-mode construction resolves the handler reference against the logic
// registry and the notifier id against the unit's publishers; either failing
// is a construction error for the whole unit.
func newSubscriber(
	desc config.SubscriberDescriptor,
	unit string,
	store *Store,
	link Link,
	registry *logic.Registry,
	publishers map[string]*Publisher,
	logger Logger,
) (*Subscriber, error) {
	s := &Subscriber{
		id:       desc.ID,
		unit:     unit,
		topic:    desc.Topic,
		writeKey: desc.Write,
		mode:     ModeDataWrite,
		store:    store,
		logger:   logger,
	}

	if desc.Mode == config.SubscriberModeRequest {
		s.mode = ModeRequest

		handler, err := registry.ResolveRequestHandler(desc.Handler)
		if err != nil {
			return nil, fmt.Errorf("subscriber %s/%s: %w", unit, desc.ID, err)
		}
		s.handler = handler

		if desc.Notifier != "" {
			notifier, ok := publishers[desc.Notifier]
			if !ok {
				return nil, fmt.Errorf("subscriber %s/%s: %w: %q", unit, desc.ID, ErrUnknownNotifier, desc.Notifier)
			}
			if notifier.Mode() != ModeNotification {
				return nil, fmt.Errorf("subscriber %s/%s: publisher %q: %w", unit, desc.ID, desc.Notifier, ErrNotifierNotNotification)
			}
			s.notifier = notifier
		}
	}

	if err := link.Subscribe(desc.Topic, s.onMessage); err != nil {
		return nil, fmt.Errorf("subscriber %s/%s: %w", unit, desc.ID, err)
	}

	logger.Debug("subscribed",
		"unit", unit,
		"subscriber", desc.ID,
		"topic", desc.Topic,
		"mode", s.mode.String(),
	)
	return s, nil
}

// ID returns the subscriber's id within its unit.
func (s *Subscriber) ID() string { return s.id }

// Mode returns the subscriber's processing mode.
func (s *Subscriber) Mode() SubscriberMode { return s.mode }

// onMessage is the link callback for the subscriber's topic.
func (s *Subscriber) onMessage(payload []byte) {
	switch s.mode {
	case ModeDataWrite:
		s.store.Set(s.writeKey, decodeValue(payload))
	case ModeRequest:
		go s.handleRequest(string(payload))
	}
}

// handleRequest invokes the request handler once for one inbound message.
// It runs on its own goroutine; a panicking handler is recovered and logged
// so sibling subscriptions keep working.
func (s *Subscriber) handleRequest(payload string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("request handler panic recovered",
				"unit", s.unit,
				"subscriber", s.id,
				"panic", r,
			)
		}
	}()

	s.handler(s.store, payload, s.notify)
}

// notify triggers the bound notification publisher, if any. The trigger is
// asynchronous; the handler never waits for the publish.
func (s *Subscriber) notify() {
	if s.notifier != nil {
		s.notifier.Trigger()
	}
}

// decodeValue turns a raw payload into a register value: valid JSON decodes
// to its structured form, anything else is stored as the raw string.
func decodeValue(payload []byte) any {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	return v
}
