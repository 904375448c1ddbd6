package fleet

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
)

// PublisherMode selects how a publisher is fired.
type PublisherMode int

const (
	// ModePeriodic fires the publisher from the scheduler at a fixed interval.
	ModePeriodic PublisherMode = iota

	// ModeNotification fires the publisher on demand, when a request
	// subscriber's handler calls notify.
	ModeNotification
)

// String returns the units-file spelling of the mode.
func (m PublisherMode) String() string {
	switch m {
	case ModePeriodic:
		return config.PublisherModePeriodic
	case ModeNotification:
		return config.PublisherModeNotification
	default:
		return fmt.Sprintf("PublisherMode(%d)", int(m))
	}
}

// Recorder receives one callback per publisher firing, for telemetry.
// Implemented by the influxdb client; a nil Recorder disables recording.
type Recorder interface {
	RecordPublish(unit, publisherID, topic, registerKey string, value any)
}

// Publisher reads one register from its unit's store, serializes the value
// to JSON, and emits it on one topic via the outbound link.
//
// Each firing is one outbound message: no retry, no delivery confirmation.
// Successive firings of a periodic publisher are independent; whether slow
// firings may overlap is the scheduler's overlap policy, not the
// publisher's concern.
type Publisher struct {
	id       string
	unit     string
	topic    string
	readKey  string
	mode     PublisherMode
	interval time.Duration

	store    *Store
	link     Link
	recorder Recorder
	logger   Logger
}

// newPublisher builds a publisher from its descriptor. The descriptor has
// already passed config validation; mode strings are trusted here.
func newPublisher(desc config.PublisherDescriptor, unit string, store *Store, link Link, recorder Recorder, logger Logger) *Publisher {
	mode := ModePeriodic
	if desc.Mode == config.PublisherModeNotification {
		mode = ModeNotification
	}

	return &Publisher{
		id:       desc.ID,
		unit:     unit,
		topic:    desc.Topic,
		readKey:  desc.Read,
		mode:     mode,
		interval: time.Duration(desc.IntervalMS) * time.Millisecond,
		store:    store,
		link:     link,
		recorder: recorder,
		logger:   logger,
	}
}

// ID returns the publisher's id within its unit.
func (p *Publisher) ID() string { return p.id }

// Mode returns the publisher's firing mode.
func (p *Publisher) Mode() PublisherMode { return p.mode }

// Interval returns the firing interval for periodic publishers.
func (p *Publisher) Interval() time.Duration { return p.interval }

// Publish reads the source register, serializes its value and sends it on
// the topic. A register that was never set serializes as JSON null.
//
// Returns:
//   - error: Serialization or link failure; callers log it, nothing retries
func (p *Publisher) Publish() error {
	value := p.store.Get(p.readKey)

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("publisher %s/%s: serializing register %q: %w", p.unit, p.id, p.readKey, err)
	}

	if err := p.link.Publish(p.topic, payload); err != nil {
		return fmt.Errorf("publisher %s/%s: %w", p.unit, p.id, err)
	}

	if p.recorder != nil {
		p.recorder.RecordPublish(p.unit, p.id, p.topic, p.readKey, value)
	}
	return nil
}

// Trigger fires a notification publisher asynchronously.
//
// The caller (a request handler's notify callback) never blocks on the
// publish; failures are logged and dropped.
func (p *Publisher) Trigger() {
	go func() {
		if err := p.Publish(); err != nil {
			p.logger.Warn("notification publish failed",
				"unit", p.unit,
				"publisher", p.id,
				"error", err,
			)
		}
	}()
}

// job returns the scheduler callable for a periodic publisher: publish once,
// log on failure, let the next tick retry de facto.
func (p *Publisher) job() func() {
	return func() {
		if err := p.Publish(); err != nil {
			p.logger.Warn("periodic publish failed",
				"unit", p.unit,
				"publisher", p.id,
				"error", err,
			)
		}
	}
}
