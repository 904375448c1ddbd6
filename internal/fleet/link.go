package fleet

import (
	"fmt"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/infrastructure/mqtt"
)

// Link is the outbound link: the fleet's view of the message bus.
//
// Publish is fire-and-forget from the fleet's perspective; the link owns
// transport reliability, and publish failures are logged by callers rather
// than propagated. Subscribe registers one callback per topic; the link
// invokes it with the raw payload, no protocol metadata attached.
//
// New transports are additional implementations of this interface, built by
// BuildLink from link.type in config.
type Link interface {
	// Start begins the link's delivery loop. Called by Container.Run before
	// the scheduler starts, so no periodic publish fires before the
	// transport can accept it.
	Start() error

	// Stop drains in-flight deliveries and releases the transport.
	// Stop is idempotent.
	Stop() error

	// Publish sends a payload to a topic.
	Publish(topic string, payload []byte) error

	// Subscribe registers a callback for a topic. Messages on one topic are
	// delivered in transport order; across topics no ordering is guaranteed.
	Subscribe(topic string, callback func(payload []byte)) error
}

// BuildLink constructs the outbound link selected by cfg.Link.Type.
//
// For the MQTT link, the broker connection (including TLS setup) happens
// here; a broker that cannot be reached aborts container construction.
//
// Parameters:
//   - cfg: Root configuration (link type plus transport settings)
//   - logger: Logger handed to the transport for handler error reporting
//
// Returns:
//   - Link: Ready-to-start link
//   - error: ErrUnknownLinkType, or the transport's construction failure
func BuildLink(cfg *config.Config, logger Logger) (Link, error) {
	switch cfg.Link.Type {
	case config.LinkTypeMQTT:
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("building mqtt link: %w", err)
		}
		client.SetLogger(logger)
		return &mqttLink{client: client}, nil
	case config.LinkTypeLoopback:
		return NewLoopbackLink(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLinkType, cfg.Link.Type)
	}
}

// mqttLink adapts the infrastructure MQTT client to the Link interface.
type mqttLink struct {
	client *mqtt.Client
}

// Start verifies the broker connection is live. The paho client connects at
// construction time and runs its own delivery loop from then on.
func (l *mqttLink) Start() error {
	if !l.client.IsConnected() {
		return mqtt.ErrNotConnected
	}
	return nil
}

// Stop publishes the offline status and disconnects from the broker.
func (l *mqttLink) Stop() error {
	return l.client.Close()
}

// Publish sends a payload with the configured QoS.
func (l *mqttLink) Publish(topic string, payload []byte) error {
	return l.client.Publish(topic, payload)
}

// Subscribe registers a callback for a topic, dropping the transport
// metadata the fleet does not consume.
func (l *mqttLink) Subscribe(topic string, callback func(payload []byte)) error {
	return l.client.Subscribe(topic, func(_ string, payload []byte) error {
		callback(payload)
		return nil
	})
}
