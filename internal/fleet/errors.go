package fleet

import "errors"

// Domain-specific errors for fleet construction and lifecycle.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownLinkType is returned for an unrecognised link.type value.
	ErrUnknownLinkType = errors.New("fleet: unknown link type")

	// ErrLinkStopped is returned by loopback operations after Stop.
	ErrLinkStopped = errors.New("fleet: link stopped")

	// ErrLinkPublish is returned for invalid or rejected loopback publishes.
	ErrLinkPublish = errors.New("fleet: link publish failed")

	// ErrLinkSubscribe is returned for invalid loopback subscriptions.
	ErrLinkSubscribe = errors.New("fleet: link subscribe failed")

	// ErrUnknownNotifier is returned when a request subscriber references a
	// publisher id that does not exist on its unit.
	ErrUnknownNotifier = errors.New("fleet: notifier does not match any publisher")

	// ErrNotifierNotNotification is returned when a notifier reference
	// resolves to a periodic publisher.
	ErrNotifierNotNotification = errors.New("fleet: notifier must be a notification publisher")

	// ErrDuplicateUnit is returned when two units share a name.
	ErrDuplicateUnit = errors.New("fleet: duplicate unit name")

	// ErrNilRegistry is returned when Build is called without a logic registry.
	ErrNilRegistry = errors.New("fleet: logic registry cannot be nil")

	// ErrNotRunnable is returned by Run on a container that already ran or
	// was shut down.
	ErrNotRunnable = errors.New("fleet: container not runnable")
)
