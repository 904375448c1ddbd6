// Package fleet is the runtime orchestration engine of the simulator.
//
// A fleet is a set of units exchanging state over a publish/subscribe bus.
// Each unit owns a register store (its local state), publishers that emit
// register values on topics, subscribers that overwrite registers or invoke
// request handlers on inbound payloads, and optionally a periodic control
// loop. The Container composes the units with one shared scheduler and one
// outbound link and owns the start/stop lifecycle.
//
// # Concurrency model
//
// Three kinds of goroutines touch a unit's registers:
//
//   - scheduler firings (periodic publishers, control loops), one goroutine
//     per firing
//   - transport deliveries (data-write subscribers), inline on the link's
//     delivery path
//   - request handlers, one goroutine per inbound request message
//
// The register store's mutex is the only lock in the engine; it makes
// single-key reads and writes atomic. Units never share a store, so no
// cross-unit synchronization exists. Whether firings of the same periodic
// job may overlap is the scheduler's configurable overlap policy.
//
// # Failure model
//
// Construction failures (unresolved logic reference, bad notifier, transport
// unreachable) are fatal and abort the whole container build. Runtime
// failures (publish error, handler panic) are logged and contained to the
// firing or message that caused them; the next tick or message proceeds
// normally.
package fleet
