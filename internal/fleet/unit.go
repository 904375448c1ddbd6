package fleet

import (
	"fmt"
	"time"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/logic"
	"github.com/nerrad567/fleetsim/internal/scheduler"
)

// millis converts a units-file interval_ms value to a Duration.
func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// BuildState tracks a unit's progress through construction.
//
// Construction is fail-fast: any step failing leaves the unit in its current
// build state and aborts the whole container build, so no half-built unit
// ever runs.
type BuildState int

const (
	StateUninitialized BuildState = iota
	StateBuildingRegisters
	StateBuildingPublishers
	StateBuildingSubscribers
	StateBuildingControlLoop
	StateReady
)

// String returns a readable name for the build state.
func (s BuildState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBuildingRegisters:
		return "building_registers"
	case StateBuildingPublishers:
		return "building_publishers"
	case StateBuildingSubscribers:
		return "building_subscribers"
	case StateBuildingControlLoop:
		return "building_control_loop"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("BuildState(%d)", int(s))
	}
}

// UnitDeps are the shared collaborators a unit is built against.
type UnitDeps struct {
	// Link is the container's outbound link; subscribers register on it.
	Link Link

	// Scheduler receives the unit's periodic jobs (publishers, control loop).
	Scheduler *scheduler.Scheduler

	// Registry resolves control loop and request handler references.
	Registry *logic.Registry

	// Recorder receives publish telemetry; may be nil.
	Recorder Recorder

	// Overlap is the policy applied to this unit's periodic jobs.
	Overlap scheduler.OverlapPolicy

	// Logger; a nil logger is replaced with a no-op.
	Logger Logger
}

// Unit is one simulated device: a register store plus the publishers,
// subscribers and optional control loop operating on it.
//
// A unit's components touch only the unit's own store. Units share the
// scheduler and the link but no state, so no cross-unit synchronization
// exists anywhere in the fleet.
type Unit struct {
	name  string
	state BuildState

	store       *Store
	publishers  map[string]*Publisher
	subscribers map[string]*Subscriber

	logger Logger
}

// NewUnit builds a unit from its descriptor, stepwise and fail-fast:
// registers, then publishers, then subscribers, then the control loop.
//
// Periodic publishers and the control loop are registered with the shared
// scheduler immediately; they start firing when the scheduler starts.
//
// Parameters:
//   - desc: Unit descriptor from the units file (already validated)
//   - deps: Shared collaborators (link, scheduler, registry, ...)
//
// Returns:
//   - *Unit: Ready unit
//   - error: First construction failure, wrapped with the unit name
func NewUnit(desc config.UnitDescriptor, deps UnitDeps) (*Unit, error) {
	if deps.Logger == nil {
		deps.Logger = noopLogger{}
	}

	u := &Unit{
		name:        desc.Name,
		state:       StateUninitialized,
		publishers:  make(map[string]*Publisher, len(desc.Publishers)),
		subscribers: make(map[string]*Subscriber, len(desc.Subscribers)),
		logger:      deps.Logger,
	}

	u.state = StateBuildingRegisters
	u.store = NewStore(desc.Registers)

	u.state = StateBuildingPublishers
	if err := u.buildPublishers(desc.Publishers, deps); err != nil {
		return nil, fmt.Errorf("unit %q: %w", desc.Name, err)
	}

	u.state = StateBuildingSubscribers
	if err := u.buildSubscribers(desc.Subscribers, deps); err != nil {
		return nil, fmt.Errorf("unit %q: %w", desc.Name, err)
	}

	u.state = StateBuildingControlLoop
	if err := u.buildControlLoop(desc.ControlLoop, deps); err != nil {
		return nil, fmt.Errorf("unit %q: %w", desc.Name, err)
	}

	u.state = StateReady
	u.logger.Info("unit ready",
		"unit", u.name,
		"registers", len(desc.Registers),
		"publishers", len(u.publishers),
		"subscribers", len(u.subscribers),
		"control_loop", desc.ControlLoop != nil,
	)
	return u, nil
}

// buildPublishers constructs every publisher and schedules the periodic ones.
func (u *Unit) buildPublishers(descs []config.PublisherDescriptor, deps UnitDeps) error {
	for _, desc := range descs {
		pub := newPublisher(desc, u.name, u.store, deps.Link, deps.Recorder, u.logger)
		u.publishers[pub.ID()] = pub

		if pub.Mode() != ModePeriodic {
			continue
		}
		jobName := fmt.Sprintf("%s/publisher/%s", u.name, pub.ID())
		if _, err := deps.Scheduler.Add(jobName, pub.Interval(), deps.Overlap, pub.job()); err != nil {
			return fmt.Errorf("scheduling publisher %q: %w", pub.ID(), err)
		}
	}
	u.logger.Debug("publishers built", "unit", u.name, "count", len(u.publishers))
	return nil
}

// buildSubscribers constructs every subscriber; each registers itself on the
// link for its topic.
func (u *Unit) buildSubscribers(descs []config.SubscriberDescriptor, deps UnitDeps) error {
	for _, desc := range descs {
		sub, err := newSubscriber(desc, u.name, u.store, deps.Link, deps.Registry, u.publishers, u.logger)
		if err != nil {
			return err
		}
		u.subscribers[sub.ID()] = sub
	}
	u.logger.Debug("subscribers built", "unit", u.name, "count", len(u.subscribers))
	return nil
}

// buildControlLoop resolves and schedules the control loop, if configured.
// A unit with no control loop is valid; its only periodic work is its
// publishers.
func (u *Unit) buildControlLoop(desc *config.ControlLoopDescriptor, deps UnitDeps) error {
	if desc == nil {
		return nil
	}

	run, err := deps.Registry.ResolveControlLoop(desc.Module)
	if err != nil {
		return fmt.Errorf("control loop: %w", err)
	}

	store := u.store
	jobName := fmt.Sprintf("%s/control_loop", u.name)
	interval := millis(desc.IntervalMS)
	if _, err := deps.Scheduler.Add(jobName, interval, deps.Overlap, func() { run(store) }); err != nil {
		return fmt.Errorf("scheduling control loop: %w", err)
	}

	u.logger.Debug("control loop scheduled",
		"unit", u.name,
		"module", desc.Module,
		"interval", interval,
	)
	return nil
}

// Name returns the unit's name, unique across the container.
func (u *Unit) Name() string { return u.name }

// State returns the unit's build state; a constructed unit is always Ready.
func (u *Unit) State() BuildState { return u.state }

// Registers returns the unit's register store.
func (u *Unit) Registers() *Store { return u.store }

// Publisher returns the publisher with the given id, or nil.
func (u *Unit) Publisher(id string) *Publisher { return u.publishers[id] }

// Subscriber returns the subscriber with the given id, or nil.
func (u *Unit) Subscriber(id string) *Subscriber { return u.subscribers[id] }
