package fleet

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/logic"
	"github.com/nerrad567/fleetsim/internal/scheduler"
)

// runState tracks the container's lifecycle.
type runState int

const (
	stateBuilt runState = iota
	stateRunning
	stateStopped
)

// BuildOptions are the optional collaborators for Build.
type BuildOptions struct {
	// Link overrides the link built from cfg.Link; used by embedding code
	// and tests that bring their own transport. When nil, BuildLink runs.
	Link Link

	// Recorder receives publish telemetry; may be nil.
	Recorder Recorder

	// Logger; a nil logger is replaced with a no-op.
	Logger Logger
}

// Container owns the fleet: one outbound link, one scheduler, and the unit
// registry. It is constructed once per process from configuration.
//
// Lifecycle: Build → Run → Shutdown. Run starts the link before the
// scheduler so no periodic publish fires into a dead transport; Shutdown
// stops the scheduler before the link so in-flight deliveries drain before
// the transport disconnects.
type Container struct {
	link  Link
	sched *scheduler.Scheduler
	units map[string]*Unit

	ownsLink bool
	logger   Logger

	mu    sync.Mutex
	state runState
}

// Build constructs the container: the outbound link, the scheduler, and
// every unit from its descriptor.
//
// Construction is fail-fast: the first unit that fails to build aborts the
// whole container, and a link the container built itself is released before
// returning. No partially-initialized fleet ever reaches Run.
//
// Parameters:
//   - cfg: Root configuration
//   - descriptors: Unit descriptors from the units file
//   - registry: Logic registry for control loop / handler resolution
//   - opts: Optional link override, telemetry recorder, and logger
//
// Returns:
//   - *Container: Built container, ready for Run
//   - error: First construction failure
func Build(cfg *config.Config, descriptors []config.UnitDescriptor, registry *logic.Registry, opts BuildOptions) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = Logger(noopLogger{})
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}

	overlap, err := scheduler.ParsePolicy(cfg.Scheduler.OverlapPolicy)
	if err != nil {
		return nil, fmt.Errorf("building container: %w", err)
	}

	link := opts.Link
	ownsLink := false
	if link == nil {
		link, err = BuildLink(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("building container: %w", err)
		}
		ownsLink = true
	}

	sched := scheduler.New()
	sched.SetLogger(logger)

	c := &Container{
		link:     link,
		sched:    sched,
		units:    make(map[string]*Unit, len(descriptors)),
		ownsLink: ownsLink,
		logger:   logger,
		state:    stateBuilt,
	}

	deps := UnitDeps{
		Link:      link,
		Scheduler: sched,
		Registry:  registry,
		Recorder:  opts.Recorder,
		Overlap:   overlap,
		Logger:    logger,
	}

	for _, desc := range descriptors {
		if _, exists := c.units[desc.Name]; exists {
			c.releaseLinkOnBuildFailure()
			return nil, fmt.Errorf("building container: %w: %q", ErrDuplicateUnit, desc.Name)
		}
		unit, err := NewUnit(desc, deps)
		if err != nil {
			c.releaseLinkOnBuildFailure()
			return nil, fmt.Errorf("building container: %w", err)
		}
		c.units[desc.Name] = unit
	}

	logger.Info("container built",
		"units", len(c.units),
		"jobs", sched.JobCount(),
		"overlap_policy", cfg.Scheduler.OverlapPolicy,
	)
	return c, nil
}

// releaseLinkOnBuildFailure stops a link the container constructed itself,
// so an aborted build does not leak a broker connection.
func (c *Container) releaseLinkOnBuildFailure() {
	if !c.ownsLink {
		return
	}
	if err := c.link.Stop(); err != nil {
		c.logger.Warn("stopping link after failed build", "error", err)
	}
}

// Run starts the fleet: the outbound link first, then the scheduler.
//
// Run returns once both are started; periodic work and message delivery
// proceed on background goroutines from then on. The caller blocks on its
// own shutdown signal and then calls Shutdown.
//
// Returns:
//   - error: ErrNotRunnable if the container already ran or was shut down,
//     or the link/scheduler start failure
func (c *Container) Run() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateBuilt {
		return fmt.Errorf("%w: container is %s", ErrNotRunnable, c.stateName())
	}

	if err := c.link.Start(); err != nil {
		return fmt.Errorf("starting link: %w", err)
	}
	if err := c.sched.Start(); err != nil {
		// Dispatch never began; release the transport.
		if stopErr := c.link.Stop(); stopErr != nil {
			c.logger.Warn("stopping link after failed scheduler start", "error", stopErr)
		}
		return fmt.Errorf("starting scheduler: %w", err)
	}

	c.state = stateRunning
	c.logger.Info("container running", "units", len(c.units))
	return nil
}

// Shutdown stops the fleet: the scheduler first (no new work is dispatched),
// then the link (in-flight deliveries drain before disconnect).
//
// Shutdown is idempotent and best-effort: component stop failures are logged
// and the remaining components are still stopped. It never panics past the
// container boundary. In-flight job executions are not waited for; a
// long-running callback may outlive Shutdown.
func (c *Container) Shutdown() {
	c.mu.Lock()
	if c.state == stateStopped {
		c.mu.Unlock()
		return
	}
	c.state = stateStopped
	c.mu.Unlock()

	c.logger.Info("container shutting down")

	c.sched.Stop()

	if err := c.link.Stop(); err != nil {
		c.logger.Error("stopping link", "error", err)
	}

	c.logger.Info("container stopped")
}

// Unit returns the unit with the given name, or nil.
func (c *Container) Unit(name string) *Unit {
	return c.units[name]
}

// UnitNames returns the names of all units, sorted.
func (c *Container) UnitNames() []string {
	names := make([]string, 0, len(c.units))
	for name := range c.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stateName returns a readable name for the container state.
// Callers must hold c.mu.
func (c *Container) stateName() string {
	switch c.state {
	case stateBuilt:
		return "built"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
