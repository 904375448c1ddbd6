package logic

import (
	"fmt"
	"sort"
	"sync"
)

// Registers is the view of a unit's register store handed to logic modules.
// It is satisfied by fleet.Store.
//
// The store guarantees atomicity per call only; a Get followed by a Set is
// not atomic. Modules needing read-modify-write consistency must coordinate
// at a higher level.
type Registers interface {
	// Get returns the value for key, or nil if the key is absent.
	Get(key string) any

	// GetOr returns the value for key, or def if the key is absent.
	GetOr(key string, def any) any

	// Set unconditionally overwrites the value for key, creating it if absent.
	Set(key string, value any)
}

// ControlLoopFunc is the contract for a unit's periodic control loop.
// It is invoked by the scheduler at the unit's configured interval with the
// unit's own registers. A panic is recovered and logged per invocation.
type ControlLoopFunc func(regs Registers)

// RequestHandlerFunc is the contract for a request subscriber's handler.
//
// It is invoked once per inbound request message, on its own goroutine.
// Calling notify triggers the subscriber's bound notification publisher
// asynchronously; notify never blocks and is safe to call when no notifier
// is bound (it is a no-op then).
type RequestHandlerFunc func(regs Registers, payload string, notify func())

// Registry maps string references from the units file to registered logic
// modules. Resolution failure is a fleet construction error, never a
// deferred runtime surprise.
//
// All methods are thread-safe.
type Registry struct {
	mu       sync.RWMutex
	loops    map[string]ControlLoopFunc
	handlers map[string]RequestHandlerFunc
}

// NewRegistry creates an empty logic registry.
func NewRegistry() *Registry {
	return &Registry{
		loops:    make(map[string]ControlLoopFunc),
		handlers: make(map[string]RequestHandlerFunc),
	}
}

// RegisterControlLoop registers a control loop under the given reference.
//
// Returns:
//   - error: ErrNilModule, or ErrDuplicateReference if the reference is taken
func (r *Registry) RegisterControlLoop(ref string, fn ControlLoopFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: control loop %q", ErrNilModule, ref)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loops[ref]; exists {
		return fmt.Errorf("%w: control loop %q", ErrDuplicateReference, ref)
	}
	r.loops[ref] = fn
	return nil
}

// RegisterRequestHandler registers a request handler under the given reference.
//
// Returns:
//   - error: ErrNilModule, or ErrDuplicateReference if the reference is taken
func (r *Registry) RegisterRequestHandler(ref string, fn RequestHandlerFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: request handler %q", ErrNilModule, ref)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[ref]; exists {
		return fmt.Errorf("%w: request handler %q", ErrDuplicateReference, ref)
	}
	r.handlers[ref] = fn
	return nil
}

// ResolveControlLoop looks up a control loop by reference.
//
// Returns:
//   - ControlLoopFunc: The registered module
//   - error: ErrUnknownReference if nothing is registered under ref
func (r *Registry) ResolveControlLoop(ref string) (ControlLoopFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.loops[ref]
	if !ok {
		return nil, fmt.Errorf("%w: control loop %q", ErrUnknownReference, ref)
	}
	return fn, nil
}

// ResolveRequestHandler looks up a request handler by reference.
//
// Returns:
//   - RequestHandlerFunc: The registered module
//   - error: ErrUnknownReference if nothing is registered under ref
func (r *Registry) ResolveRequestHandler(ref string) (RequestHandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.handlers[ref]
	if !ok {
		return nil, fmt.Errorf("%w: request handler %q", ErrUnknownReference, ref)
	}
	return fn, nil
}

// ControlLoopRefs returns the registered control loop references, sorted.
func (r *Registry) ControlLoopRefs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make([]string, 0, len(r.loops))
	for ref := range r.loops {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// RequestHandlerRefs returns the registered request handler references, sorted.
func (r *Registry) RequestHandlerRefs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make([]string, 0, len(r.handlers))
	for ref := range r.handlers {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
