package bedrock

import (
	"context"
	"reflect"
	"sync"
)

// HandlerFunc is an application event handler. ctx is cancelled when the
// owning session closes; c borrows the session for the duration of the
// call and must not be retained past it.
type HandlerFunc func(ctx context.Context, c *Context) error

// registration pairs a handler with its auto-subscribe flag.
type registration struct {
	handler       HandlerFunc
	autoSubscribe bool
}

// Registry maps event names to handler sets.
//
// Lookups return snapshots, so registering during dispatch never corrupts
// an iteration already in flight. The same function registered twice for
// one event is stored once.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]registration)}
}

// Register binds handler to the event name. autoSubscribe marks the event
// for subscription on every new session.
func (r *Registry) Register(event string, handler HandlerFunc, autoSubscribe bool) {
	ptr := reflect.ValueOf(handler).Pointer()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.handlers[event] {
		if reflect.ValueOf(reg.handler).Pointer() == ptr {
			// Already registered; only the flag may change.
			r.handlers[event][i].autoSubscribe = autoSubscribe
			return
		}
	}
	r.handlers[event] = append(r.handlers[event], registration{
		handler:       handler,
		autoSubscribe: autoSubscribe,
	})
}

// Handlers returns a snapshot of the handlers registered for event.
func (r *Registry) Handlers(event string) []HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regs := r.handlers[event]
	if len(regs) == 0 {
		return nil
	}
	out := make([]HandlerFunc, len(regs))
	for i, reg := range regs {
		out[i] = reg.handler
	}
	return out
}

// AutoSubscribed returns the event names that have at least one handler
// registered with autoSubscribe.
func (r *Registry) AutoSubscribed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for event, regs := range r.handlers {
		for _, reg := range regs {
			if reg.autoSubscribe {
				names = append(names, event)
				break
			}
		}
	}
	return names
}
