// Package lifecycle implements the lifecycle state machine owned by every
// navigation entry.
//
// States are ordered Destroyed < Initialized < Created < Started < Resumed
// so that the effective state of an entry can be computed with Min. A
// Registry moves one step at a time and emits an Event per step, so observers
// never see a skipped state. Destroyed is terminal.
package lifecycle

import (
	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
)

// State is a lifecycle state.
type State int

const (
	Destroyed State = iota
	Initialized
	Created
	Started
	Resumed
)

func (s State) String() string {
	switch s {
	case Destroyed:
		return "Destroyed"
	case Initialized:
		return "Initialized"
	case Created:
		return "Created"
	case Started:
		return "Started"
	case Resumed:
		return "Resumed"
	default:
		return "Unknown"
	}
}

// AtLeast reports whether s is s2 or further along.
func (s State) AtLeast(s2 State) bool { return s >= s2 }

// Min returns the lower of two states.
func Min(a, b State) State {
	if a < b {
		return a
	}
	return b
}

// Max returns the higher of two states.
func Max(a, b State) State {
	if a > b {
		return a
	}
	return b
}

// Event is a single step between two adjacent states.
type Event int

const (
	OnCreate Event = iota
	OnStart
	OnResume
	OnPause
	OnStop
	OnDestroy
)

func (e Event) String() string {
	switch e {
	case OnCreate:
		return "OnCreate"
	case OnStart:
		return "OnStart"
	case OnResume:
		return "OnResume"
	case OnPause:
		return "OnPause"
	case OnStop:
		return "OnStop"
	case OnDestroy:
		return "OnDestroy"
	default:
		return "Unknown"
	}
}

// TargetState is the state reached after the event.
func (e Event) TargetState() State {
	switch e {
	case OnCreate, OnStop:
		return Created
	case OnStart, OnPause:
		return Started
	case OnResume:
		return Resumed
	default:
		return Destroyed
	}
}

// upFrom returns the event that moves one step up from s.
func upFrom(s State) Event {
	switch s {
	case Initialized:
		return OnCreate
	case Created:
		return OnStart
	default:
		return OnResume
	}
}

// downFrom returns the event that moves one step down from s.
func downFrom(s State) Event {
	switch s {
	case Resumed:
		return OnPause
	case Started:
		return OnStop
	default:
		return OnDestroy
	}
}

// Source is an observable lifecycle, such as the one of the window or
// screen hosting the navigation.
type Source interface {
	State() State
	// Subscribe calls fn after every state change until unsubscribe is
	// called.
	Subscribe(fn func(State)) (unsubscribe func())
}

// Observer receives every event a Registry emits.
type Observer func(Event)

// Registry is a mutable lifecycle. It implements Source.
type Registry struct {
	state     State
	observers []*observerSlot
}

type observerSlot struct {
	fn Observer
}

// NewRegistry returns a registry in the Initialized state.
func NewRegistry() *Registry {
	return &Registry{state: Initialized}
}

func (r *Registry) State() State { return r.state }

// Observe registers fn for every subsequent event.
func (r *Registry) Observe(fn Observer) (remove func()) {
	slot := &observerSlot{fn: fn}
	r.observers = append(r.observers, slot)
	return func() {
		for i, o := range r.observers {
			if o == slot {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// Subscribe implements Source.
func (r *Registry) Subscribe(fn func(State)) (unsubscribe func()) {
	return r.Observe(func(e Event) { fn(e.TargetState()) })
}

// SetState moves the registry to target one event at a time.
//
// It panics with a ProgrammerError when leaving Destroyed, when going from
// Initialized straight to Destroyed, or when target is not a valid state.
func (r *Registry) SetState(target State) {
	if target < Destroyed || target > Resumed {
		gabanav.Fail("lifecycle.set_state", gabanav.ErrInvalidLifecycleTransition, "unknown state %d", int(target))
	}
	if r.state == target {
		return
	}
	if r.state == Destroyed {
		gabanav.Fail("lifecycle.set_state", gabanav.ErrInvalidLifecycleTransition, "cannot move from Destroyed to %s", target)
	}
	if r.state == Initialized && target == Destroyed {
		gabanav.Fail("lifecycle.set_state", gabanav.ErrInvalidLifecycleTransition, "cannot move from Initialized to Destroyed")
	}
	if target == Initialized {
		gabanav.Fail("lifecycle.set_state", gabanav.ErrInvalidLifecycleTransition, "cannot move from %s back to Initialized", r.state)
	}
	for r.state != target {
		var event Event
		if r.state < target {
			event = upFrom(r.state)
		} else {
			event = downFrom(r.state)
		}
		r.state = event.TargetState()
		r.dispatch(event)
	}
}

func (r *Registry) dispatch(event Event) {
	observers := append([]*observerSlot(nil), r.observers...)
	for _, o := range observers {
		o.fn(event)
	}
}
