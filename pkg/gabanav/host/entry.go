package host

import (
	"sort"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/lifecycle"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/viewmodel"
)

// owner is the resource-owning core shared by entries and scoped entries:
// a lifecycle, a view-model store and a saved-state bundle.
type owner struct {
	id         navid.ID
	key        string
	lifecycle  *lifecycle.Registry
	viewModels *viewmodel.Store
	savedState *savedstate.Bundle

	hostState lifecycle.State
	maxState  lifecycle.State
}

// ID returns the owner's identity.
func (o *owner) ID() navid.ID { return o.id }

// Lifecycle returns the owner's lifecycle for observation.
func (o *owner) Lifecycle() lifecycle.Source { return o.lifecycle }

// LifecycleState returns the current effective lifecycle state.
func (o *owner) LifecycleState() lifecycle.State { return o.lifecycle.State() }

// ObserveLifecycle registers fn for every lifecycle event of this owner.
func (o *owner) ObserveLifecycle(fn lifecycle.Observer) (remove func()) {
	return o.lifecycle.Observe(fn)
}

// MaxLifecycleState returns the cap the host currently places on this owner.
func (o *owner) MaxLifecycleState() lifecycle.State { return o.maxState }

// ViewModels returns the owner's view-model store.
func (o *owner) ViewModels() *viewmodel.Store { return o.viewModels }

// SavedState returns the owner's persisted bundle.
func (o *owner) SavedState() *savedstate.Bundle { return o.savedState }

// IsDestroyed reports whether the owner has been torn down.
func (o *owner) IsDestroyed() bool { return o.lifecycle.State() == lifecycle.Destroyed }

func (o *owner) setHostState(s lifecycle.State) {
	o.hostState = hostCap(s)
	o.recompute()
}

func (o *owner) setMaxState(s lifecycle.State) {
	o.maxState = s
	o.recompute()
}

// recompute applies effective = min(host, max) to the lifecycle. A fresh
// lifecycle is never destroyed directly; it passes through Started first.
func (o *owner) recompute() {
	current := o.lifecycle.State()
	if current == lifecycle.Destroyed {
		return
	}
	target := lifecycle.Min(o.hostState, o.maxState)
	if target == lifecycle.Initialized {
		if current != lifecycle.Initialized {
			target = lifecycle.Created
		} else {
			return
		}
	}
	if current == lifecycle.Initialized && target == lifecycle.Destroyed {
		o.lifecycle.SetState(lifecycle.Started)
	}
	o.lifecycle.SetState(target)
}

// hostCap maps the host lifecycle onto the cap it places on entries. Hosts
// below Created (not yet created, or destroyed) still let entries reach
// Created; only the registry itself destroys entries.
func hostCap(s lifecycle.State) lifecycle.State {
	return lifecycle.Max(s, lifecycle.Created)
}

// Entry is the resource owner bound to one backstack id.
type Entry[T any] struct {
	owner
	entry *backstack.Entry[T]
}

// Destination returns the destination the entry was created for.
func (e *Entry[T]) Destination() T { return e.entry.Destination() }

// BackstackEntry returns the backstack entry this host entry owns resources
// for.
func (e *Entry[T]) BackstackEntry() *backstack.Entry[T] { return e.entry }

// ScopedEntry is a resource owner shared by a set of backstack entries
// under a scope key. It lives while at least one associated entry does.
type ScopedEntry struct {
	owner
	scopeKey   string
	shared     bool
	associated map[navid.ID]struct{}
}

// ScopeKey returns the key the entry was requested under.
func (s *ScopedEntry) ScopeKey() string { return s.scopeKey }

// Shared reports whether the entry was created through SharedOwner rather
// than a declared scope.
func (s *ScopedEntry) Shared() bool { return s.shared }

// AssociatedIDs returns the associated entry ids, sorted by string form.
func (s *ScopedEntry) AssociatedIDs() []navid.ID {
	ids := make([]navid.ID, 0, len(s.associated))
	for id := range s.associated {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// IsAssociated reports whether id is associated with the scoped entry.
func (s *ScopedEntry) IsAssociated(id navid.ID) bool {
	_, ok := s.associated[id]
	return ok
}

func sortIDs(ids []navid.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
