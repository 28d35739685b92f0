package router

import (
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/host"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/lifecycle"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/viewmodel"
)

// Scope is what a destination's content sees while it is drawn: its own
// entry and the resources it owns, the snapshot it belongs to, and the
// router for navigation.
type Scope[T any] struct {
	router   *Router[T]
	item     host.Item[T]
	snapshot host.Snapshot[T]
}

// Entry returns the entry being drawn.
func (s *Scope[T]) Entry() *host.Entry[T] { return s.item.Entry }

// Destination returns the entry's destination.
func (s *Scope[T]) Destination() T { return s.item.Entry.Destination() }

// Lifecycle returns the entry's current lifecycle state.
func (s *Scope[T]) Lifecycle() lifecycle.State { return s.item.Entry.LifecycleState() }

// ViewModels returns the entry's view-model store.
func (s *Scope[T]) ViewModels() *viewmodel.Store { return s.item.Entry.ViewModels() }

// SavedState returns the entry's persisted bundle.
func (s *Scope[T]) SavedState() *savedstate.Bundle { return s.item.Entry.SavedState() }

// UIState returns the entry's UI state bucket (scroll offsets, cursor
// positions). It survives the entry leaving the screen and is dropped with
// the entry.
func (s *Scope[T]) UIState() *savedstate.Bundle {
	return s.router.uiState.Bucket(s.item.Entry.ID().String())
}

// Entries returns the entries of the snapshot this scope was drawn from,
// bottom first.
func (s *Scope[T]) Entries() []*host.Entry[T] { return s.snapshot.Entries() }

// FindFirst returns the lowest entry whose destination matches predicate.
func (s *Scope[T]) FindFirst(predicate func(T) bool) (*host.Entry[T], bool) {
	return s.snapshot.FindFirst(predicate)
}

// FindLast returns the highest entry whose destination matches predicate.
func (s *Scope[T]) FindLast(predicate func(T) bool) (*host.Entry[T], bool) {
	return s.snapshot.FindLast(predicate)
}

// ScopedOwner returns the scoped entry the destination declared under key.
// It panics when the destination did not declare key.
func (s *Scope[T]) ScopedOwner(key string) *host.ScopedEntry {
	return s.item.ScopedOwner(key)
}

// SharedOwner returns the shared entry for key, associating this entry
// with it.
func (s *Scope[T]) SharedOwner(key string) *host.ScopedEntry {
	return s.router.state.SharedOwner(key, s.item.Entry.ID())
}

// Controller returns the router's controller.
func (s *Scope[T]) Controller() *backstack.Controller[T] { return s.router.controller }
