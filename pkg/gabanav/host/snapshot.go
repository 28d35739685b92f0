package host

import (
	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
)

// Item is one backstack position in a Snapshot together with the scoped
// entries its destination declared.
type Item[T any] struct {
	Entry  *Entry[T]
	Scoped map[string]*ScopedEntry
}

// ScopedOwner returns the scoped entry declared under key. Looking up a
// scope the destination never declared panics with ErrScopeNotDeclared.
func (i Item[T]) ScopedOwner(key string) *ScopedEntry {
	s, ok := i.Scoped[key]
	if !ok {
		gabanav.Fail("host.scoped_owner", gabanav.ErrScopeNotDeclared, "scope %q for entry %s", key, i.Entry.ID())
	}
	return s
}

// Snapshot is the derived view of one backstack: the entries to render, in
// order, and the action that produced it.
type Snapshot[T any] struct {
	Items  []Item[T]
	Action backstack.Action
}

// Len returns the number of items.
func (s Snapshot[T]) Len() int { return len(s.Items) }

// Last returns the visible item.
func (s Snapshot[T]) Last() (Item[T], bool) {
	if len(s.Items) == 0 {
		return Item[T]{}, false
	}
	return s.Items[len(s.Items)-1], true
}

// LastEntry returns the visible entry, or nil.
func (s Snapshot[T]) LastEntry() *Entry[T] {
	if item, ok := s.Last(); ok {
		return item.Entry
	}
	return nil
}

// LastID returns the id of the visible entry.
func (s Snapshot[T]) LastID() (navid.ID, bool) {
	if item, ok := s.Last(); ok {
		return item.Entry.ID(), true
	}
	return navid.Zero, false
}

// Entries returns the entries in order. Entries shared by several positions
// appear once per position.
func (s Snapshot[T]) Entries() []*Entry[T] {
	out := make([]*Entry[T], len(s.Items))
	for i, item := range s.Items {
		out[i] = item.Entry
	}
	return out
}

// IDs returns the distinct entry ids of the snapshot.
func (s Snapshot[T]) IDs() map[navid.ID]struct{} {
	ids := make(map[navid.ID]struct{}, len(s.Items))
	for _, item := range s.Items {
		ids[item.Entry.ID()] = struct{}{}
	}
	return ids
}

// FindFirst returns the first entry whose destination satisfies predicate.
func (s Snapshot[T]) FindFirst(predicate func(T) bool) (*Entry[T], bool) {
	for _, item := range s.Items {
		if predicate(item.Entry.Destination()) {
			return item.Entry, true
		}
	}
	return nil, false
}

// FindLast returns the last entry whose destination satisfies predicate.
func (s Snapshot[T]) FindLast(predicate func(T) bool) (*Entry[T], bool) {
	for i := len(s.Items) - 1; i >= 0; i-- {
		if predicate(s.Items[i].Entry.Destination()) {
			return s.Items[i].Entry, true
		}
	}
	return nil, false
}
