// Package backstack holds the navigation history model.
//
// A Backstack is an immutable ordered list of entries plus the Action that
// produced it. Controllers replace the whole Backstack on every mutation;
// nothing ever edits one in place. The last entry, when present, is the
// destination currently displayed.
//
// An Entry pairs a destination value with a navid.ID. Entries are shared by
// pointer: placing the same *Entry twice in a backstack means both positions
// resolve to one resource owner in the host.
package backstack

import (
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
)

// Action tags the operation that produced a Backstack. It carries no
// behavior; hosts use it to pick transitions. Applications may declare their
// own actions.
type Action string

const (
	Idle     Action = "Idle"
	Navigate Action = "Navigate"
	Replace  Action = "Replace"
	Pop      Action = "Pop"
)

func (a Action) String() string { return string(a) }

// Entry is a destination bound to a stable identity.
type Entry[T any] struct {
	id          navid.ID
	destination T
}

// NewEntry creates an entry for destination with a fresh id.
func NewEntry[T any](destination T) *Entry[T] {
	return &Entry[T]{id: navid.New(), destination: destination}
}

// NewEntryWithID creates an entry with an explicit id. Used when restoring
// persisted backstacks.
func NewEntryWithID[T any](id navid.ID, destination T) *Entry[T] {
	return &Entry[T]{id: id, destination: destination}
}

func (e *Entry[T]) ID() navid.ID { return e.id }

func (e *Entry[T]) Destination() T { return e.destination }

// Entries wraps each destination in a new entry.
func Entries[T any](destinations ...T) []*Entry[T] {
	out := make([]*Entry[T], len(destinations))
	for i, d := range destinations {
		out[i] = NewEntry(d)
	}
	return out
}

// Backstack is one immutable state of the navigation history.
type Backstack[T any] struct {
	Entries []*Entry[T]
	Action  Action
}

// New returns a backstack over a copy of entries.
func New[T any](entries []*Entry[T], action Action) Backstack[T] {
	return Backstack[T]{Entries: clone(entries), Action: action}
}

func (b Backstack[T]) Len() int { return len(b.Entries) }

func (b Backstack[T]) IsEmpty() bool { return len(b.Entries) == 0 }

// Last returns the displayed entry, or nil when the backstack is empty.
func (b Backstack[T]) Last() *Entry[T] {
	if len(b.Entries) == 0 {
		return nil
	}
	return b.Entries[len(b.Entries)-1]
}

// IDs returns the set of distinct ids in the backstack.
func (b Backstack[T]) IDs() map[navid.ID]struct{} {
	ids := make(map[navid.ID]struct{}, len(b.Entries))
	for _, e := range b.Entries {
		ids[e.id] = struct{}{}
	}
	return ids
}

// Contains reports whether id appears anywhere in the backstack.
func (b Backstack[T]) Contains(id navid.ID) bool {
	for _, e := range b.Entries {
		if e.id == id {
			return true
		}
	}
	return false
}

// Destinations returns the destinations in order.
func (b Backstack[T]) Destinations() []T {
	out := make([]T, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.destination
	}
	return out
}

func clone[T any](entries []*Entry[T]) []*Entry[T] {
	out := make([]*Entry[T], len(entries))
	copy(out, entries)
	return out
}
