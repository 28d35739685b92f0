package backstack

// Match selects which occurrence a predicate-based operation anchors on when
// several entries satisfy it.
type Match int

const (
	MatchLast  Match = iota // Anchor on the occurrence closest to the top
	MatchFirst              // Anchor on the occurrence closest to the bottom
)

// UpToOptions configures PopUpTo and ReplaceUpTo.
type UpToOptions struct {
	Inclusive bool  // Also remove the matched entry
	Match     Match // Which matching occurrence to anchor on
}

// Listener is notified after every successful backstack mutation.
type Listener[T any] func(Backstack[T])

// Controller owns the current Backstack and replaces it on every mutation.
//
// Controller is not safe for concurrent use. All mutations are expected to
// happen on the goroutine that drives the UI.
type Controller[T any] struct {
	backstack Backstack[T]
	listeners []*listenerSlot[T]
}

type listenerSlot[T any] struct {
	fn Listener[T]
}

// NewController creates a controller whose backstack holds one fresh entry
// per initial destination.
func NewController[T any](initial ...T) *Controller[T] {
	return &Controller[T]{
		backstack: Backstack[T]{Entries: Entries(initial...), Action: Idle},
	}
}

// NewControllerFromBackstack creates a controller starting at backstack.
func NewControllerFromBackstack[T any](backstack Backstack[T]) *Controller[T] {
	return &Controller[T]{backstack: New(backstack.Entries, backstack.Action)}
}

// Backstack returns the current backstack.
func (c *Controller[T]) Backstack() Backstack[T] {
	return c.backstack
}

// OnBackstackChange registers fn and returns a function that removes it.
func (c *Controller[T]) OnBackstackChange(fn Listener[T]) (remove func()) {
	slot := &listenerSlot[T]{fn: fn}
	c.listeners = append(c.listeners, slot)
	return func() {
		for i, s := range c.listeners {
			if s == slot {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetNewBackstack replaces the backstack with entries. Existing entries may
// be reused to keep their identity; new ones should come from NewEntry.
func (c *Controller[T]) SetNewBackstack(entries []*Entry[T], action Action) {
	c.backstack = New(entries, action)
	listeners := append([]*listenerSlot[T](nil), c.listeners...)
	for _, l := range listeners {
		l.fn(c.backstack)
	}
}

// Navigate appends fresh entries for destinations. No-op when destinations
// is empty.
func (c *Controller[T]) Navigate(destinations ...T) {
	if len(destinations) == 0 {
		return
	}
	c.SetNewBackstack(append(clone(c.backstack.Entries), Entries(destinations...)...), Navigate)
}

// MoveToTop moves the matching entry to the top, keeping its identity.
// Returns false when nothing matches.
func (c *Controller[T]) MoveToTop(match Match, predicate func(T) bool) bool {
	i := c.indexOf(match, predicate)
	if i < 0 {
		return false
	}
	entries := clone(c.backstack.Entries)
	entry := entries[i]
	entries = append(entries[:i], entries[i+1:]...)
	c.SetNewBackstack(append(entries, entry), Navigate)
	return true
}

// Pop removes the last entry. Returns false when the backstack is empty.
func (c *Controller[T]) Pop() bool {
	n := len(c.backstack.Entries)
	if n == 0 {
		return false
	}
	c.SetNewBackstack(c.backstack.Entries[:n-1], Pop)
	return true
}

// PopAll removes every entry. Returns false when the backstack is empty.
func (c *Controller[T]) PopAll() bool {
	if len(c.backstack.Entries) == 0 {
		return false
	}
	c.SetNewBackstack(nil, Pop)
	return true
}

// PopUpTo removes entries above the matching one (and the matching one
// itself when Inclusive). Returns false when nothing matches.
func (c *Controller[T]) PopUpTo(opts UpToOptions, predicate func(T) bool) bool {
	end := c.upTo(opts, predicate)
	if end < 0 {
		return false
	}
	c.SetNewBackstack(c.backstack.Entries[:end], Pop)
	return true
}

// ReplaceLast swaps the last entry for fresh entries of destinations. On an
// empty backstack the destinations are simply added.
func (c *Controller[T]) ReplaceLast(destinations ...T) {
	entries := c.backstack.Entries
	if n := len(entries); n > 0 {
		entries = entries[:n-1]
	}
	c.SetNewBackstack(append(clone(entries), Entries(destinations...)...), Replace)
}

// ReplaceAll replaces the whole backstack with fresh entries.
func (c *Controller[T]) ReplaceAll(destinations ...T) {
	c.SetNewBackstack(Entries(destinations...), Replace)
}

// ReplaceUpTo pops like PopUpTo and appends fresh entries of destinations.
// Returns false, leaving the backstack unchanged, when nothing matches.
func (c *Controller[T]) ReplaceUpTo(opts UpToOptions, predicate func(T) bool, destinations ...T) bool {
	end := c.upTo(opts, predicate)
	if end < 0 {
		return false
	}
	c.SetNewBackstack(append(clone(c.backstack.Entries[:end]), Entries(destinations...)...), Replace)
	return true
}

func (c *Controller[T]) upTo(opts UpToOptions, predicate func(T) bool) int {
	i := c.indexOf(opts.Match, predicate)
	if i < 0 {
		return -1
	}
	if opts.Inclusive {
		return i
	}
	return i + 1
}

func (c *Controller[T]) indexOf(match Match, predicate func(T) bool) int {
	entries := c.backstack.Entries
	if match == MatchFirst {
		for i, e := range entries {
			if predicate(e.destination) {
				return i
			}
		}
		return -1
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if predicate(entries[i].destination) {
			return i
		}
	}
	return -1
}
