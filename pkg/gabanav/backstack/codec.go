package backstack

import (
	"encoding/json"
	"fmt"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
)

// wireEntry is the persisted form of an Entry. Destination is only written
// for the first occurrence of an id; later occurrences refer back to it.
type wireEntry struct {
	ID          navid.ID        `json:"id"`
	Destination json.RawMessage `json:"destination,omitempty"`
}

type wireBackstack struct {
	Entries []wireEntry `json:"entries"`
	Action  Action      `json:"action"`
}

// MarshalJSON encodes the backstack, writing each shared entry's
// destination once.
func (b Backstack[T]) MarshalJSON() ([]byte, error) {
	wire := wireBackstack{
		Entries: make([]wireEntry, 0, len(b.Entries)),
		Action:  b.Action,
	}
	written := make(map[navid.ID]struct{}, len(b.Entries))
	for _, e := range b.Entries {
		w := wireEntry{ID: e.id}
		if _, ok := written[e.id]; !ok {
			raw, err := json.Marshal(e.destination)
			if err != nil {
				return nil, fmt.Errorf("backstack: encode destination %s: %w", e.id, err)
			}
			w.Destination = raw
			written[e.id] = struct{}{}
		}
		wire.Entries = append(wire.Entries, w)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a backstack, restoring one shared *Entry per id.
func (b *Backstack[T]) UnmarshalJSON(data []byte) error {
	var wire wireBackstack
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("backstack: decode: %w", err)
	}
	restored := make(map[navid.ID]*Entry[T], len(wire.Entries))
	entries := make([]*Entry[T], 0, len(wire.Entries))
	for i, w := range wire.Entries {
		if e, ok := restored[w.ID]; ok {
			entries = append(entries, e)
			continue
		}
		if len(w.Destination) == 0 {
			return fmt.Errorf("backstack: decode: entry %d (%s) has no destination", i, w.ID)
		}
		var dest T
		if err := json.Unmarshal(w.Destination, &dest); err != nil {
			return fmt.Errorf("backstack: decode destination %s: %w", w.ID, err)
		}
		e := NewEntryWithID(w.ID, dest)
		restored[w.ID] = e
		entries = append(entries, e)
	}
	action := wire.Action
	if action == "" {
		action = Idle
	}
	*b = Backstack[T]{Entries: entries, Action: action}
	return nil
}

// MarshalJSON persists the controller's current backstack.
func (c *Controller[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.backstack)
}

// UnmarshalJSON restores the controller's backstack without notifying
// listeners.
func (c *Controller[T]) UnmarshalJSON(data []byte) error {
	var b Backstack[T]
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	c.backstack = b
	return nil
}
