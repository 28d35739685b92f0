// Package navid provides the identities used to key backstack entries and
// navigation hosts.
//
// An ID is a random (version 4) UUID. IDs compare by value and are never
// reused, so they can key persisted state across process recreation. The
// string form is unpadded URL-safe base64 of the 16 raw bytes and is meant
// for logs and storage keys, never for comparisons.
package navid

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

var encoding = base64.RawURLEncoding

// ID identifies a single backstack entry or scoped owner.
type ID struct {
	u uuid.UUID
}

// HostID identifies a navigation host. It is a separate namespace from ID so
// several hosts can share one saved-state store without colliding.
type HostID struct {
	u uuid.UUID
}

// Zero is the zero ID. It is never produced by New.
var Zero ID

// New generates a fresh ID.
func New() ID {
	return ID{u: uuid.New()}
}

// NewHost generates a fresh HostID.
func NewHost() HostID {
	return HostID{u: uuid.New()}
}

// Parse decodes an ID from its string form.
func Parse(s string) (ID, error) {
	u, err := decode(s)
	if err != nil {
		return Zero, err
	}
	return ID{u: u}, nil
}

// ParseHost decodes a HostID from its string form.
func ParseHost(s string) (HostID, error) {
	u, err := decode(s)
	if err != nil {
		return HostID{}, err
	}
	return HostID{u: u}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and constants.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func decode(s string) (uuid.UUID, error) {
	var u uuid.UUID
	if len(s) != encoding.EncodedLen(len(u)) {
		return uuid.Nil, fmt.Errorf("navid: decode %q: want %d characters", s, encoding.EncodedLen(len(u)))
	}
	if _, err := encoding.Decode(u[:], []byte(s)); err != nil {
		return uuid.Nil, fmt.Errorf("navid: decode %q: %w", s, err)
	}
	return u, nil
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool { return id == Zero }

// UUID returns the underlying UUID.
func (id ID) UUID() uuid.UUID { return id.u }

func (id ID) String() string { return encoding.EncodeToString(id.u[:]) }

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	u, err := decode(string(text))
	if err != nil {
		return err
	}
	id.u = u
	return nil
}

// IsZero reports whether h is the zero HostID.
func (h HostID) IsZero() bool { return h == HostID{} }

func (h HostID) String() string { return encoding.EncodeToString(h.u[:]) }

func (h HostID) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HostID) UnmarshalText(text []byte) error {
	u, err := decode(string(text))
	if err != nil {
		return err
	}
	h.u = u
	return nil
}

// Key joins a host and an entry id into the storage key used for the
// entry's persisted state.
func Key(host HostID, id ID) string {
	return host.String() + "/" + id.String()
}
