package savedstate

import (
	"encoding/json"
	"log/slog"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
)

// UIStateHolder keeps UI state (scroll positions, text input) per entry key
// so it survives the entry leaving the screen and process recreation.
type UIStateHolder interface {
	Bucket(key string) *Bundle
	RemoveState(key string)
}

// Holder is a UIStateHolder persisted through a Store under a single key.
type Holder struct {
	store    Store
	key      string
	buckets  map[string]*Bundle
	restored map[string]json.RawMessage
	logger   *slog.Logger
}

// NewHolder restores any state saved under key and registers itself as the
// provider for that key.
func NewHolder(store Store, key string) *Holder {
	h := &Holder{
		store:    store,
		key:      key,
		buckets:  make(map[string]*Bundle),
		restored: make(map[string]json.RawMessage),
		logger:   internal.GetInternalLogger(),
	}
	if data, ok := store.ConsumeRestoredStateForKey(key); ok {
		if err := json.Unmarshal(data, &h.restored); err != nil {
			h.logger.Warn("Discarding corrupt UI state", "key", key, "error", err)
			h.restored = make(map[string]json.RawMessage)
		}
	}
	store.RegisterProvider(key, h.save)
	return h
}

// Bucket returns the bundle for key, restoring it on first access.
func (h *Holder) Bucket(key string) *Bundle {
	if b, ok := h.buckets[key]; ok {
		return b
	}
	b := NewBundle()
	if raw, ok := h.restored[key]; ok {
		delete(h.restored, key)
		decoded, err := DecodeBundle(raw)
		if err != nil {
			h.logger.Warn("Discarding corrupt UI state bucket", "key", key, "error", err)
		} else {
			b = decoded
		}
	}
	h.buckets[key] = b
	return b
}

// RemoveState forgets everything stored for key.
func (h *Holder) RemoveState(key string) {
	delete(h.buckets, key)
	delete(h.restored, key)
}

// Has reports whether any state, live or restored, exists for key.
func (h *Holder) Has(key string) bool {
	_, live := h.buckets[key]
	_, restored := h.restored[key]
	return live || restored
}

// Close unregisters the holder from its store.
func (h *Holder) Close() {
	h.store.UnregisterProvider(h.key)
}

func (h *Holder) save() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(h.buckets)+len(h.restored))
	for k, v := range h.restored {
		out[k] = v
	}
	for k, b := range h.buckets {
		data, err := b.Encode()
		if err != nil {
			return nil, err
		}
		out[k] = data
	}
	return json.Marshal(out)
}
