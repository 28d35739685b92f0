// Package savedstate persists entry state across process recreation.
//
// A Store hands out previously saved blobs once per key and collects fresh
// blobs from registered providers when the process is about to die. Registry
// is the in-memory Store; the sqlite subpackage writes a Registry's output to
// disk. Bundle is the keyed value container each entry owns, and Holder keeps
// per-entry UI state on top of a Store.
package savedstate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
)

// Provider produces the current state for one key.
type Provider func() ([]byte, error)

// Store is the keyed saved-state contract consumed by the navigation host.
type Store interface {
	// ConsumeRestoredStateForKey returns the restored blob for key and
	// forgets it. The second result is false when nothing was restored.
	ConsumeRestoredStateForKey(key string) ([]byte, bool)
	// RegisterProvider makes p the source of key's state on the next save.
	RegisterProvider(key string, p Provider)
	// UnregisterProvider drops key from future saves.
	UnregisterProvider(key string)
}

// Registry is an in-memory Store.
type Registry struct {
	restored  map[string][]byte
	providers map[string]Provider
	logger    *slog.Logger
}

// NewRegistry returns a registry seeded with state saved by a previous
// process. restored may be nil.
func NewRegistry(restored map[string][]byte) *Registry {
	r := &Registry{
		restored:  make(map[string][]byte, len(restored)),
		providers: make(map[string]Provider),
		logger:    internal.GetInternalLogger(),
	}
	for k, v := range restored {
		r.restored[k] = v
	}
	return r
}

func (r *Registry) ConsumeRestoredStateForKey(key string) ([]byte, bool) {
	data, ok := r.restored[key]
	if ok {
		delete(r.restored, key)
	}
	return data, ok
}

func (r *Registry) RegisterProvider(key string, p Provider) {
	r.providers[key] = p
}

func (r *Registry) UnregisterProvider(key string) {
	delete(r.providers, key)
}

// HasProvider reports whether a provider is registered for key.
func (r *Registry) HasProvider(key string) bool {
	_, ok := r.providers[key]
	return ok
}

// Keys returns the registered provider keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PerformSave collects state from every provider. Restored blobs that were
// never consumed are carried over so lazily restored entries survive a
// second process death. Provider failures are skipped and reported together.
func (r *Registry) PerformSave() (map[string][]byte, error) {
	out := make(map[string][]byte, len(r.restored)+len(r.providers))
	for k, v := range r.restored {
		out[k] = v
	}
	var errs []error
	for _, key := range r.Keys() {
		data, err := r.providers[key]()
		if err != nil {
			r.logger.Warn("Saved state provider failed", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("savedstate: provider %q: %w", key, err))
			continue
		}
		out[key] = data
	}
	return out, errors.Join(errs...)
}

// Discard drops any restored state for key without using it.
func (r *Registry) Discard(key string) {
	delete(r.restored, key)
}
