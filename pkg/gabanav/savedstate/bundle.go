package savedstate

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Bundle is a keyed container of JSON-encoded values. Each navigation entry
// owns one; its content survives process recreation.
type Bundle struct {
	values    map[string]json.RawMessage
	providers map[string]func() any
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{
		values:    make(map[string]json.RawMessage),
		providers: make(map[string]func() any),
	}
}

// DecodeBundle restores a bundle produced by Encode.
func DecodeBundle(data []byte) (*Bundle, error) {
	b := NewBundle()
	if len(data) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(data, &b.values); err != nil {
		return nil, fmt.Errorf("savedstate: decode bundle: %w", err)
	}
	if b.values == nil {
		b.values = make(map[string]json.RawMessage)
	}
	return b, nil
}

// Encode serializes stored values together with the current output of every
// registered provider.
func (b *Bundle) Encode() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(b.values)+len(b.providers))
	for k, v := range b.values {
		out[k] = v
	}
	for k, fn := range b.providers {
		raw, err := json.Marshal(fn())
		if err != nil {
			return nil, fmt.Errorf("savedstate: encode %q: %w", k, err)
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

// Put stores v under key.
func (b *Bundle) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("savedstate: put %q: %w", key, err)
	}
	b.values[key] = raw
	return nil
}

// Get decodes the value under key into out. It reports false when the key
// is absent.
func (b *Bundle) Get(key string, out any) (bool, error) {
	if fn, ok := b.providers[key]; ok {
		raw, err := json.Marshal(fn())
		if err != nil {
			return false, fmt.Errorf("savedstate: get %q: %w", key, err)
		}
		return true, json.Unmarshal(raw, out)
	}
	raw, ok := b.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("savedstate: get %q: %w", key, err)
	}
	return true, nil
}

// Provide registers fn as the live source for key. Its result is captured
// at every Encode. The returned function unregisters it.
func (b *Bundle) Provide(key string, fn func() any) (remove func()) {
	b.providers[key] = fn
	return func() { delete(b.providers, key) }
}

// Remove deletes key and any provider for it.
func (b *Bundle) Remove(key string) {
	delete(b.values, key)
	delete(b.providers, key)
}

// Keys returns every key with a value or provider, sorted.
func (b *Bundle) Keys() []string {
	seen := make(map[string]struct{}, len(b.values)+len(b.providers))
	for k := range b.values {
		seen[k] = struct{}{}
	}
	for k := range b.providers {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Bundle) Len() int { return len(b.Keys()) }
