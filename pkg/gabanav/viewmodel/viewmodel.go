// Package viewmodel keeps per-entry view models alive while their entry is
// on the backstack and clears them when the entry is torn down.
package viewmodel

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
)

// Clearer is implemented by view models that release resources when their
// store is cleared.
type Clearer interface {
	OnCleared()
}

// Store holds the view models of one entry by key.
type Store struct {
	models  map[string]any
	cleared bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{models: make(map[string]any)}
}

// Get returns the view model stored under key.
func (s *Store) Get(key string) (any, bool) {
	vm, ok := s.models[key]
	return vm, ok
}

// Put stores vm under key, clearing any view model it replaces.
func (s *Store) Put(key string, vm any) {
	if old, ok := s.models[key]; ok && !same(old, vm) {
		notifyCleared(old)
	}
	s.models[key] = vm
}

// Keys returns the stored keys, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.models))
	for k := range s.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear calls OnCleared on every view model and empties the store.
func (s *Store) Clear() {
	for _, k := range s.Keys() {
		notifyCleared(s.models[k])
	}
	s.models = make(map[string]any)
	s.cleared = true
}

// Cleared reports whether Clear has run.
func (s *Store) Cleared() bool { return s.cleared }

func notifyCleared(vm any) {
	if c, ok := vm.(Clearer); ok {
		c.OnCleared()
	}
}

func same(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// Get returns the view model of type VM under key, creating it with create
// when absent. The default key is derived from the type.
func Get[VM any](s *Store, key string, create func() VM) VM {
	if key == "" {
		key = DefaultKey[VM]()
	}
	if existing, ok := s.models[key]; ok {
		if vm, ok := existing.(VM); ok {
			return vm
		}
	}
	vm := create()
	s.Put(key, vm)
	return vm
}

// DefaultKey is the key Get uses when none is given.
func DefaultKey[VM any]() string {
	var zero *VM
	return fmt.Sprintf("viewmodel:%T", zero)
}

// Provider hands out one Store per id. It is shared by all entries of a
// host; only the host writes to it.
type Provider struct {
	stores map[navid.ID]*Store
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{stores: make(map[navid.ID]*Store)}
}

// GetOrCreateStore returns the store for id, creating it on first use.
func (p *Provider) GetOrCreateStore(id navid.ID) *Store {
	if s, ok := p.stores[id]; ok {
		return s
	}
	s := NewStore()
	p.stores[id] = s
	return s
}

// RemoveStore clears and forgets the store for id.
func (p *Provider) RemoveStore(id navid.ID) {
	if s, ok := p.stores[id]; ok {
		s.Clear()
		delete(p.stores, id)
	}
}

// Has reports whether a store exists for id.
func (p *Provider) Has(id navid.ID) bool {
	_, ok := p.stores[id]
	return ok
}

// Len returns the number of live stores.
func (p *Provider) Len() int { return len(p.stores) }

// Clear removes every store.
func (p *Provider) Clear() {
	for id := range p.stores {
		p.RemoveStore(id)
	}
}
