package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
)

type counter struct {
	n       int
	cleared bool
}

func (c *counter) OnCleared() { c.cleared = true }

func TestGetCreatesOnce(t *testing.T) {
	s := NewStore()
	created := 0
	create := func() *counter { created++; return &counter{} }

	a := Get(s, "", create)
	b := Get(s, "", create)

	assert.Same(t, a, b)
	assert.Equal(t, 1, created)
	assert.Equal(t, []string{DefaultKey[*counter]()}, s.Keys())
}

func TestPutReplacesAndClears(t *testing.T) {
	s := NewStore()
	first := &counter{}
	s.Put("k", first)
	s.Put("k", first)
	assert.False(t, first.cleared)

	s.Put("k", &counter{})
	assert.True(t, first.cleared)
}

func TestProviderRemoveStoreClearsViewModels(t *testing.T) {
	p := NewProvider()
	id := navid.New()

	store := p.GetOrCreateStore(id)
	require.Same(t, store, p.GetOrCreateStore(id))
	vm := Get(store, "", func() *counter { return &counter{} })

	p.RemoveStore(id)

	assert.True(t, vm.cleared)
	assert.True(t, store.Cleared())
	assert.False(t, p.Has(id))
	assert.NotSame(t, store, p.GetOrCreateStore(id))
}

func TestProviderClear(t *testing.T) {
	p := NewProvider()
	vms := make([]*counter, 3)
	for i := range vms {
		vms[i] = Get(p.GetOrCreateStore(navid.New()), "", func() *counter { return &counter{} })
	}
	p.Clear()
	assert.Zero(t, p.Len())
	for _, vm := range vms {
		assert.True(t, vm.cleared)
	}
}
