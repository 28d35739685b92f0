package sdlhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	name      string
	destroyed int
}

func (f *fakeTexture) Destroy() error {
	f.destroyed++
	return nil
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRU[*fakeTexture](2)
	a, b, d := &fakeTexture{name: "a"}, &fakeTexture{name: "b"}, &fakeTexture{name: "d"}

	c.Set("a", a)
	c.Set("b", b)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", d)
	assert.Equal(t, 1, b.destroyed)
	assert.Zero(t, a.destroyed)

	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRUReplaceDestroysOldValue(t *testing.T) {
	c := newLRU[*fakeTexture](2)
	old, replacement := &fakeTexture{}, &fakeTexture{}

	c.Set("a", old)
	c.Set("a", old)
	assert.Zero(t, old.destroyed, "setting the same value again keeps it")

	c.Set("a", replacement)
	assert.Equal(t, 1, old.destroyed)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, c.Len())
}

func TestLRUPrune(t *testing.T) {
	c := newLRU[*fakeTexture](4)
	values := map[string]*fakeTexture{"a": {}, "b": {}, "c": {}}
	for k, v := range values {
		c.Set(k, v)
	}

	c.Prune(func(key string) bool { return key == "b" })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, values["a"].destroyed)
	assert.Zero(t, values["b"].destroyed)
	assert.Equal(t, 1, values["c"].destroyed)

	c.Destroy()
	assert.Equal(t, 1, values["b"].destroyed)
	assert.Zero(t, c.Len())
}
