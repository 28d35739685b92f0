package backstack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type screen string

func ids[T any](entries []*Entry[T]) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID().String()
	}
	return out
}

func TestNavigateAppendsFreshEntries(t *testing.T) {
	c := NewController[screen]("a")
	before := c.Backstack()

	c.Navigate("b", "c")

	after := c.Backstack()
	require.Equal(t, before.Len()+2, after.Len())
	assert.Equal(t, Navigate, after.Action)
	assert.Equal(t, before.Entries[0], after.Entries[0])
	assert.Equal(t, []screen{"a", "b", "c"}, after.Destinations())
	assert.NotEqual(t, after.Entries[1].ID(), after.Entries[2].ID())
}

func TestNavigateEmptyIsNoop(t *testing.T) {
	c := NewController[screen]("a")
	c.Pop()
	before := c.Backstack()
	calls := 0
	c.OnBackstackChange(func(Backstack[screen]) { calls++ })

	c.Navigate()

	assert.Equal(t, before, c.Backstack())
	assert.Equal(t, Pop, c.Backstack().Action)
	assert.Zero(t, calls)
}

func TestPopOnEmpty(t *testing.T) {
	for _, action := range []Action{Idle, Navigate, Replace, Pop} {
		c := NewControllerFromBackstack(New[screen](nil, action))
		calls := 0
		c.OnBackstackChange(func(Backstack[screen]) { calls++ })

		assert.False(t, c.Pop())
		assert.False(t, c.PopAll())
		assert.True(t, c.Backstack().IsEmpty())
		assert.Equal(t, action, c.Backstack().Action)
		assert.Zero(t, calls)
	}
}

func TestPopRemovesLast(t *testing.T) {
	c := NewController[screen]("a", "b")
	require.True(t, c.Pop())
	assert.Equal(t, []screen{"a"}, c.Backstack().Destinations())
	assert.Equal(t, Pop, c.Backstack().Action)

	require.True(t, c.PopAll())
	assert.True(t, c.Backstack().IsEmpty())
}

func TestPopUpToMatch(t *testing.T) {
	isA := func(s screen) bool { return s == "a" }

	first := NewController[screen]("a", "a", "b")
	require.True(t, first.PopUpTo(UpToOptions{Match: MatchFirst}, isA))
	assert.Equal(t, []screen{"a"}, first.Backstack().Destinations())

	last := NewController[screen]("a", "a", "b")
	require.True(t, last.PopUpTo(UpToOptions{Match: MatchLast}, isA))
	assert.Equal(t, []screen{"a", "a"}, last.Backstack().Destinations())

	inclusive := NewController[screen]("a", "a", "b")
	require.True(t, inclusive.PopUpTo(UpToOptions{Inclusive: true, Match: MatchFirst}, isA))
	assert.True(t, inclusive.Backstack().IsEmpty())

	missing := NewController[screen]("b")
	assert.False(t, missing.PopUpTo(UpToOptions{}, isA))
	assert.Equal(t, Idle, missing.Backstack().Action)
}

func TestReplaceOperations(t *testing.T) {
	c := NewController[screen]("a", "b")
	a := c.Backstack().Entries[0]

	c.ReplaceLast("c")
	assert.Equal(t, []screen{"a", "c"}, c.Backstack().Destinations())
	assert.Equal(t, Replace, c.Backstack().Action)
	assert.Same(t, a, c.Backstack().Entries[0])

	require.True(t, c.ReplaceUpTo(UpToOptions{Inclusive: true}, func(s screen) bool { return s == "c" }, "d", "e"))
	assert.Equal(t, []screen{"a", "d", "e"}, c.Backstack().Destinations())

	assert.False(t, c.ReplaceUpTo(UpToOptions{}, func(s screen) bool { return s == "z" }, "x"))

	c.ReplaceAll("f")
	assert.Equal(t, []screen{"f"}, c.Backstack().Destinations())
	assert.NotEqual(t, a.ID(), c.Backstack().Entries[0].ID())

	empty := NewController[screen]()
	empty.ReplaceLast("g")
	assert.Equal(t, []screen{"g"}, empty.Backstack().Destinations())
}

func TestMoveToTopKeepsIdentity(t *testing.T) {
	c := NewController[screen]("home", "search", "profile")
	search := c.Backstack().Entries[1]

	require.True(t, c.MoveToTop(MatchLast, func(s screen) bool { return s == "search" }))
	assert.Equal(t, []screen{"home", "profile", "search"}, c.Backstack().Destinations())
	assert.Same(t, search, c.Backstack().Last())

	assert.False(t, c.MoveToTop(MatchLast, func(s screen) bool { return s == "missing" }))
}

func TestListenersFireSynchronously(t *testing.T) {
	c := NewController[screen]("a")
	var seen []Backstack[screen]
	remove := c.OnBackstackChange(func(b Backstack[screen]) { seen = append(seen, b) })

	c.Navigate("b")
	require.Len(t, seen, 1)
	assert.Equal(t, c.Backstack(), seen[0])

	remove()
	c.Pop()
	assert.Len(t, seen, 1)
}

func TestBackstackIsNotAliased(t *testing.T) {
	c := NewController[screen]("a", "b")
	before := c.Backstack()
	c.Pop()
	c.Navigate("c")
	assert.Equal(t, []screen{"a", "b"}, before.Destinations())
}

func TestRoundTripPreservesSharedEntries(t *testing.T) {
	a, b, cc, d := NewEntry[screen]("A"), NewEntry[screen]("B"), NewEntry[screen]("C"), NewEntry[screen]("D")
	original := New([]*Entry[screen]{a, b, cc, cc, cc, b, d}, Navigate)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var wire struct {
		Entries []map[string]json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))
	withDestination := 0
	for _, e := range wire.Entries {
		if _, ok := e["destination"]; ok {
			withDestination++
		}
	}
	assert.Equal(t, 4, withDestination)

	var restored Backstack[screen]
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Equal(t, original.Len(), restored.Len())
	assert.Equal(t, ids(original.Entries), ids(restored.Entries))
	assert.Equal(t, original.Destinations(), restored.Destinations())
	assert.Equal(t, Navigate, restored.Action)

	e := restored.Entries
	assert.Same(t, e[2], e[3])
	assert.Same(t, e[3], e[4])
	assert.Same(t, e[1], e[5])
	assert.NotSame(t, e[0], e[1])
}

func TestDecodeRejectsDanglingReference(t *testing.T) {
	data := []byte(`{"entries":[{"id":"` + NewEntry[screen]("x").ID().String() + `"}],"action":"Pop"}`)
	var b Backstack[screen]
	assert.Error(t, json.Unmarshal(data, &b))
}

func TestControllerRoundTrip(t *testing.T) {
	c := NewController[screen]("a", "b")
	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := NewController[screen]()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, ids(c.Backstack().Entries), ids(restored.Backstack().Entries))
	assert.Equal(t, Idle, restored.Backstack().Action)
}
