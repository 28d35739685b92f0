package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
)

func record(r *Registry) *[]Event {
	var events []Event
	r.Observe(func(e Event) { events = append(events, e) })
	return &events
}

func TestSetStateStepsThroughEveryEvent(t *testing.T) {
	r := NewRegistry()
	events := record(r)

	r.SetState(Resumed)
	assert.Equal(t, []Event{OnCreate, OnStart, OnResume}, *events)

	*events = nil
	r.SetState(Destroyed)
	assert.Equal(t, []Event{OnPause, OnStop, OnDestroy}, *events)
	assert.Equal(t, Destroyed, r.State())
}

func TestSetStateSameStateIsSilent(t *testing.T) {
	r := NewRegistry()
	r.SetState(Started)
	events := record(r)
	r.SetState(Started)
	assert.Empty(t, *events)
}

func requireProgrammerError(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		v := recover()
		require.NotNil(t, v, "expected panic")
		require.True(t, gabanav.IsProgrammerError(v), "unexpected panic value %v", v)
		assert.True(t, errors.Is(v.(error), gabanav.ErrInvalidLifecycleTransition))
	}()
	fn()
}

func TestInvalidTransitionsPanic(t *testing.T) {
	requireProgrammerError(t, func() { NewRegistry().SetState(Destroyed) })

	requireProgrammerError(t, func() {
		r := NewRegistry()
		r.SetState(Created)
		r.SetState(Destroyed)
		r.SetState(Created)
	})

	requireProgrammerError(t, func() {
		r := NewRegistry()
		r.SetState(Started)
		r.SetState(Initialized)
	})

	requireProgrammerError(t, func() { NewRegistry().SetState(Destroyed - 1) })
}

func TestSubscribeReportsStates(t *testing.T) {
	r := NewRegistry()
	var states []State
	unsubscribe := r.Subscribe(func(s State) { states = append(states, s) })

	r.SetState(Started)
	unsubscribe()
	r.SetState(Resumed)

	assert.Equal(t, []State{Created, Started}, states)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, Created, Min(Created, Resumed))
	assert.Equal(t, Destroyed, Min(Resumed, Destroyed))
	assert.Equal(t, Resumed, Max(Created, Resumed))
	assert.True(t, Started.AtLeast(Created))
	assert.False(t, Initialized.AtLeast(Created))
}
