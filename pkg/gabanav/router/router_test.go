package router_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/config"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/host"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/lifecycle"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/metrics"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/router"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/transition"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/viewmodel"
)

type detailViewModel struct {
	cleared bool
}

func (vm *detailViewModel) OnCleared() { vm.cleared = true }

func visibleScope(t *testing.T, r *router.Router[Screen]) *router.Scope[Screen] {
	t.Helper()
	layers := r.Layers()
	require.NotEmpty(t, layers)
	return layers[len(layers)-1].Scope
}

func TestPopTearsDownEntry(t *testing.T) {
	r := router.New(router.Options[Screen]{}, ScreenGameList)
	defer r.Close()

	r.Controller().Navigate(ScreenGameDetail)
	detail := visibleScope(t, r)
	vm := viewmodel.Get(detail.ViewModels(), "", func() *detailViewModel { return &detailViewModel{} })
	entry := detail.Entry()

	list, ok := detail.FindFirst(func(s Screen) bool { return s == ScreenGameList })
	require.True(t, ok)
	assert.Equal(t, lifecycle.Created, list.LifecycleState())
	assert.Equal(t, lifecycle.Resumed, entry.LifecycleState())

	require.True(t, r.Back())
	assert.True(t, entry.IsDestroyed())
	assert.True(t, vm.cleared)
	assert.Equal(t, lifecycle.Resumed, list.LifecycleState())
	assert.Len(t, r.Entries(), 1)
}

func TestLayersFollowTargetZIndex(t *testing.T) {
	r := router.New(router.Options[Screen]{
		Selector: transition.DirectionalSelector[Screen](),
	}, ScreenGameList, ScreenGameDetail)
	defer r.Close()

	now := time.Unix(0, 0)
	r.Controller().Navigate(ScreenSettings)
	r.Frame(now)
	layers := r.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, ScreenGameDetail, layers[0].Scope.Destination())
	assert.True(t, layers[1].Entering)
	assert.Equal(t, lifecycle.Started, layers[1].Scope.Lifecycle())
	assert.Equal(t, lifecycle.Started, layers[0].Scope.Lifecycle())

	r.Frame(now.Add(time.Second))
	require.True(t, r.Idle())

	r.Back()
	r.Frame(now.Add(2 * time.Second))
	layers = r.Layers()
	require.Len(t, layers, 2)
	assert.True(t, layers[0].Entering, "pop draws the entering layer underneath")
	assert.Equal(t, ScreenGameDetail, layers[0].Scope.Destination())
	assert.Equal(t, ScreenSettings, layers[1].Scope.Destination())

	r.Frame(now.Add(3 * time.Second))
	assert.Len(t, r.Layers(), 1)
	assert.Len(t, r.Entries(), 2)
}

func TestScopedAndSharedOwners(t *testing.T) {
	r := router.New(router.Options[Screen]{
		ScopeSpec: func(s Screen) []string {
			if s == ScreenGameDetail {
				return []string{"detail-flow"}
			}
			return nil
		},
	}, ScreenGameList)
	defer r.Close()

	list := visibleScope(t, r)
	assert.Panics(t, func() { list.ScopedOwner("detail-flow") })
	cart := list.SharedOwner("cart")

	r.Controller().Navigate(ScreenGameDetail)
	detail := visibleScope(t, r)
	flow := detail.ScopedOwner("detail-flow")
	assert.Equal(t, lifecycle.Resumed, flow.LifecycleState())
	assert.Same(t, cart, detail.SharedOwner("cart"))

	r.Back()
	assert.True(t, flow.IsDestroyed())
	assert.False(t, cart.IsDestroyed())

	r.Close()
	assert.True(t, cart.IsDestroyed())
}

func TestHostLifecycleCapsRouter(t *testing.T) {
	hostLifecycle := lifecycle.NewRegistry()
	hostLifecycle.SetState(lifecycle.Started)

	r := router.New(router.Options[Screen]{Lifecycle: hostLifecycle}, ScreenGameList)
	defer r.Close()
	scope := visibleScope(t, r)
	assert.Equal(t, lifecycle.Started, scope.Lifecycle())

	hostLifecycle.SetState(lifecycle.Resumed)
	assert.Equal(t, lifecycle.Resumed, scope.Lifecycle())

	hostLifecycle.SetState(lifecycle.Created)
	assert.Equal(t, lifecycle.Created, scope.Lifecycle())
}

func TestCloseDestroysEntriesAndStopsSaving(t *testing.T) {
	reg := savedstate.NewRegistry(nil)
	r := router.New(router.Options[Screen]{SavedState: reg}, ScreenGameList, ScreenGameDetail)
	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.NotEmpty(t, reg.Keys())

	r.Close()
	for _, e := range entries {
		assert.True(t, e.IsDestroyed())
	}
	assert.Empty(t, reg.Keys())

	r.Controller().Navigate(ScreenSettings)
	assert.Empty(t, r.State().Entries())
	r.Close()
}

func TestCorruptRouterStateStartsFresh(t *testing.T) {
	reg := savedstate.NewRegistry(map[string][]byte{"router/main": []byte("{not json")})
	r := router.New(router.Options[Screen]{SavedState: reg}, ScreenSettings)
	defer r.Close()

	assert.Equal(t, []Screen{ScreenSettings}, r.Controller().Backstack().Destinations())
	assert.False(t, r.HostID().IsZero())
}

func TestNamedRoutersRestoreIndependently(t *testing.T) {
	reg := savedstate.NewRegistry(nil)
	a := router.New(router.Options[Screen]{Name: "a", SavedState: reg}, ScreenGameList)
	b := router.New(router.Options[Screen]{Name: "b", SavedState: reg}, ScreenSettings)
	a.Controller().Navigate(ScreenGameDetail)

	blobs, err := a.Save()
	require.NoError(t, err)

	restored := savedstate.NewRegistry(blobs)
	ra := router.New(router.Options[Screen]{Name: "a", SavedState: restored})
	rb := router.New(router.Options[Screen]{Name: "b", SavedState: restored})
	assert.Equal(t, a.HostID(), ra.HostID())
	assert.Equal(t, b.HostID(), rb.HostID())
	assert.Equal(t, []Screen{ScreenGameList, ScreenGameDetail}, ra.Controller().Backstack().Destinations())
	assert.Equal(t, []Screen{ScreenSettings}, rb.Controller().Backstack().Destinations())
	assert.Equal(t,
		a.Controller().Backstack().Last().ID(),
		ra.Controller().Backstack().Last().ID())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[transitions]
policy = "queue_all"
duration = "100ms"

[[transitions.rules]]
when = 'to == "Settings"'
enter = "slide_up"
exit = "none"
`))
	require.NoError(t, err)

	opts, err := router.OptionsFromConfig[Screen](cfg, Screen.String)
	require.NoError(t, err)
	assert.Equal(t, transition.QueueAll, opts.Policy)

	r := router.New(opts, ScreenGameList)
	defer r.Close()
	r.Controller().Navigate(ScreenSettings)
	tr := r.Driver().Transition()
	require.NotNil(t, tr)
	assert.Equal(t, 1.0, tr.Transform.Enter.From.OffsetY)
	assert.Equal(t, 100*time.Millisecond, tr.Transform.Duration())
}

func TestQueueAllRouterSettlesEveryTarget(t *testing.T) {
	var settled []Screen
	r := router.New(router.Options[Screen]{
		Policy:   transition.QueueAll,
		Selector: transition.CrossfadeSelector[Screen](),
	}, ScreenGameList)
	defer r.Close()

	// Observe settles through each visible entry's lifecycle.
	watch := func(e *host.Entry[Screen]) {
		e.ObserveLifecycle(func(ev lifecycle.Event) {
			if ev == lifecycle.OnResume {
				settled = append(settled, e.Destination())
			}
		})
	}
	r.Controller().Navigate(ScreenGameDetail)
	r.Controller().Navigate(ScreenSettings)
	for _, e := range r.State().Entries() {
		watch(e)
	}

	now := time.Unix(0, 0)
	for i := 0; i < 20 && !r.Idle(); i++ {
		r.Frame(now)
		now = now.Add(200 * time.Millisecond)
	}
	require.True(t, r.Idle())
	assert.Equal(t, []Screen{ScreenGameDetail, ScreenSettings}, settled)
	assert.Equal(t, backstack.Navigate, r.Driver().Current().Action)
}

func TestOptionsFromConfigRegistersMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "router_test"

	opts, err := router.OptionsFromConfig[Screen](cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &metrics.Prometheus{}, opts.Recorder)

	again, err := router.OptionsFromConfig[Screen](cfg, nil)
	require.NoError(t, err, "a second router reuses the registered collectors")
	assert.NotNil(t, again.Recorder)
}
