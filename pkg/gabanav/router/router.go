package router

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/config"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/host"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/lifecycle"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/metrics"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/transition"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/viewmodel"
)

// DefaultName names a router when Options.Name is empty.
const DefaultName = "main"

// Options configures a Router. Zero values get working defaults.
type Options[T any] struct {
	Name       string                 // Keys the router's persisted state; one per host
	HostID     navid.HostID           // Used when nothing is restored; generated when zero
	Policy     transition.Policy      // Queueing policy for transitions
	Selector   transition.Selector[T] // Nil makes every transition instant
	ScopeSpec  func(T) []string       // Scope keys a destination declares
	Lifecycle  lifecycle.Source       // Host lifecycle; always Resumed when nil
	SavedState *savedstate.Registry   // Saved state, possibly restored from a previous process
	ViewModels *viewmodel.Provider
	Recorder   metrics.Recorder
	Logger     *slog.Logger
}

// OptionsFromConfig builds options carrying the configured policy and a rule
// selector over the configured rules. namer names destinations for rules.
// With metrics enabled, a Prometheus recorder is registered on the default
// registerer.
func OptionsFromConfig[T any](cfg config.Config, namer transition.Namer[T]) (Options[T], error) {
	policy, err := cfg.Policy()
	if err != nil {
		return Options[T]{}, err
	}
	selector, err := transition.NewRuleSelector(cfg.TransitionRules(), namer, cfg.Fallback(), nil)
	if err != nil {
		return Options[T]{}, err
	}
	opts := Options[T]{Policy: policy, Selector: selector}
	if cfg.Metrics.Enabled {
		recorder, err := metrics.NewPrometheus(prometheus.DefaultRegisterer, cfg.Metrics.Namespace)
		if err != nil {
			return Options[T]{}, fmt.Errorf("register metrics: %w", err)
		}
		opts.Recorder = recorder
	}
	return opts, nil
}

// Router is a navigation host. It owns the controller, keeps the entry
// registry in step with the backstack and sequences transitions.
//
// Router is not safe for concurrent use. Navigate, Frame and Render from
// the UI goroutine.
type Router[T any] struct {
	name       string
	hostID     navid.HostID
	controller *backstack.Controller[T]
	state      *host.State[T]
	driver     *transition.Driver[T]
	registry   *savedstate.Registry
	uiState    *savedstate.Holder
	logger     *slog.Logger

	stopListening func()
	closed        bool
}

type persisted[T any] struct {
	HostID    navid.HostID           `json:"hostId"`
	Backstack backstack.Backstack[T] `json:"backstack"`
}

// New creates a router starting at initial. When opts.SavedState holds
// state saved by an earlier router of the same name, the backstack, host id
// and entry state are restored from it and initial is ignored.
func New[T any](opts Options[T], initial ...T) *Router[T] {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.SavedState == nil {
		opts.SavedState = savedstate.NewRegistry(nil)
	}
	if opts.Logger == nil {
		opts.Logger = internal.GetInternalLogger()
	}

	r := &Router[T]{
		name:     opts.Name,
		hostID:   opts.HostID,
		registry: opts.SavedState,
		logger:   opts.Logger.With("router", opts.Name),
	}

	r.controller = backstack.NewController(initial...)
	if data, ok := r.registry.ConsumeRestoredStateForKey(r.key()); ok {
		var saved persisted[T]
		if err := json.Unmarshal(data, &saved); err != nil {
			r.logger.Warn("Discarding corrupt router state", "error", err)
		} else {
			r.hostID = saved.HostID
			r.controller = backstack.NewControllerFromBackstack(saved.Backstack)
			r.logger.Debug("Router restored", "entries", saved.Backstack.Len())
		}
	}
	if r.hostID.IsZero() {
		r.hostID = navid.NewHost()
	}
	r.registry.RegisterProvider(r.key(), r.save)

	r.uiState = savedstate.NewHolder(r.registry, r.key()+"/ui")
	r.state = host.New(r.controller.Backstack(), host.Options[T]{
		HostID:     r.hostID,
		Lifecycle:  opts.Lifecycle,
		SavedState: r.registry,
		ViewModels: opts.ViewModels,
		UIState:    r.uiState,
		ScopeSpec:  opts.ScopeSpec,
		Recorder:   opts.Recorder,
		Logger:     r.logger,
	})
	r.driver = transition.NewDriver(r.state.TargetSnapshot(), listener[T]{r}, transition.Options[T]{
		Policy:   opts.Policy,
		Selector: opts.Selector,
		Recorder: opts.Recorder,
		Logger:   r.logger,
	})
	r.stopListening = r.controller.OnBackstackChange(r.onBackstackChange)
	return r
}

func (r *Router[T]) key() string { return "router/" + r.name }

func (r *Router[T]) save() ([]byte, error) {
	return json.Marshal(persisted[T]{HostID: r.hostID, Backstack: r.controller.Backstack()})
}

// Controller returns the controller that navigates this router.
func (r *Router[T]) Controller() *backstack.Controller[T] { return r.controller }

// HostID returns the id keying this router's entry state.
func (r *Router[T]) HostID() navid.HostID { return r.hostID }

// State returns the entry registry.
func (r *Router[T]) State() *host.State[T] { return r.state }

// Driver returns the transition driver.
func (r *Router[T]) Driver() *transition.Driver[T] { return r.driver }

// Entries returns the live entries of the snapshot currently settled on.
func (r *Router[T]) Entries() []*host.Entry[T] { return r.driver.Current().Entries() }

// Idle reports whether no transition is running or waiting.
func (r *Router[T]) Idle() bool { return r.driver.Idle() }

// Frame advances transitions to now. Call once per rendered frame.
func (r *Router[T]) Frame(now time.Time) {
	r.driver.Frame(now)
}

// Back pops the top entry. It returns false, leaving the backstack alone,
// when only one entry remains; the caller decides whether that means exit.
func (r *Router[T]) Back() bool {
	if r.controller.Backstack().Len() <= 1 {
		return false
	}
	return r.controller.Pop()
}

// Layer is one destination to draw this frame.
type Layer[T any] struct {
	Scope    *Scope[T]
	Visual   transition.Visual
	Entering bool
}

// Layers returns what to draw, bottom first. Idle routers draw the visible
// entry; during a transition both sides are drawn, ordered by the target
// z-index.
func (r *Router[T]) Layers() []Layer[T] {
	t := r.driver.Transition()
	if t == nil {
		snap := r.driver.Current()
		item, ok := snap.Last()
		if !ok {
			return nil
		}
		return []Layer[T]{{Scope: r.scope(item, snap), Visual: transition.Identity}}
	}

	var layers []Layer[T]
	if item, ok := t.From.Last(); ok {
		layers = append(layers, Layer[T]{Scope: r.scope(item, t.From), Visual: t.ExitVisual()})
	}
	if item, ok := t.To.Last(); ok {
		entering := Layer[T]{Scope: r.scope(item, t.To), Visual: t.EnterVisual(), Entering: true}
		if t.Transform.TargetZIndex < 0 {
			layers = append([]Layer[T]{entering}, layers...)
		} else {
			layers = append(layers, entering)
		}
	}
	return layers
}

// Render calls fn for each layer, bottom first.
func (r *Router[T]) Render(fn func(scope *Scope[T], visual transition.Visual)) {
	for _, l := range r.Layers() {
		fn(l.Scope, l.Visual)
	}
}

// Save collects every provider of the router's saved-state registry,
// including entry bundles, UI state and the backstack.
func (r *Router[T]) Save() (map[string][]byte, error) {
	return r.registry.PerformSave()
}

// SavedState returns the registry Save reads from.
func (r *Router[T]) SavedState() *savedstate.Registry { return r.registry }

// Close settles any running transition, destroys every entry and stops
// contributing saved state. Save first to survive process recreation.
func (r *Router[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.stopListening()
	r.driver.Close()
	r.state.Clear()
	r.state.Close()
	r.uiState.Close()
	r.registry.UnregisterProvider(r.key())
	r.logger.Debug("Router closed")
}

func (r *Router[T]) onBackstackChange(bs backstack.Backstack[T]) {
	r.state.SetBackstack(bs)
	r.driver.Update(r.state.TargetSnapshot())
}

func (r *Router[T]) scope(item host.Item[T], snap host.Snapshot[T]) *Scope[T] {
	return &Scope[T]{router: r, item: item, snapshot: snap}
}

// listener settles the registry and drops entries the driver no longer
// renders.
type listener[T any] struct{ r *Router[T] }

func (l listener[T]) OnTransitionStart(target host.Snapshot[T]) {
	l.r.state.OnTransitionStart(target)
}

func (l listener[T]) OnAllTransitionsFinish(target host.Snapshot[T]) {
	l.r.state.OnAllTransitionsFinish(target)
	if l.r.driver == nil {
		l.r.state.RemoveOutdatedEntries(target)
		return
	}
	l.r.state.RemoveOutdatedEntries(l.r.driver.Retained()...)
}

// String lists the backstack destinations, for logs.
func (r *Router[T]) String() string {
	dests := r.controller.Backstack().Destinations()
	names := make([]string, len(dests))
	for i, d := range dests {
		names[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("router(%s)%v", r.name, names)
}
