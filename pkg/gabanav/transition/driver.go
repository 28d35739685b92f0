// Package transition sequences visual transitions between backstack
// snapshots. A Driver receives target snapshots as the backstack changes,
// animates between the visible entries frame by frame, and reports the
// start and settle of each transition to a Listener.
package transition

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/host"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/metrics"
)

// Policy decides what happens to a new target that arrives while a
// transition is running.
type Policy int

const (
	// Interrupt abandons the running transition and starts towards the new
	// target from whatever was entering.
	Interrupt Policy = iota
	// QueueAll runs every target in arrival order, each to completion.
	QueueAll
	// Conflate lets the running transition finish, then goes straight to
	// the newest target, skipping everything in between.
	Conflate
)

func (p Policy) String() string {
	switch p {
	case Interrupt:
		return "interrupt"
	case QueueAll:
		return "queue_all"
	case Conflate:
		return "conflate"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names returned by Policy.String. The empty string
// is Interrupt.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "interrupt":
		return Interrupt, nil
	case "queue_all", "queueall", "queue":
		return QueueAll, nil
	case "conflate":
		return Conflate, nil
	default:
		return Interrupt, fmt.Errorf("%w: unknown transition policy %q", gabanav.ErrInvalidConfig, raw)
	}
}

// Listener is notified as transitions start and settle. host.State
// satisfies the lifecycle half of it; the router adds cleanup.
type Listener[T any] interface {
	OnTransitionStart(target host.Snapshot[T])
	OnAllTransitionsFinish(target host.Snapshot[T])
}

// Options configures a Driver.
type Options[T any] struct {
	Policy Policy
	// Selector picks the transform for each change of visible entry. A nil
	// selector makes every transition instant.
	Selector Selector[T]
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Transition is one running animation between two snapshots.
type Transition[T any] struct {
	From      host.Snapshot[T]
	To        host.Snapshot[T]
	Transform ContentTransform

	ctx     context.Context
	cancel  context.CancelFunc
	start   time.Time
	elapsed time.Duration
}

// Context is cancelled when the transition settles or is superseded.
func (t *Transition[T]) Context() context.Context { return t.ctx }

// Elapsed is the animation time seen by the last frame.
func (t *Transition[T]) Elapsed() time.Duration { return t.elapsed }

// Progress is the fraction of the transition completed, in [0,1].
func (t *Transition[T]) Progress() float64 {
	return eased(Linear, t.elapsed, t.Transform.Duration())
}

// EnterVisual is how the entering layer should be drawn now.
func (t *Transition[T]) EnterVisual() Visual { return t.Transform.Enter.At(t.elapsed) }

// ExitVisual is how the exiting layer should be drawn now.
func (t *Transition[T]) ExitVisual() Visual { return t.Transform.Exit.At(t.elapsed) }

// Driver sequences transitions according to its Policy. It is driven from a
// single goroutine: Update whenever the backstack changes, Frame once per
// rendered frame.
type Driver[T any] struct {
	policy   Policy
	selector Selector[T]
	listener Listener[T]
	recorder metrics.Recorder
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	current host.Snapshot[T]
	latest  host.Snapshot[T]
	active  *Transition[T]
	queue   []host.Snapshot[T]
	pending *host.Snapshot[T]
	closed  bool
}

// NewDriver starts idle on initial and settles it right away.
func NewDriver[T any](initial host.Snapshot[T], listener Listener[T], opts Options[T]) *Driver[T] {
	if opts.Logger == nil {
		opts.Logger = internal.GetInternalLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver[T]{
		policy:   opts.Policy,
		selector: opts.Selector,
		listener: listener,
		recorder: metrics.OrNop(opts.Recorder),
		logger:   opts.Logger.With("policy", opts.Policy.String()),
		ctx:      ctx,
		cancel:   cancel,
		current:  initial,
		latest:   initial,
	}
	d.settle(initial)
	return d
}

// Policy returns the queueing policy.
func (d *Driver[T]) Policy() Policy { return d.policy }

// Current is the snapshot last settled on, or the one a running
// transition leaves.
func (d *Driver[T]) Current() host.Snapshot[T] { return d.current }

// Latest is the most recent target passed to Update.
func (d *Driver[T]) Latest() host.Snapshot[T] { return d.latest }

// Transition returns the running transition, or nil when idle.
func (d *Driver[T]) Transition() *Transition[T] { return d.active }

// Idle reports whether nothing is running or waiting.
func (d *Driver[T]) Idle() bool {
	return d.active == nil && len(d.queue) == 0 && d.pending == nil
}

// Retained returns every snapshot the driver may still render: the current
// one, both sides of a running transition, anything queued and the latest
// target. Entries outside these are safe to destroy.
func (d *Driver[T]) Retained() []host.Snapshot[T] {
	out := []host.Snapshot[T]{d.current, d.latest}
	if d.active != nil {
		out = append(out, d.active.From, d.active.To)
	}
	out = append(out, d.queue...)
	if d.pending != nil {
		out = append(out, *d.pending)
	}
	return out
}

// Update hands the driver a new target snapshot.
func (d *Driver[T]) Update(target host.Snapshot[T]) {
	if d.closed {
		return
	}
	d.latest = target
	if d.active == nil {
		d.run(d.current, target)
		return
	}
	switch d.policy {
	case QueueAll:
		d.enqueue(target)
	case Conflate:
		if sameVisible(d.active.To, target) {
			d.active.To = target
			d.pending = nil
			return
		}
		if d.pending != nil {
			d.recorder.TransitionSuperseded()
		}
		d.pending = &target
	default:
		if sameVisible(d.active.To, target) {
			d.active.To = target
			return
		}
		from := d.active.To
		d.supersede()
		d.run(from, target)
	}
}

// Frame advances the running transition to now. Transitions measure time
// from the first frame they see.
func (d *Driver[T]) Frame(now time.Time) {
	t := d.active
	if t == nil {
		return
	}
	if t.start.IsZero() {
		t.start = now
	}
	t.elapsed = now.Sub(t.start)
	if t.elapsed >= t.Transform.Duration() {
		d.complete()
		d.drainInstant()
	}
}

// Close abandons any running or waiting transitions and settles on the
// latest target. Closing twice is a no-op.
func (d *Driver[T]) Close() {
	if d.closed {
		return
	}
	d.closed = true
	busy := !d.Idle()
	if d.active != nil {
		d.active.cancel()
		d.active = nil
	}
	d.queue = nil
	d.pending = nil
	d.current = d.latest
	if busy {
		d.settle(d.latest)
	}
	d.cancel()
}

// run starts towards target, then keeps draining waiting targets for as
// long as transitions complete without needing a frame.
func (d *Driver[T]) run(from, target host.Snapshot[T]) {
	d.begin(from, target)
	d.drainInstant()
}

func (d *Driver[T]) drainInstant() {
	for d.active != nil && d.active.Transform.Duration() <= 0 {
		d.complete()
	}
}

func (d *Driver[T]) begin(from, to host.Snapshot[T]) {
	if sameVisible(from, to) {
		d.current = to
		d.settle(to)
		d.next()
		return
	}
	transform := d.selectTransform(from, to)
	ctx, cancel := context.WithCancel(d.ctx)
	d.current = from
	d.active = &Transition[T]{From: from, To: to, Transform: transform, ctx: ctx, cancel: cancel}
	d.recorder.TransitionStarted(d.policy.String())
	d.logger.Debug("transition started",
		"from", lastID(from),
		"to", lastID(to),
		"action", string(to.Action),
		"duration", transform.Duration())
	d.listener.OnTransitionStart(to)
}

func (d *Driver[T]) complete() {
	t := d.active
	d.active = nil
	t.cancel()
	d.current = t.To
	switch d.policy {
	case QueueAll:
		d.settle(t.To)
	case Conflate:
		if d.pending != nil {
			// Superseded: the next start replaces this settle.
			d.recorder.TransitionSuperseded()
			break
		}
		d.settle(t.To)
	default:
		d.settle(t.To)
	}
	d.next()
}

// next starts the next waiting target, if any.
func (d *Driver[T]) next() {
	if d.active != nil {
		return
	}
	switch d.policy {
	case QueueAll:
		if len(d.queue) == 0 {
			return
		}
		target := d.queue[0]
		d.queue = d.queue[1:]
		d.begin(d.current, target)
	case Conflate:
		if d.pending == nil {
			return
		}
		target := *d.pending
		d.pending = nil
		d.begin(d.current, target)
	}
}

func (d *Driver[T]) enqueue(target host.Snapshot[T]) {
	if n := len(d.queue); n > 0 {
		if sameVisible(d.queue[n-1], target) {
			d.queue[n-1] = target
			return
		}
	} else if sameVisible(d.active.To, target) {
		d.active.To = target
		return
	}
	d.queue = append(d.queue, target)
}

func (d *Driver[T]) supersede() {
	t := d.active
	d.active = nil
	t.cancel()
	d.recorder.TransitionSuperseded()
	d.logger.Debug("transition superseded", "to", lastID(t.To))
}

func (d *Driver[T]) settle(s host.Snapshot[T]) {
	d.listener.OnAllTransitionsFinish(s)
	d.recorder.TransitionSettled()
}

func (d *Driver[T]) selectTransform(from, to host.Snapshot[T]) ContentTransform {
	if d.selector == nil {
		return Instant()
	}
	fromEntry, toEntry := from.LastEntry(), to.LastEntry()
	switch {
	case fromEntry == nil:
		return d.selector.FromEmptyBackstack(to.Action, toEntry.Destination())
	case toEntry == nil:
		return d.selector.ToEmptyBackstack(to.Action, fromEntry.Destination())
	default:
		return d.selector.Transition(to.Action, fromEntry.Destination(), toEntry.Destination())
	}
}

func sameVisible[T any](a, b host.Snapshot[T]) bool {
	aid, aok := a.LastID()
	bid, bok := b.LastID()
	return aok == bok && aid == bid
}

func lastID[T any](s host.Snapshot[T]) string {
	if id, ok := s.LastID(); ok {
		return id.String()
	}
	return "<empty>"
}

var _ Listener[int] = (*host.State[int])(nil)
