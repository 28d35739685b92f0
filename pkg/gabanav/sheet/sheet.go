// Package sheet holds the navigation-facing policy of bottom-sheet
// destinations: which anchor a sheet moves to when its available anchors
// change, and waiting for anchors before a sheet may start animating.
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
)

// Value is a resting position of a sheet.
type Value int

const (
	Hidden Value = iota
	HalfExpanded
	Expanded
)

func (v Value) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case HalfExpanded:
		return "half_expanded"
	case Expanded:
		return "expanded"
	default:
		return fmt.Sprintf("value(%d)", int(v))
	}
}

// priority lists, for each previous target, the candidates to try in order
// when anchors change. Hidden never re-targets upwards.
var priority = map[Value][]Value{
	Hidden:       {Hidden},
	HalfExpanded: {HalfExpanded, Expanded, Hidden},
	Expanded:     {Expanded, HalfExpanded, Hidden},
}

// NewTarget returns the first candidate for previous for which has reports it as
// available. ok is false when none does.
func NewTarget(previous Value, has func(Value) bool) (target Value, ok bool) {
	for _, candidate := range priority[previous] {
		if has(candidate) {
			return candidate, true
		}
	}
	return previous, false
}

// Anchors are the pixel offsets of a sheet's resting positions. They are
// written by the layout pass and read by gesture and animation code, and
// are safe for concurrent use.
type Anchors struct {
	mu        sync.RWMutex
	positions map[Value]float32

	known atomic.Bool
	once  sync.Once
	ready chan struct{}
}

func NewAnchors() *Anchors {
	return &Anchors{positions: map[Value]float32{}, ready: make(chan struct{})}
}

// Update replaces the anchors. The first call releases Await.
func (a *Anchors) Update(positions map[Value]float32) {
	a.mu.Lock()
	a.positions = make(map[Value]float32, len(positions))
	for v, p := range positions {
		a.positions[v] = p
	}
	a.mu.Unlock()

	a.once.Do(func() {
		a.known.Store(true)
		close(a.ready)
	})
}

// Known reports whether anchors have been set at least once.
func (a *Anchors) Known() bool { return a.known.Load() }

func (a *Anchors) Has(v Value) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.positions[v]
	return ok
}

func (a *Anchors) Position(v Value) (float32, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.positions[v]
	return p, ok
}

// Values returns the available values in ascending order.
func (a *Anchors) Values() []Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Value, 0, len(a.positions))
	for v := range a.positions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Await blocks until anchors are first known or ctx is done.
func (a *Anchors) Await(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler tracks a sheet's target and re-targets it when anchors change.
// Its methods run on the UI goroutine.
type Handler struct {
	anchors *Anchors
	target  Value
	logger  *slog.Logger
}

func NewHandler(anchors *Anchors, initial Value) *Handler {
	return &Handler{
		anchors: anchors,
		target:  initial,
		logger:  internal.GetInternalLogger().With("component", "sheet"),
	}
}

func (h *Handler) Target() Value { return h.target }

func (h *Handler) Anchors() *Anchors { return h.anchors }

// OnAnchorsChanged applies new anchors and picks the new target. changed
// reports whether the target moved.
func (h *Handler) OnAnchorsChanged(positions map[Value]float32) (target Value, changed bool) {
	h.anchors.Update(positions)
	next, ok := NewTarget(h.target, h.anchors.Has)
	if !ok {
		h.logger.Warn("No anchor available for sheet target", "target", h.target.String())
		return h.target, false
	}
	if next == h.target {
		return next, false
	}
	h.logger.Debug("Sheet re-targeted", "from", h.target.String(), "to", next.String())
	h.target = next
	return next, true
}

// AnimateTo waits for anchors, then makes v the target. It fails when v has
// no anchor.
func (h *Handler) AnimateTo(ctx context.Context, v Value) error {
	if err := h.anchors.Await(ctx); err != nil {
		return err
	}
	if !h.anchors.Has(v) {
		return fmt.Errorf("sheet: no anchor for %s", v)
	}
	h.target = v
	return nil
}
