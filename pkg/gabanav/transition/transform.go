package transition

import (
	"math"
	"time"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
)

// Visual is how a layer is drawn at one instant. Offsets are fractions of
// the layer size; positive X moves right, positive Y moves down.
type Visual struct {
	Alpha   float64
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// Identity is a fully visible, untransformed layer.
var Identity = Visual{Alpha: 1, Scale: 1}

// combine stacks two visuals: alpha and scale multiply, offsets add.
func (v Visual) combine(o Visual) Visual {
	return Visual{
		Alpha:   v.Alpha * o.Alpha,
		OffsetX: v.OffsetX + o.OffsetX,
		OffsetY: v.OffsetY + o.OffsetY,
		Scale:   v.Scale * o.Scale,
	}
}

func lerp(a, b Visual, f float64) Visual {
	return Visual{
		Alpha:   a.Alpha + (b.Alpha-a.Alpha)*f,
		OffsetX: a.OffsetX + (b.OffsetX-a.OffsetX)*f,
		OffsetY: a.OffsetY + (b.OffsetY-a.OffsetY)*f,
		Scale:   a.Scale + (b.Scale-a.Scale)*f,
	}
}

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(float64) float64

var (
	Linear Easing = func(f float64) float64 { return f }
	// EaseOut decelerates towards the end.
	EaseOut Easing = func(f float64) float64 { return 1 - math.Pow(1-f, 3) }
	// EaseInOut accelerates then decelerates.
	EaseInOut Easing = func(f float64) float64 {
		if f < 0.5 {
			return 4 * f * f * f
		}
		return 1 - math.Pow(-2*f+2, 3)/2
	}
)

// EnterTransition animates a layer from From to Identity.
type EnterTransition struct {
	From     Visual
	Duration time.Duration
	Easing   Easing
}

// ExitTransition animates a layer from Identity to To.
type ExitTransition struct {
	To       Visual
	Duration time.Duration
	Easing   Easing
}

// EnterNone shows the entering layer immediately.
var EnterNone = EnterTransition{From: Identity}

// ExitNone keeps the exiting layer unchanged until the transition ends.
var ExitNone = ExitTransition{To: Identity}

func FadeIn(d time.Duration) EnterTransition {
	return EnterTransition{From: Visual{Alpha: 0, Scale: 1}, Duration: d, Easing: Linear}
}

func FadeOut(d time.Duration) ExitTransition {
	return ExitTransition{To: Visual{Alpha: 0, Scale: 1}, Duration: d, Easing: Linear}
}

// SlideInHorizontally enters from offset (fraction of width; negative is
// from the left).
func SlideInHorizontally(offset float64, d time.Duration) EnterTransition {
	return EnterTransition{From: Visual{Alpha: 1, OffsetX: offset, Scale: 1}, Duration: d, Easing: EaseOut}
}

// SlideOutHorizontally exits towards offset.
func SlideOutHorizontally(offset float64, d time.Duration) ExitTransition {
	return ExitTransition{To: Visual{Alpha: 1, OffsetX: offset, Scale: 1}, Duration: d, Easing: EaseOut}
}

func SlideInVertically(offset float64, d time.Duration) EnterTransition {
	return EnterTransition{From: Visual{Alpha: 1, OffsetY: offset, Scale: 1}, Duration: d, Easing: EaseOut}
}

func SlideOutVertically(offset float64, d time.Duration) ExitTransition {
	return ExitTransition{To: Visual{Alpha: 1, OffsetY: offset, Scale: 1}, Duration: d, Easing: EaseOut}
}

func ScaleIn(initial float64, d time.Duration) EnterTransition {
	return EnterTransition{From: Visual{Alpha: 1, Scale: initial}, Duration: d, Easing: EaseInOut}
}

func ScaleOut(target float64, d time.Duration) ExitTransition {
	return ExitTransition{To: Visual{Alpha: 1, Scale: target}, Duration: d, Easing: EaseInOut}
}

// Plus runs both enter transitions together.
func (e EnterTransition) Plus(o EnterTransition) EnterTransition {
	return EnterTransition{
		From:     e.From.combine(o.From),
		Duration: maxDuration(e.Duration, o.Duration),
		Easing:   firstEasing(e.Easing, o.Easing),
	}
}

// Plus runs both exit transitions together.
func (x ExitTransition) Plus(o ExitTransition) ExitTransition {
	return ExitTransition{
		To:       x.To.combine(o.To),
		Duration: maxDuration(x.Duration, o.Duration),
		Easing:   firstEasing(x.Easing, o.Easing),
	}
}

// With pairs an enter transition with an exit transition.
func (e EnterTransition) With(x ExitTransition) ContentTransform {
	return ContentTransform{Enter: e, Exit: x}
}

// At returns the visual of the entering layer after elapsed.
func (e EnterTransition) At(elapsed time.Duration) Visual {
	return lerp(e.From, Identity, eased(e.Easing, elapsed, e.Duration))
}

// At returns the visual of the exiting layer after elapsed.
func (x ExitTransition) At(elapsed time.Duration) Visual {
	return lerp(Identity, x.To, eased(x.Easing, elapsed, x.Duration))
}

// SizeTransform describes how the container resizes between two layers of
// different size.
type SizeTransform struct {
	Clip     bool
	Duration time.Duration
}

// ContentTransform is the full description of one transition.
type ContentTransform struct {
	Enter         EnterTransition
	Exit          ExitTransition
	SizeTransform *SizeTransform
	// TargetZIndex orders the entering layer relative to the exiting one;
	// negative values draw it underneath (typical for pops).
	TargetZIndex float64
}

// Duration is the time until both sides have settled.
func (c ContentTransform) Duration() time.Duration {
	d := maxDuration(c.Enter.Duration, c.Exit.Duration)
	if c.SizeTransform != nil {
		d = maxDuration(d, c.SizeTransform.Duration)
	}
	return d
}

// WithZIndex returns c with the given target z-index.
func (c ContentTransform) WithZIndex(z float64) ContentTransform {
	c.TargetZIndex = z
	return c
}

// WithSizeTransform returns c with the given size transform.
func (c ContentTransform) WithSizeTransform(s SizeTransform) ContentTransform {
	c.SizeTransform = &s
	return c
}

// Crossfade is the default transform.
func Crossfade(d time.Duration) ContentTransform {
	return FadeIn(d).With(FadeOut(d))
}

// DefaultTransform is a crossfade of the default duration.
func DefaultTransform() ContentTransform {
	return Crossfade(constants.DefaultTransitionDuration)
}

// Instant is a transform that completes on the first frame.
func Instant() ContentTransform {
	return EnterNone.With(ExitNone)
}

func eased(easing Easing, elapsed, total time.Duration) float64 {
	if total <= 0 || elapsed >= total {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	f := float64(elapsed) / float64(total)
	if easing == nil {
		return f
	}
	return easing(f)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func firstEasing(a, b Easing) Easing {
	if a != nil {
		return a
	}
	return b
}
