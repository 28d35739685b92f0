package transition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
)

type page struct{ name string }

func pageName(p page) string { return p.name }

func TestRuleSelectorFirstMatchWins(t *testing.T) {
	fallback := Crossfade(time.Second)
	sel, err := NewRuleSelector[page]([]Rule{
		{When: `action == "pop"`, Enter: "slide_right", Exit: "slide_right", Duration: 200 * time.Millisecond, ZIndex: -1},
		{When: `fromEmpty`, Enter: "fade", Exit: "none", Duration: 150 * time.Millisecond},
		{When: `to == "settings" && from != "settings"`, Enter: "fade+scale", Exit: "fade", Duration: 250 * time.Millisecond},
		{When: `action == "pop"`, Enter: "none", Exit: "none"},
	}, pageName, fallback, nil)
	require.NoError(t, err)

	pop := sel.Transition(backstack.Pop, page{"list"}, page{"home"})
	assert.Equal(t, 200*time.Millisecond, pop.Duration())
	assert.Equal(t, -1.0, pop.TargetZIndex)
	assert.Equal(t, -1.0, pop.Enter.From.OffsetX)
	assert.Equal(t, 1.0, pop.Exit.To.OffsetX)

	first := sel.FromEmptyBackstack(backstack.Navigate, page{"home"})
	assert.Equal(t, 150*time.Millisecond, first.Duration())
	assert.Equal(t, 0.0, first.Enter.From.Alpha)
	assert.Equal(t, Identity, first.Exit.To)

	settings := sel.Transition(backstack.Navigate, page{"home"}, page{"settings"})
	assert.Equal(t, 250*time.Millisecond, settings.Duration())
	assert.Equal(t, 0.0, settings.Enter.From.Alpha)
	assert.Equal(t, 0.8, settings.Enter.From.Scale)

	other := sel.ToEmptyBackstack(backstack.Replace, page{"home"})
	assert.Equal(t, fallback.Duration(), other.Duration())
	assert.Equal(t, fallback.Exit.To, other.Exit.To)
}

func TestRuleSelectorRejectsBadRules(t *testing.T) {
	for name, rule := range map[string]Rule{
		"empty":          {When: "  "},
		"syntax":         {When: `action ==`},
		"not bool":       {When: `from`},
		"unknown effect": {When: `true`, Enter: "wobble"},
		"negative":       {When: `true`, Duration: -time.Second},
	} {
		_, err := NewRuleSelector[page]([]Rule{rule}, pageName, Instant(), nil)
		assert.ErrorIs(t, err, gabanav.ErrInvalidConfig, name)
	}
}

func TestDefaultNamerUsesFmt(t *testing.T) {
	sel, err := NewRuleSelector[int]([]Rule{{When: `to == "42"`, Enter: "fade", Duration: time.Second}}, nil, Instant(), nil)
	require.NoError(t, err)

	assert.Equal(t, time.Second, sel.Transition(backstack.Navigate, 1, 42).Duration())
	assert.Equal(t, time.Duration(0), sel.Transition(backstack.Navigate, 1, 7).Duration())
}

func TestVisualInterpolation(t *testing.T) {
	enter := SlideInHorizontally(1, step).Plus(FadeIn(step))
	assert.Equal(t, Visual{Alpha: 0, OffsetX: 1, Scale: 1}, enter.At(0))
	assert.Equal(t, Identity, enter.At(step))
	assert.Equal(t, Identity, enter.At(2*step))

	exit := ScaleOut(2, step)
	mid := exit.At(step / 2)
	assert.InDelta(t, 1.5, mid.Scale, 0.001)
	assert.Equal(t, 1.0, mid.Alpha)

	assert.Equal(t, Identity, EnterNone.At(0))
	assert.Equal(t, time.Duration(0), Instant().Duration())
}

func TestContentTransformDuration(t *testing.T) {
	c := FadeIn(100 * time.Millisecond).With(FadeOut(300 * time.Millisecond))
	assert.Equal(t, 300*time.Millisecond, c.Duration())

	c = c.WithSizeTransform(SizeTransform{Clip: true, Duration: 500 * time.Millisecond})
	assert.Equal(t, 500*time.Millisecond, c.Duration())
}

func TestDirectionalSelector(t *testing.T) {
	sel := DirectionalSelector[string]()

	forward := sel.Transition(backstack.Navigate, "a", "b")
	assert.Equal(t, 1.0, forward.Enter.From.OffsetX)
	assert.Equal(t, 0.0, forward.TargetZIndex)

	back := sel.Transition(backstack.Pop, "b", "a")
	assert.Equal(t, -1.0, back.Enter.From.OffsetX)
	assert.Less(t, back.TargetZIndex, 0.0)

	replace := sel.Transition(backstack.Replace, "a", "b")
	assert.Equal(t, DefaultTransform().Duration(), replace.Duration())
	assert.Equal(t, 0.0, replace.Enter.From.Alpha)
}
