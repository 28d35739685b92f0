package transition

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
)

// Rule maps a boolean expression over a destination change to a transform.
//
// The expression sees action ("idle", "navigate", "replace", "pop"), from and
// to (destination names, "" when that side is empty), fromEmpty and toEmpty.
// Enter and Exit name an effect: fade, slide_left, slide_right, slide_up,
// slide_down, scale or none. Effects can be combined with "+".
type Rule struct {
	When     string
	Enter    string
	Exit     string
	Duration time.Duration
	ZIndex   float64
}

// Namer turns a destination into the name rules match on.
type Namer[T any] func(T) string

type compiledRule struct {
	expression string
	program    *exprvm.Program
	transform  ContentTransform
}

// RuleSelector is a Selector driven by expression rules. The first rule
// whose expression is true wins; Fallback applies when none match.
type RuleSelector[T any] struct {
	rules    []compiledRule
	namer    Namer[T]
	fallback ContentTransform
	logger   *slog.Logger
}

// NewRuleSelector compiles rules. All compile errors are returned together.
func NewRuleSelector[T any](rules []Rule, namer Namer[T], fallback ContentTransform, logger *slog.Logger) (*RuleSelector[T], error) {
	if namer == nil {
		namer = func(v T) string { return fmt.Sprint(v) }
	}
	if logger == nil {
		logger = internal.GetInternalLogger()
	}
	s := &RuleSelector[T]{namer: namer, fallback: fallback, logger: logger}
	var errs []error
	for i, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		s.rules = append(s.rules, c)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", gabanav.ErrInvalidConfig, errors.Join(errs...))
	}
	return s, nil
}

func compileRule(r Rule) (compiledRule, error) {
	if strings.TrimSpace(r.When) == "" {
		return compiledRule{}, errors.New("expression must not be empty")
	}
	program, err := exprlang.Compile(r.When,
		exprlang.Env(ruleEnv("", "", "", false, false)),
		exprlang.AsBool(),
	)
	if err != nil {
		return compiledRule{}, fmt.Errorf("compile %q: %w", r.When, err)
	}
	d := r.Duration
	if d < 0 {
		return compiledRule{}, fmt.Errorf("negative duration %s", d)
	}
	enter, err := ParseEnter(r.Enter, d)
	if err != nil {
		return compiledRule{}, err
	}
	exit, err := ParseExit(r.Exit, d)
	if err != nil {
		return compiledRule{}, err
	}
	return compiledRule{
		expression: r.When,
		program:    program,
		transform:  enter.With(exit).WithZIndex(r.ZIndex),
	}, nil
}

func ruleEnv(action backstack.Action, from, to string, fromEmpty, toEmpty bool) map[string]any {
	return map[string]any{
		"action":    strings.ToLower(string(action)),
		"from":      from,
		"to":        to,
		"fromEmpty": fromEmpty,
		"toEmpty":   toEmpty,
	}
}

func (s *RuleSelector[T]) Transition(action backstack.Action, from, to T) ContentTransform {
	return s.match(ruleEnv(action, s.namer(from), s.namer(to), false, false))
}

func (s *RuleSelector[T]) FromEmptyBackstack(action backstack.Action, to T) ContentTransform {
	return s.match(ruleEnv(action, "", s.namer(to), true, false))
}

func (s *RuleSelector[T]) ToEmptyBackstack(action backstack.Action, from T) ContentTransform {
	return s.match(ruleEnv(action, s.namer(from), "", false, true))
}

func (s *RuleSelector[T]) match(env map[string]any) ContentTransform {
	for _, r := range s.rules {
		out, err := exprlang.Run(r.program, env)
		if err != nil {
			s.logger.Warn("transition rule failed", "expression", r.expression, "error", err)
			continue
		}
		if ok, _ := out.(bool); ok {
			return r.transform
		}
	}
	return s.fallback
}

// ParseEnter builds an enter transition from an effect name such as
// "fade+slide_left".
func ParseEnter(raw string, d time.Duration) (EnterTransition, error) {
	out := EnterNone
	for _, name := range effectNames(raw) {
		var e EnterTransition
		switch name {
		case "none":
			continue
		case "fade":
			e = FadeIn(d)
		case "slide_left":
			e = SlideInHorizontally(1, d)
		case "slide_right":
			e = SlideInHorizontally(-1, d)
		case "slide_up":
			e = SlideInVertically(1, d)
		case "slide_down":
			e = SlideInVertically(-1, d)
		case "scale":
			e = ScaleIn(0.8, d)
		default:
			return EnterNone, fmt.Errorf("unknown enter effect %q", name)
		}
		out = out.Plus(e)
	}
	return out, nil
}

// ParseExit builds an exit transition from an effect name.
func ParseExit(raw string, d time.Duration) (ExitTransition, error) {
	out := ExitNone
	for _, name := range effectNames(raw) {
		var x ExitTransition
		switch name {
		case "none":
			continue
		case "fade":
			x = FadeOut(d)
		case "slide_left":
			x = SlideOutHorizontally(-1, d)
		case "slide_right":
			x = SlideOutHorizontally(1, d)
		case "slide_up":
			x = SlideOutVertically(-1, d)
		case "slide_down":
			x = SlideOutVertically(1, d)
		case "scale":
			x = ScaleOut(1.1, d)
		default:
			return ExitNone, fmt.Errorf("unknown exit effect %q", name)
		}
		out = out.Plus(x)
	}
	return out, nil
}

func effectNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, "+") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			names = append(names, name)
		}
	}
	return names
}
