package transition

import (
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
)

// Selector picks the content transform for a change of visible
// destination. It is only consulted when the visible entry changes.
type Selector[T any] interface {
	Transition(action backstack.Action, from, to T) ContentTransform
	// FromEmptyBackstack is used when nothing was visible before.
	FromEmptyBackstack(action backstack.Action, to T) ContentTransform
	// ToEmptyBackstack is used when nothing will be visible after.
	ToEmptyBackstack(action backstack.Action, from T) ContentTransform
}

// Funcs adapts plain functions to a Selector. Nil functions fall back to
// Default.
type Funcs[T any] struct {
	Default   ContentTransform
	OnChange  func(action backstack.Action, from, to T) ContentTransform
	FromEmpty func(action backstack.Action, to T) ContentTransform
	ToEmpty   func(action backstack.Action, from T) ContentTransform
}

func (f Funcs[T]) Transition(action backstack.Action, from, to T) ContentTransform {
	if f.OnChange != nil {
		return f.OnChange(action, from, to)
	}
	return f.Default
}

func (f Funcs[T]) FromEmptyBackstack(action backstack.Action, to T) ContentTransform {
	if f.FromEmpty != nil {
		return f.FromEmpty(action, to)
	}
	return f.Default
}

func (f Funcs[T]) ToEmptyBackstack(action backstack.Action, from T) ContentTransform {
	if f.ToEmpty != nil {
		return f.ToEmpty(action, from)
	}
	return f.Default
}

// CrossfadeSelector crossfades every change with the default duration.
func CrossfadeSelector[T any]() Selector[T] {
	return Funcs[T]{Default: DefaultTransform()}
}

// DirectionalSelector slides forward on Navigate and backward on Pop, and
// crossfades everything else.
func DirectionalSelector[T any]() Selector[T] {
	d := DefaultTransform().Duration()
	return Funcs[T]{
		Default: DefaultTransform(),
		OnChange: func(action backstack.Action, _, _ T) ContentTransform {
			switch action {
			case backstack.Navigate:
				return SlideInHorizontally(1, d).With(SlideOutHorizontally(-1, d))
			case backstack.Pop:
				return SlideInHorizontally(-1, d).With(SlideOutHorizontally(1, d)).WithZIndex(-1)
			default:
				return DefaultTransform()
			}
		},
	}
}
