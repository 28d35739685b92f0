// Package router hosts a navigation backstack on screen.
//
// A Router owns a backstack.Controller. Every change to the backstack is
// turned into a target snapshot by the entry registry (package host) and
// handed to a transition.Driver, which animates between the visible entries
// and tells the registry when each transition starts and settles. The
// registry moves entry lifecycles at those points and tears down entries
// that are no longer rendered.
//
// # Basic Usage
//
//	// Define destinations
//	type Screen int
//
//	const (
//	    ScreenList Screen = iota
//	    ScreenDetail
//	)
//
//	r := router.New(router.Options[Screen]{
//	    Policy:   transition.QueueAll,
//	    Selector: transition.DirectionalSelector[Screen](),
//	}, ScreenList)
//	defer r.Close()
//
//	// Navigate from anywhere on the UI goroutine
//	r.Controller().Navigate(ScreenDetail)
//
//	// Once per frame
//	r.Frame(time.Now())
//	r.Render(func(scope *router.Scope[Screen], visual transition.Visual) {
//	    switch scope.Destination() {
//	    case ScreenList:
//	        drawList(scope, visual)
//	    case ScreenDetail:
//	        drawDetail(scope, visual)
//	    }
//	})
//
//	// Back button
//	if !r.Back() {
//	    exit()
//	}
//
// # Entry State
//
// Each Scope exposes what its entry owns: view models that live exactly as
// long as the entry, a SavedState bundle and a UIState bucket that both
// survive process recreation, and scoped or shared owners declared through
// Options.ScopeSpec.
//
// # Process Recreation
//
// Save returns every saved blob, keyed. Seeding a new Router's
// Options.SavedState with savedstate.NewRegistry(blobs) restores the
// backstack, the host id and every entry's state. The sqlite subpackage of
// savedstate writes the blobs to disk.
package router
