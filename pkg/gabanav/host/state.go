// Package host implements the entry registry of a navigation host.
//
// State maps backstack ids to Entries, derives Snapshots from the current
// backstack, and moves entry lifecycles at transition boundaries:
//
//   - OnTransitionStart: the target's visible entry is at least Started,
//     every other entry is capped at Started.
//   - OnAllTransitionsFinish: the target's visible entry is Resumed, every
//     other entry is capped at Created.
//   - RemoveOutdatedEntries: entries and scoped entries no longer referenced
//     are destroyed and their view models, saved state and UI state released.
//
// The effective state of an entry is min(host lifecycle, cap). It is
// recomputed explicitly whenever either input changes.
//
// State is not safe for concurrent use.
package host

import (
	"encoding/json"
	"log/slog"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/backstack"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/lifecycle"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/metrics"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/navid"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/viewmodel"
)

// Options configures a State. Zero values get working defaults.
type Options[T any] struct {
	HostID     navid.HostID             // Keys persisted state; generated when zero
	Lifecycle  lifecycle.Source         // Host lifecycle; always Resumed when nil
	SavedState savedstate.Store         // Saved-state store; in-memory when nil
	ViewModels *viewmodel.Provider      // View-model stores; private when nil
	UIState    savedstate.UIStateHolder // Per-entry UI state; Holder over SavedState when nil
	ScopeSpec  func(T) []string         // Scope keys declared by a destination
	Recorder   metrics.Recorder
	Logger     *slog.Logger
}

// SavedState is the persisted form of a host's registry.
type SavedState struct {
	HostID        navid.HostID   `json:"hostId"`
	EntryIDs      []navid.ID     `json:"entryIds"`
	ScopedEntries []ScopedRecord `json:"scopedEntries"`
}

// ScopedRecord is the persisted form of a scoped entry.
type ScopedRecord struct {
	ID                 navid.ID   `json:"id"`
	ScopeKey           string     `json:"scopeKey"`
	Shared             bool       `json:"shared,omitempty"`
	AssociatedEntryIDs []navid.ID `json:"associatedEntryIds"`
}

// State is the entry registry of one navigation host.
type State[T any] struct {
	hostID     navid.HostID
	store      savedstate.Store
	viewModels *viewmodel.Provider
	uiState    savedstate.UIStateHolder
	scopeSpec  func(T) []string
	recorder   metrics.Recorder
	logger     *slog.Logger

	source      lifecycle.Source
	hostState   lifecycle.State
	unsubscribe func()

	backstack backstack.Backstack[T]

	entries    map[navid.ID]*Entry[T]
	entryOrder []navid.ID

	scoped      map[string]*ScopedEntry
	shared      map[string]*ScopedEntry
	scopedOrder []*ScopedEntry
}

// New creates the registry for bs. Persisted state found under the host id
// is restored: ids absent from bs release their storage immediately, ids
// still present are recreated lazily on the next snapshot.
func New[T any](bs backstack.Backstack[T], opts Options[T]) *State[T] {
	s := &State[T]{
		hostID:     opts.HostID,
		store:      opts.SavedState,
		viewModels: opts.ViewModels,
		uiState:    opts.UIState,
		scopeSpec:  opts.ScopeSpec,
		recorder:   metrics.OrNop(opts.Recorder),
		logger:     opts.Logger,
		source:     opts.Lifecycle,
		hostState:  lifecycle.Resumed,
		backstack:  bs,
		entries:    make(map[navid.ID]*Entry[T]),
		scoped:     make(map[string]*ScopedEntry),
		shared:     make(map[string]*ScopedEntry),
	}
	if s.hostID.IsZero() {
		s.hostID = navid.NewHost()
	}
	if s.store == nil {
		s.store = savedstate.NewRegistry(nil)
	}
	if s.viewModels == nil {
		s.viewModels = viewmodel.NewProvider()
	}
	if s.uiState == nil {
		s.uiState = savedstate.NewHolder(s.store, s.hostKey()+"/ui")
	}
	if s.logger == nil {
		s.logger = internal.GetInternalLogger()
	}
	s.logger = s.logger.With("host", s.hostID.String())

	if s.source != nil {
		s.hostState = s.source.State()
		s.unsubscribe = s.source.Subscribe(s.onHostLifecycle)
	}

	s.restore()
	s.store.RegisterProvider(s.hostKey(), s.save)
	return s
}

// HostID returns the id keying this host's persisted state.
func (s *State[T]) HostID() navid.HostID { return s.hostID }

// Backstack returns the backstack the registry currently derives from.
func (s *State[T]) Backstack() backstack.Backstack[T] { return s.backstack }

// SetBackstack replaces the source backstack. Entries are created on the
// next TargetSnapshot; removed ones stay alive until RemoveOutdatedEntries.
func (s *State[T]) SetBackstack(bs backstack.Backstack[T]) {
	s.backstack = bs
}

// TargetSnapshot derives the snapshot of the current backstack, creating
// entries and scoped entries on first reference.
func (s *State[T]) TargetSnapshot() Snapshot[T] {
	items := make([]Item[T], len(s.backstack.Entries))
	for i, be := range s.backstack.Entries {
		e := s.entryFor(be)
		item := Item[T]{Entry: e, Scoped: map[string]*ScopedEntry{}}
		if s.scopeSpec != nil {
			for _, key := range s.scopeSpec(be.Destination()) {
				se := s.scopedFor(key, false)
				se.associated[e.id] = struct{}{}
				item.Scoped[key] = se
			}
		}
		items[i] = item
	}
	s.syncScoped()
	return Snapshot[T]{Items: items, Action: s.backstack.Action}
}

// Entry returns the live entry for id.
func (s *State[T]) Entry(id navid.ID) (*Entry[T], bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Entries returns every live entry in creation order, including outdated
// ones that have not been removed yet.
func (s *State[T]) Entries() []*Entry[T] {
	out := make([]*Entry[T], 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		out = append(out, s.entries[id])
	}
	return out
}

// ScopedEntries returns every live scoped and shared entry in creation order.
func (s *State[T]) ScopedEntries() []*ScopedEntry {
	return append([]*ScopedEntry(nil), s.scopedOrder...)
}

// Outdated returns the ids of live entries no longer in the backstack.
func (s *State[T]) Outdated() []navid.ID {
	current := s.backstack.IDs()
	var out []navid.ID
	for _, id := range s.entryOrder {
		if _, ok := current[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// SharedOwner returns the shared entry for key, creating it when absent,
// and associates entryID with it. The shared entry is kept at least as
// alive as its most alive associated entry.
func (s *State[T]) SharedOwner(key string, entryID navid.ID) *ScopedEntry {
	e, ok := s.entries[entryID]
	if !ok {
		gabanav.Fail("host.shared_owner", gabanav.ErrUnknownEntry, "entry %s for shared scope %q", entryID, key)
	}
	se := s.scopedFor(key, true)
	if _, ok := se.associated[entryID]; !ok {
		se.associated[entryID] = struct{}{}
	}
	se.setMaxState(lifecycle.Max(se.maxState, e.maxState))
	return se
}

// OnTransitionStart caps every entry at Started except the target's
// visible entry, which is raised to at least Started.
func (s *State[T]) OnTransitionStart(target Snapshot[T]) {
	last := target.LastEntry()
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if e == last {
			e.setMaxState(lifecycle.Max(e.maxState, lifecycle.Started))
		} else {
			e.setMaxState(lifecycle.Min(e.maxState, lifecycle.Started))
		}
	}
	s.syncScoped()
	s.logger.Debug("Transition started", "target", idOf(last))
}

// OnAllTransitionsFinish resumes the target's visible entry and caps every
// other entry at Created.
func (s *State[T]) OnAllTransitionsFinish(target Snapshot[T]) {
	last := target.LastEntry()
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if e == last {
			e.setMaxState(lifecycle.Resumed)
		} else {
			e.setMaxState(lifecycle.Min(e.maxState, lifecycle.Created))
		}
	}
	s.syncScoped()
	s.logger.Debug("Transitions settled", "target", idOf(last))
}

// RemoveOutdatedEntries destroys every entry that is neither in the
// current backstack nor in one of keep, and every scoped entry left with no
// associated entry. keep holds snapshots still being rendered or queued.
func (s *State[T]) RemoveOutdatedEntries(keep ...Snapshot[T]) {
	alive := s.backstack.IDs()
	for _, snap := range keep {
		for id := range snap.IDs() {
			alive[id] = struct{}{}
		}
	}

	for _, se := range append([]*ScopedEntry(nil), s.scopedOrder...) {
		for id := range se.associated {
			if _, ok := alive[id]; !ok {
				delete(se.associated, id)
			}
		}
		if len(se.associated) == 0 {
			s.destroyScoped(se)
		}
	}

	for _, id := range append([]navid.ID(nil), s.entryOrder...) {
		if _, ok := alive[id]; ok {
			continue
		}
		if s.referencedByScope(id) {
			continue
		}
		s.destroyEntry(s.entries[id])
	}
	s.syncScoped()
}

// Clear destroys every entry and scoped entry. Used when the host is gone
// for good.
func (s *State[T]) Clear() {
	for _, se := range append([]*ScopedEntry(nil), s.scopedOrder...) {
		s.destroyScoped(se)
	}
	for _, id := range append([]navid.ID(nil), s.entryOrder...) {
		s.destroyEntry(s.entries[id])
	}
}

// Close stops following the host lifecycle and stops contributing to saved
// state. Entries are left as they are.
func (s *State[T]) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.store.UnregisterProvider(s.hostKey())
}

// SavedState returns the persisted form of the registry.
func (s *State[T]) SavedState() SavedState {
	saved := SavedState{
		HostID:        s.hostID,
		EntryIDs:      append([]navid.ID{}, s.entryOrder...),
		ScopedEntries: make([]ScopedRecord, 0, len(s.scopedOrder)),
	}
	for _, se := range s.scopedOrder {
		saved.ScopedEntries = append(saved.ScopedEntries, ScopedRecord{
			ID:                 se.id,
			ScopeKey:           se.scopeKey,
			Shared:             se.shared,
			AssociatedEntryIDs: se.AssociatedIDs(),
		})
	}
	return saved
}

func (s *State[T]) save() ([]byte, error) {
	return json.Marshal(s.SavedState())
}

func (s *State[T]) hostKey() string {
	return "host/" + s.hostID.String()
}

func (s *State[T]) restore() {
	data, ok := s.store.ConsumeRestoredStateForKey(s.hostKey())
	if !ok {
		return
	}
	var saved SavedState
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.Warn("Discarding corrupt host state", "error", err)
		return
	}
	present := s.backstack.IDs()
	for _, id := range saved.EntryIDs {
		if _, ok := present[id]; ok {
			continue
		}
		s.releaseStorage(id)
	}
	for _, rec := range saved.ScopedEntries {
		associated := make(map[navid.ID]struct{}, len(rec.AssociatedEntryIDs))
		for _, id := range rec.AssociatedEntryIDs {
			if _, ok := present[id]; ok {
				associated[id] = struct{}{}
			}
		}
		if len(associated) == 0 {
			s.releaseStorage(rec.ID)
			continue
		}
		se := s.newScoped(rec.ID, rec.ScopeKey, rec.Shared)
		se.associated = associated
	}
	s.logger.Debug("Restored host state", "entries", len(saved.EntryIDs), "scoped", len(saved.ScopedEntries))
}

// releaseStorage drops everything persisted for an owner that will never
// be recreated.
func (s *State[T]) releaseStorage(id navid.ID) {
	key := navid.Key(s.hostID, id)
	s.store.ConsumeRestoredStateForKey(key)
	s.store.UnregisterProvider(key)
	s.viewModels.RemoveStore(id)
	s.uiState.RemoveState(id.String())
}

func (s *State[T]) newOwner(id navid.ID) owner {
	key := navid.Key(s.hostID, id)
	bundle := savedstate.NewBundle()
	if data, ok := s.store.ConsumeRestoredStateForKey(key); ok {
		decoded, err := savedstate.DecodeBundle(data)
		if err != nil {
			s.logger.Warn("Discarding corrupt entry state", "entry", id.String(), "error", err)
		} else {
			bundle = decoded
		}
	}
	s.store.RegisterProvider(key, bundle.Encode)
	return owner{
		id:         id,
		key:        key,
		lifecycle:  lifecycle.NewRegistry(),
		viewModels: s.viewModels.GetOrCreateStore(id),
		savedState: bundle,
		hostState:  hostCap(s.hostState),
		maxState:   lifecycle.Created,
	}
}

func (s *State[T]) entryFor(be *backstack.Entry[T]) *Entry[T] {
	if e, ok := s.entries[be.ID()]; ok {
		return e
	}
	e := &Entry[T]{owner: s.newOwner(be.ID()), entry: be}
	e.recompute()
	s.entries[e.id] = e
	s.entryOrder = append(s.entryOrder, e.id)
	s.recorder.EntryCreated(false)
	s.logger.Debug("Entry created", "entry", e.id.String())
	return e
}

func (s *State[T]) scopedFor(key string, shared bool) *ScopedEntry {
	m := s.scoped
	if shared {
		m = s.shared
	}
	if se, ok := m[key]; ok {
		return se
	}
	return s.newScoped(navid.New(), key, shared)
}

func (s *State[T]) newScoped(id navid.ID, key string, shared bool) *ScopedEntry {
	se := &ScopedEntry{
		owner:      s.newOwner(id),
		scopeKey:   key,
		shared:     shared,
		associated: make(map[navid.ID]struct{}),
	}
	se.recompute()
	if shared {
		s.shared[key] = se
	} else {
		s.scoped[key] = se
	}
	s.scopedOrder = append(s.scopedOrder, se)
	s.recorder.EntryCreated(true)
	s.logger.Debug("Scoped entry created", "scope", key, "shared", shared)
	return se
}

// syncScoped raises or lowers every scoped entry to the most advanced cap
// among its live associated entries.
func (s *State[T]) syncScoped() {
	for _, se := range s.scopedOrder {
		highest := lifecycle.Created
		for id := range se.associated {
			if e, ok := s.entries[id]; ok {
				highest = lifecycle.Max(highest, e.maxState)
			}
		}
		se.setMaxState(highest)
	}
}

func (s *State[T]) referencedByScope(id navid.ID) bool {
	for _, se := range s.scopedOrder {
		if se.IsAssociated(id) {
			return true
		}
	}
	return false
}

func (s *State[T]) onHostLifecycle(state lifecycle.State) {
	s.hostState = state
	for _, id := range s.entryOrder {
		s.entries[id].setHostState(state)
	}
	for _, se := range s.scopedOrder {
		se.setHostState(state)
	}
}

func (s *State[T]) destroyEntry(e *Entry[T]) {
	s.destroyOwner(&e.owner)
	delete(s.entries, e.id)
	for i, id := range s.entryOrder {
		if id == e.id {
			s.entryOrder = append(s.entryOrder[:i], s.entryOrder[i+1:]...)
			break
		}
	}
	s.recorder.EntryDestroyed(false)
	s.logger.Debug("Entry destroyed", "entry", e.id.String())
}

func (s *State[T]) destroyScoped(se *ScopedEntry) {
	s.destroyOwner(&se.owner)
	if se.shared {
		delete(s.shared, se.scopeKey)
	} else {
		delete(s.scoped, se.scopeKey)
	}
	for i, other := range s.scopedOrder {
		if other == se {
			s.scopedOrder = append(s.scopedOrder[:i], s.scopedOrder[i+1:]...)
			break
		}
	}
	s.recorder.EntryDestroyed(true)
	s.logger.Debug("Scoped entry destroyed", "scope", se.scopeKey, "shared", se.shared)
}

func (s *State[T]) destroyOwner(o *owner) {
	o.setMaxState(lifecycle.Destroyed)
	s.store.UnregisterProvider(o.key)
	s.viewModels.RemoveStore(o.id)
	s.uiState.RemoveState(o.id.String())
}

func idOf[T any](e *Entry[T]) string {
	if e == nil {
		return ""
	}
	return e.id.String()
}
