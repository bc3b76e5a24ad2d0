package grid

import "github.com/xiaoyu12139/treegrid/pkg/model"

// RowState is the presentation state of a visible row. Rows move
// Placeholder -> Materialized exactly once while they keep their identity;
// a structural shift discards the state and the row starts over as a
// placeholder at its new index.
type RowState int

const (
	StatePlaceholder RowState = iota
	StateMaterialized
)

// WidgetFactory builds the interactive control handle for one cell. The
// handle is opaque to the core; the surface adapter knows what to do with it.
type WidgetFactory func(rowID string, col int, v model.Value) any

// DefaultLookahead is how many rows beyond the viewport edge are promoted
// ahead of time so scrolling lands on already-interactive rows.
const DefaultLookahead = 3

// Materializer defers construction of interactive cell controls until a row
// enters the viewport (plus a look-ahead margin) or is interacted with
// directly. The widget cache is keyed by row identity, not display index;
// the index lookup is rebuilt on every projection change, which is what
// makes structural shifts safe without cache splicing.
type Materializer struct {
	store   *Store
	surface Surface
	factory WidgetFactory

	widgets map[string][]any
	state   map[string]RowState

	indexToID []string
	idToIndex map[string]int

	top       int
	height    int
	lookahead int

	pending map[string]bool
	gen     int
}

// NewMaterializer creates a materializer over an already-reset reconciler
// surface. The projection must be supplied via SetProjection before the
// first pass.
func NewMaterializer(store *Store, surface Surface, factory WidgetFactory) *Materializer {
	return &Materializer{
		store:     store,
		surface:   surface,
		factory:   factory,
		widgets:   make(map[string][]any),
		state:     make(map[string]RowState),
		idToIndex: make(map[string]int),
		lookahead: DefaultLookahead,
		pending:   make(map[string]bool),
	}
}

// SetLookahead overrides the look-ahead margin.
func (m *Materializer) SetLookahead(n int) {
	if n >= 0 {
		m.lookahead = n
	}
}

// SetProjection replaces the index lookup with a fresh projection. Cache
// entries for rows that are no longer visible are discarded; rows that are
// still visible keep their state (their widgets moved with them on the
// surface).
func (m *Materializer) SetProjection(vis []VisibleRow) {
	m.indexToID = make([]string, len(vis))
	m.idToIndex = make(map[string]int, len(vis))
	for _, vr := range vis {
		m.indexToID[vr.Index] = vr.Row.ID
		m.idToIndex[vr.Row.ID] = vr.Index
	}
	for id := range m.state {
		if _, still := m.idToIndex[id]; !still {
			delete(m.state, id)
			delete(m.widgets, id)
			delete(m.pending, id)
		}
	}
}

// ApplyDelta invalidates presentation state downstream of a toggle and
// installs the post-toggle projection. Every row that sat at a display index
// >= delta.InvalidateFrom before the toggle lost its index identity: its
// controls are discarded (cleared on the surface, not reused) and it reverts
// to Placeholder. Rows above the change point are untouched.
func (m *Materializer) ApplyDelta(delta ToggleDelta, vis []VisibleRow) {
	newIndex := make(map[string]int, len(vis))
	for _, vr := range vis {
		newIndex[vr.Row.ID] = vr.Index
	}

	for idx := delta.InvalidateFrom; idx < len(m.indexToID); idx++ {
		id := m.indexToID[idx]
		if m.state[id] != StateMaterialized {
			continue
		}
		if at, still := newIndex[id]; still {
			m.clearWidgets(id, at)
		}
		delete(m.widgets, id)
		m.state[id] = StatePlaceholder
	}

	m.SetProjection(vis)
}

// clearWidgets removes a shifted row's controls from the surface and
// restores its readonly text representation.
func (m *Materializer) clearWidgets(id string, index int) {
	row, ok := m.store.Row(id)
	if !ok {
		return
	}
	for col := 1; col < m.store.schema.Len(); col++ {
		m.surface.SetCellWidget(index, col, nil)
		m.surface.SetCellContent(index, col, CellContent(m.store, row, col))
	}
}

// SetViewport records the visible display range as notified by the surface.
// It does not promote anything by itself; call RequestPass afterwards.
func (m *Materializer) SetViewport(top, height int) {
	if top < 0 {
		top = 0
	}
	m.top = top
	m.height = height
}

// RequestPass collects the placeholder rows inside the viewport plus the
// look-ahead margin into the pending set and reports whether a debounce
// timer should be (re)armed. Every call bumps the generation: a timer armed
// for an earlier generation has been replaced and its flush is a no-op.
func (m *Materializer) RequestPass() (gen int, arm bool) {
	start := m.top - m.lookahead
	if start < 0 {
		start = 0
	}
	end := m.top + m.height + m.lookahead
	if end > len(m.indexToID) {
		end = len(m.indexToID)
	}

	added := false
	for idx := start; idx < end; idx++ {
		id := m.indexToID[idx]
		if m.state[id] == StateMaterialized || m.pending[id] {
			continue
		}
		m.pending[id] = true
		added = true
	}

	if !added {
		return m.gen, false
	}
	m.gen++
	return m.gen, true
}

// Flush promotes every pending row. It only acts when gen matches the
// current generation, so stale debounce timers fall through. Promotion is
// idempotent, which is also the re-entrancy guard: a flush never schedules
// further work for the rows it just promoted.
func (m *Materializer) Flush(gen int) int {
	if gen != m.gen {
		return 0
	}
	promoted := 0
	for id := range m.pending {
		if m.Promote(id) {
			promoted++
		}
	}
	m.pending = make(map[string]bool)
	return promoted
}

// Promote builds the interactive controls for one visible row. Returns false
// when the row is already materialized or not visible. Column 0 keeps its
// text representation; it carries the expand/collapse gesture.
func (m *Materializer) Promote(id string) bool {
	if m.state[id] == StateMaterialized {
		return false
	}
	index, visible := m.idToIndex[id]
	if !visible {
		return false
	}
	row, ok := m.store.Row(id)
	if !ok {
		return false
	}

	controls := make([]any, m.store.schema.Len())
	for col := 1; col < m.store.schema.Len(); col++ {
		handle := m.factory(id, col, row.Fields[col])
		controls[col] = handle
		m.surface.SetCellWidget(index, col, handle)
	}
	m.widgets[id] = controls
	m.state[id] = StateMaterialized
	return true
}

// PromoteIndex promotes the row at a display index immediately. Direct
// interaction bypasses the debounce window.
func (m *Materializer) PromoteIndex(index int) bool {
	if index < 0 || index >= len(m.indexToID) {
		return false
	}
	return m.Promote(m.indexToID[index])
}

// StateOf returns the presentation state for a row ID.
func (m *Materializer) StateOf(id string) RowState { return m.state[id] }

// Widgets returns the cached control handles for a row, or nil if the row is
// a placeholder.
func (m *Materializer) Widgets(id string) []any { return m.widgets[id] }

// MaterializedCount returns how many visible rows carry interactive
// controls.
func (m *Materializer) MaterializedCount() int {
	n := 0
	for _, st := range m.state {
		if st == StateMaterialized {
			n++
		}
	}
	return n
}

// PendingCount returns how many rows await promotion.
func (m *Materializer) PendingCount() int { return len(m.pending) }
