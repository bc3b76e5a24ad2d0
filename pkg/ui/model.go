package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xiaoyu12139/treegrid/pkg/grid"
	"github.com/xiaoyu12139/treegrid/pkg/loader"
	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// materializeTickMsg fires when a debounce window elapses. The generation
// ties the timer to the request that armed it; a newer request makes an
// older timer's flush a no-op.
type materializeTickMsg struct {
	gen int
}

// statusClearMsg clears a transient status line.
type statusClearMsg struct {
	seq int
}

const statusLinger = 4 * time.Second

// Options configures the root model.
type Options struct {
	DataPath  string // path rows are saved back to; empty disables saving
	StateDir  string // .treegrid directory for persisted grid state
	Debounce  time.Duration
	Lookahead int
	Title     string
}

// Model is the root bubbletea model: the grid view plus its overlays.
type Model struct {
	store      *grid.Store
	schema     model.Schema
	surface    *CellSurface
	reconciler *grid.Reconciler
	mat        *grid.Materializer
	theme      Theme
	widths     []int
	opts       Options

	// Cursor and scroll state. top is the first display row in view; the
	// materializer is notified whenever it changes.
	cursorRow int
	cursorCol int
	top       int

	width  int
	height int
	ready  bool

	// Overlays. At most one is active at a time.
	editor   CellEditor
	form     RowForm
	menu     ContextMenu
	helpOpen bool
	helpView viewport.Model

	status      string
	statusError bool
	statusSeq   int

	quitting bool
}

// NewModel builds the root model over a populated store.
func NewModel(store *grid.Store, opts Options) *Model {
	if opts.Debounce <= 0 {
		opts.Debounce = 30 * time.Millisecond
	}
	if opts.Title == "" {
		opts.Title = "Tree Grid"
	}
	schema := store.Schema()
	surface := NewCellSurface(schema.Len())
	rec := grid.NewReconciler(store, surface)
	mat := grid.NewMaterializer(store, surface, NewWidgetFactory(schema))
	if opts.Lookahead > 0 {
		mat.SetLookahead(opts.Lookahead)
	}

	m := &Model{
		store:      store,
		schema:     schema,
		surface:    surface,
		reconciler: rec,
		mat:        mat,
		theme:      DefaultTheme(lipgloss.DefaultRenderer()),
		widths:     ColumnWidths(schema),
		opts:       opts,
		editor:     NewCellEditor(),
		form:       NewRowForm(schema),
		cursorCol:  0,
	}
	store.SetChangeListener(m.onFieldChange)

	rec.Reset()
	mat.SetProjection(rec.Visible())
	return m
}

// onFieldChange refreshes the surface after any store write, whichever path
// triggered it (editor, widget, select-all, reload).
func (m *Model) onFieldChange(ch grid.FieldChange) {
	for _, vr := range m.reconciler.Visible() {
		if vr.Row.ID != ch.RowID {
			continue
		}
		m.surface.SetCellContent(vr.Index, ch.Col, ch.New.String())
		if w := m.surface.Widget(vr.Index, ch.Col); w != nil {
			SyncWidget(w, ch.New)
		}
		return
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.requestMaterialization()
}

// gridHeight is the number of data rows that fit between the header and the
// status bar.
func (m *Model) gridHeight() int {
	h := m.height - 3 // header, separator, status bar
	if h < 1 {
		h = 1
	}
	return h
}

// requestMaterialization notifies the materializer of the current viewport
// and arms a debounce timer if new rows became eligible.
func (m *Model) requestMaterialization() tea.Cmd {
	m.mat.SetViewport(m.top, m.gridHeight())
	gen, arm := m.mat.RequestPass()
	if !arm {
		return nil
	}
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return materializeTickMsg{gen: gen}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.helpView = viewport.New(msg.Width-6, msg.Height-6)
		m.helpView.SetContent(RenderHelp(msg.Width - 8))
		m.ready = true
		m.clampScroll()
		return m, m.requestMaterialization()

	case materializeTickMsg:
		m.mat.Flush(msg.gen)
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusError = false
		}
		return m, nil

	case RowsReloadedMsg:
		return m, m.applyReload(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.editor.Active() {
		return m, m.editor.Update(msg)
	}
	if m.form.Active() {
		_, _, cmd := m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays capture all keys while active.
	if m.helpOpen {
		return m.handleHelpKey(msg)
	}
	if m.editor.Active() {
		return m.handleEditorKey(msg)
	}
	if m.form.Active() {
		return m.handleFormKey(msg)
	}
	if m.menu.Active() {
		return m.handleMenuKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.persist()
		return m, tea.Quit

	case "up", "k":
		return m, m.moveCursor(-1)
	case "down", "j":
		return m, m.moveCursor(1)
	case "pgup":
		return m, m.moveCursor(-m.gridHeight())
	case "pgdown":
		return m, m.moveCursor(m.gridHeight())
	case "g", "home":
		return m, m.moveCursorTo(0)
	case "G", "end":
		return m, m.moveCursorTo(m.surface.RowCount() - 1)

	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
		return m, nil
	case "right", "l":
		if m.cursorCol < m.schema.Len()-1 {
			m.cursorCol++
		}
		return m, nil

	case "enter", " ":
		return m, m.activate()

	case "e":
		m.openEditor()
		return m, nil

	case "E":
		m.store.ExpandAll()
		return m, m.rebuild()
	case "C":
		m.store.CollapseAll()
		return m, m.rebuild()

	case "a":
		m.form.Open(m.selectedParentID())
		return m, m.form.Init()
	case "d":
		return m, m.deleteSelected()

	case "y":
		m.setStatus(YankToClipboard(m.selectedCellText(), "cell"), false)
		return m, m.clearStatusLater()
	case "Y":
		if row := m.selectedRow(); row != nil {
			m.setStatus(YankToClipboard(row.ID, "id"), false)
			return m, m.clearStatusLater()
		}
		return m, nil

	case "t":
		return m, m.toggleColumn()

	case "m":
		if row := m.selectedRow(); row != nil {
			m.menu.Open(row, m.cursorCol, m.schema)
		}
		return m, nil

	case "?":
		m.helpOpen = true
		return m, nil
	}
	return m, nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.helpOpen = false
		return m, nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.Close()
		return m, nil
	case "enter":
		rowID, col := m.editor.Target()
		raw := m.editor.Value()
		m.editor.Close()
		if _, err := m.store.UpdateField(rowID, col, raw); err != nil {
			var tm grid.TypeMismatchError
			if errors.As(err, &tm) {
				m.setStatus(fmt.Sprintf("invalid %s value %q for %s", m.schema.Columns[col].Type, raw, tm.Column), true)
			} else {
				m.setStatus(err.Error(), true)
			}
			return m, m.clearStatusLater()
		}
		return m, nil
	}
	return m, m.editor.Update(msg)
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form.Close()
		return m, nil
	}
	row, done, cmd := m.form.Update(msg)
	if !done {
		return m, cmd
	}
	m.form.Close()
	if row == nil {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.insertRow(row))
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "m", "q":
		m.menu.Close()
		return m, nil
	case "up", "k":
		m.menu.Move(-1)
		return m, nil
	case "down", "j":
		m.menu.Move(1)
		return m, nil
	case "enter", " ":
		item := m.menu.Selected()
		m.menu.Close()
		return m, m.runMenuAction(item)
	}
	return m, nil
}

func (m *Model) runMenuAction(item MenuItem) tea.Cmd {
	switch item.Action {
	case MenuAddChild:
		m.form.Open(m.menu.RowID())
		return m.form.Init()
	case MenuAddSibling:
		m.form.Open("")
		return m.form.Init()
	case MenuDeleteRow:
		return m.deleteSelected()
	case MenuYankCell:
		m.setStatus(YankToClipboard(m.selectedCellText(), "cell"), false)
		return m.clearStatusLater()
	case MenuYankID:
		m.setStatus(YankToClipboard(m.menu.RowID(), "id"), false)
		return m.clearStatusLater()
	case MenuToggleColumn:
		return m.toggleColumn()
	}
	return nil
}

// moveCursor shifts the cursor row and scrolls the viewport after it.
func (m *Model) moveCursor(delta int) tea.Cmd {
	return m.moveCursorTo(m.cursorRow + delta)
}

func (m *Model) moveCursorTo(row int) tea.Cmd {
	if row < 0 {
		row = 0
	}
	if max := m.surface.RowCount() - 1; row > max {
		row = max
	}
	m.cursorRow = row
	m.clampScroll()
	return m.requestMaterialization()
}

// clampScroll keeps the cursor row inside the visible window.
func (m *Model) clampScroll() {
	h := m.gridHeight()
	if m.cursorRow < m.top {
		m.top = m.cursorRow
	}
	if m.cursorRow >= m.top+h {
		m.top = m.cursorRow - h + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// selectedRow returns the row under the cursor, nil on an empty grid.
func (m *Model) selectedRow() *model.Row {
	vis := m.reconciler.Visible()
	if m.cursorRow < 0 || m.cursorRow >= len(vis) {
		return nil
	}
	return vis[m.cursorRow].Row
}

// selectedParentID returns the parent a new child would attach to: the
// selected row if it is a parent, its parent if it is a child.
func (m *Model) selectedParentID() string {
	row := m.selectedRow()
	if row == nil {
		return ""
	}
	switch row.Kind {
	case model.KindParent:
		return row.ID
	case model.KindChild:
		return row.ParentID
	}
	return ""
}

func (m *Model) selectedCellText() string {
	row := m.selectedRow()
	if row == nil {
		return ""
	}
	return grid.CellContent(m.store, row, m.cursorCol)
}

// activate handles enter/space on the current cell: expansion toggle on
// column 0 of a parent, widget gesture elsewhere.
func (m *Model) activate() tea.Cmd {
	row := m.selectedRow()
	if row == nil {
		return nil
	}

	if m.cursorCol == 0 {
		if !row.Kind.Expandable() {
			return nil
		}
		delta, err := m.reconciler.Toggle(row.ID)
		if err != nil {
			// Stale snapshot; a full rebuild recovers.
			m.setStatus(err.Error(), true)
			return tea.Batch(m.rebuild(), m.clearStatusLater())
		}
		m.mat.ApplyDelta(delta, m.reconciler.Visible())
		m.clampScroll()
		return m.requestMaterialization()
	}

	if !row.CanEdit(m.cursorCol, m.schema) {
		return nil
	}

	// Direct interaction promotes immediately, skipping the debounce.
	m.mat.PromoteIndex(m.cursorRow)
	w := m.surface.Widget(m.cursorRow, m.cursorCol)
	if w == nil {
		return nil
	}
	raw, write := w.Activate()
	if !write {
		m.openEditor()
		return nil
	}
	if _, err := m.store.UpdateField(row.ID, m.cursorCol, raw); err != nil {
		m.setStatus(err.Error(), true)
		SyncWidget(w, row.Fields[m.cursorCol])
		return m.clearStatusLater()
	}
	return nil
}

func (m *Model) openEditor() {
	row := m.selectedRow()
	if row == nil || m.cursorCol == 0 || !row.CanEdit(m.cursorCol, m.schema) {
		return
	}
	m.editor.Open(row.ID, m.cursorCol, row.Fields[m.cursorCol])
}

// toggleColumn flips every editable checkbox in the cursor column, the
// column-header "select all" gesture. It acts on visible rows only: children
// of a collapsed parent are left as they are.
func (m *Model) toggleColumn() tea.Cmd {
	col := m.cursorCol
	if col < 0 || col >= m.schema.Len() || m.schema.Columns[col].Type != model.FieldBool {
		m.setStatus("not a checkbox column", true)
		return m.clearStatusLater()
	}

	visible := m.reconciler.Visible()

	// All on if any visible row is off, otherwise all off.
	target := false
	for _, vr := range visible {
		if !vr.Row.Fields[col].Bool {
			target = true
			break
		}
	}
	raw := "false"
	if target {
		raw = "true"
	}
	changed := 0
	for _, vr := range visible {
		if !vr.Row.CanEdit(col, m.schema) || vr.Row.Fields[col].Bool == target {
			continue
		}
		if _, err := m.store.UpdateField(vr.Row.ID, col, raw); err == nil {
			changed++
		}
	}
	m.setStatus(fmt.Sprintf("set %s=%s on %d rows", m.schema.Columns[col].Name, raw, changed), false)
	return m.clearStatusLater()
}

// insertRow places a new row: children after their parent's last child,
// everything else at the end.
func (m *Model) insertRow(row *model.Row) tea.Cmd {
	// Regenerate the ID on collision with loaded data.
	for {
		if _, exists := m.store.Row(row.ID); !exists {
			break
		}
		row.ID = NewRowID(row.Kind)
	}

	var err error
	if row.Kind == model.KindChild {
		err = m.store.Insert(*row, m.storeInsertPos(row.ParentID))
	} else {
		err = m.store.Append(*row)
	}
	if err != nil {
		m.setStatus(err.Error(), true)
		return m.clearStatusLater()
	}
	m.setStatus("added "+row.ID, false)
	return tea.Batch(m.rebuild(), m.clearStatusLater())
}

// storeInsertPos finds the store position just after a parent's child block.
func (m *Model) storeInsertPos(parentID string) int {
	rows := m.store.Rows()
	pos := len(rows)
	for i, r := range rows {
		if r.ID == parentID || (r.Kind == model.KindChild && r.ParentID == parentID) {
			pos = i + 1
		}
	}
	return pos
}

func (m *Model) deleteSelected() tea.Cmd {
	row := m.selectedRow()
	if row == nil {
		return nil
	}
	if err := m.store.Remove(row.ID); err != nil {
		m.setStatus(err.Error(), true)
		return m.clearStatusLater()
	}
	msg := "deleted " + row.ID
	if row.Kind == model.KindParent {
		msg += " and its children"
	}
	m.setStatus(msg, false)
	return tea.Batch(m.rebuild(), m.clearStatusLater())
}

// rebuild replays the full projection after a bulk change. Incremental
// deltas are only worth it for single toggles.
func (m *Model) rebuild() tea.Cmd {
	m.reconciler.Reset()
	m.mat.SetProjection(m.reconciler.Visible())
	if max := m.surface.RowCount() - 1; m.cursorRow > max {
		m.cursorRow = max
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
	m.clampScroll()
	return m.requestMaterialization()
}

// applyReload swaps in rows from a changed data file, carrying over the
// expansion state of surviving parents.
func (m *Model) applyReload(msg RowsReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.setStatus("reload failed: "+msg.Err.Error(), true)
		return m.clearStatusLater()
	}
	expanded := m.store.Expanded()
	var cursorID string
	if row := m.selectedRow(); row != nil {
		cursorID = row.ID
	}

	fresh := grid.NewStore(m.schema)
	if err := loader.Populate(fresh, msg.Rows); err != nil {
		m.setStatus("reload rejected: "+err.Error(), true)
		return m.clearStatusLater()
	}
	for _, id := range expanded {
		// Stale IDs are simply gone.
		_ = fresh.SetExpanded(id, true)
	}

	m.store = fresh
	m.store.SetChangeListener(m.onFieldChange)
	m.reconciler = grid.NewReconciler(m.store, m.surface)
	m.mat = grid.NewMaterializer(m.store, m.surface, NewWidgetFactory(m.schema))
	if m.opts.Lookahead > 0 {
		m.mat.SetLookahead(m.opts.Lookahead)
	}
	m.setStatus(fmt.Sprintf("reloaded %d rows", len(msg.Rows)), false)
	cmd := m.rebuild()

	// The cursor follows its row, not its index.
	if cursorID != "" {
		for _, vr := range m.reconciler.Visible() {
			if vr.Row.ID == cursorID {
				m.cursorRow = vr.Index
				m.clampScroll()
				break
			}
		}
	}
	return tea.Batch(cmd, m.clearStatusLater())
}

// persist saves grid state and, when a data path is configured, the rows.
func (m *Model) persist() {
	SaveGridState(m.opts.StateDir, m.store)
	if m.opts.DataPath != "" {
		if err := loader.SaveRows(m.opts.DataPath, m.store.Rows()); err != nil {
			m.setStatus("save failed: "+err.Error(), true)
		}
	}
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
	m.statusSeq++
}

func (m *Model) clearStatusLater() tea.Cmd {
	seq := m.statusSeq
	return tea.Tick(statusLinger, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.surface.RenderHeader(m.schema, m.widths, m.theme))
	sb.WriteString("\n")
	sb.WriteString(m.theme.StatusBar.Render(strings.Repeat("─", min(m.width, 120))))
	sb.WriteString("\n")

	h := m.gridHeight()
	end := m.top + h
	if end > m.surface.RowCount() {
		end = m.surface.RowCount()
	}
	for row := m.top; row < end; row++ {
		selCol := -1
		if row == m.cursorRow {
			selCol = m.cursorCol
		}
		sb.WriteString(m.surface.RenderRow(row, m.widths, m.theme, selCol))
		sb.WriteString("\n")
	}
	for i := end - m.top; i < h; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(m.renderFooter())

	base := sb.String()
	switch {
	case m.helpOpen:
		return m.withOverlay(m.theme.Overlay.Render(m.helpView.View()))
	case m.form.Active():
		return m.withOverlay(m.theme.Overlay.Render(m.form.View()))
	case m.menu.Active():
		return m.withOverlay(m.theme.Overlay.Render(m.menu.View(m.theme)))
	}
	return base
}

// withOverlay centers an overlay in the window, replacing the grid behind it.
func (m *Model) withOverlay(overlay string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

// renderFooter builds the status bar: position, materialization progress and
// any transient message; the editor replaces it while an edit is open.
func (m *Model) renderFooter() string {
	if m.editor.Active() {
		_, col := m.editor.Target()
		label := m.theme.StatusBar.Render(m.schema.Columns[col].Name + ": ")
		return label + m.editor.View()
	}

	left := fmt.Sprintf("%s · row %d/%d · col %s",
		m.opts.Title, m.cursorRow+1, m.surface.RowCount(), m.columnName())
	right := fmt.Sprintf("live %d · pending %d · ? help · q quit",
		m.mat.MaterializedCount(), m.mat.PendingCount())

	if m.status != "" {
		style := m.theme.StatusBar
		if m.statusError {
			style = m.theme.StatusError
		}
		return style.Render(m.status)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) columnName() string {
	if m.cursorCol < 0 || m.cursorCol >= m.schema.Len() {
		return "?"
	}
	return m.schema.Columns[m.cursorCol].Name
}
