// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datagrid

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/magpierre/fyne-datagrid/internal/layout"
)

// Default viewport geometry used when the config leaves fields zero.
const (
	DefaultRowHeight   = 24.0
	DefaultRowOverscan = 2
)

// Config configures a Grid.
type Config struct {
	// Columns is the column set. Empty derives columns from Source.
	Columns []Column

	// Source provides rows for in-memory grids. Leave nil when a
	// row-providing plugin (e.g. plugins/serverside) supplies rows.
	Source DataSource

	// Plugins are attached in order during New. Order is part of the
	// public contract: ProcessColumns folds left-to-right through it.
	Plugins []Plugin

	// Logger receives hook failures and lifecycle messages.
	// Nil falls back to slog.Default().
	Logger *slog.Logger

	// RowHeight is the fixed row height in pixels (default 24).
	RowHeight float64

	// RowOverscan is the number of extra rows materialized above and
	// below the viewport (default 2).
	RowOverscan int
}

// Grid is the headless grid host. It owns configuration and row data,
// runs the render pipeline, and invokes plugin hooks at the defined
// points. Render adapters consume the Frame snapshots it produces.
type Grid struct {
	mu sync.Mutex

	columns     []Column
	source      DataSource
	viewport    Viewport
	rowOverscan int

	sortModel   interface{}
	filterModel interface{}

	// Frame metrics set by plugins via GridHandle.SetFrameMetrics.
	padLeft    float64
	totalWidth float64

	// totalRows is the row-count override reported by a row-providing
	// plugin; -1 means none.
	totalRows int

	// visIdx caches the filtered+sorted row order for in-memory
	// sources; nil means it must be recomputed.
	visIdx []int

	seq   uint64
	dirty bool

	listeners      map[string]map[int]EventListener
	nextListenerID int
	onRender       func()

	manager *pluginManager
	logger  *slog.Logger
	closed  bool
}

// New creates a Grid from the config and attaches its plugins in order.
// A plugin whose Attach fails aborts construction with that error.
func New(cfg Config) (*Grid, error) {
	cols := cfg.Columns
	if len(cols) == 0 && cfg.Source != nil {
		derived, err := ColumnsFromSource(cfg.Source)
		if err != nil {
			return nil, err
		}
		cols = derived
	}
	if err := validateColumns(cols); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rowHeight := cfg.RowHeight
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	overscan := cfg.RowOverscan
	if overscan <= 0 {
		overscan = DefaultRowOverscan
	}

	g := &Grid{
		columns:     cols,
		source:      cfg.Source,
		viewport:    Viewport{RowHeight: rowHeight},
		rowOverscan: overscan,
		totalRows:   -1,
		manager:     newPluginManager(logger),
		logger:      logger,
	}

	for _, p := range cfg.Plugins {
		if err := g.AttachPlugin(p); err != nil {
			g.Close()
			return nil, err
		}
	}
	return g, nil
}

// AttachPlugin adds a plugin to the grid. Duplicate names and missing
// required dependencies are configuration errors returned synchronously.
func (g *Grid) AttachPlugin(p Plugin) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGridClosed
	}
	g.mu.Unlock()

	if err := g.manager.attach(p, newGridHandle(g)); err != nil {
		return err
	}
	g.logger.Debug("plugin attached", "plugin", p.Name())
	g.RequestRender()
	return nil
}

// DetachPlugin removes the named plugin, firing its disconnect signal.
// Detaching a plugin that another attached plugin requires is refused
// with ErrDependencyHeld.
func (g *Grid) DetachPlugin(name string) error {
	if err := g.manager.detach(name); err != nil {
		return err
	}
	g.logger.Debug("plugin detached", "plugin", name)
	g.RequestRender()
	return nil
}

// GetPlugin resolves an attached plugin by exact name, or nil.
// Callers must nil-check; lookup misses do not panic.
func (g *Grid) GetPlugin(name string) Plugin { return g.manager.lookup(name) }

// Query dispatches a read-only query to the attached plugins in
// attachment order and reports whether any plugin answered it.
func (g *Grid) Query(q *Query) bool { return g.manager.query(q) }

// SetColumns replaces the column set.
func (g *Grid) SetColumns(cols []Column) error {
	if err := validateColumns(cols); err != nil {
		return err
	}
	g.mu.Lock()
	g.columns = cols
	g.visIdx = nil
	g.mu.Unlock()
	g.RequestRender()
	return nil
}

// Columns returns a copy of the configured column set.
func (g *Grid) Columns() []Column {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Column, len(g.columns))
	copy(out, g.columns)
	return out
}

// SetSource replaces the in-memory data source.
func (g *Grid) SetSource(source DataSource) {
	g.mu.Lock()
	g.source = source
	g.visIdx = nil
	g.mu.Unlock()
	g.RequestRender()
}

// SetSortModel sets the opaque sort descriptor. In-memory grids
// understand SortState; server-side plugins forward the descriptor to
// the external data source unchanged.
func (g *Grid) SetSortModel(model interface{}) {
	g.mu.Lock()
	g.sortModel = model
	g.visIdx = nil
	g.mu.Unlock()
	g.RequestRender()
}

// SetFilterModel sets the opaque filter descriptor. In-memory grids
// understand Filter; server-side plugins forward the descriptor to the
// external data source unchanged.
func (g *Grid) SetFilterModel(model interface{}) {
	g.mu.Lock()
	g.filterModel = model
	g.visIdx = nil
	g.mu.Unlock()
	g.RequestRender()
}

// SortByField is a convenience for in-memory sorting by column field.
func (g *Grid) SortByField(field string, dir SortDirection) error {
	g.mu.Lock()
	idx := -1
	for i, c := range g.columns {
		if c.Field == field {
			idx = i
			break
		}
	}
	g.mu.Unlock()
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, field)
	}
	g.SetSortModel(SortState{Column: idx, Direction: dir})
	return nil
}

// SetViewport updates the viewport dimensions.
func (g *Grid) SetViewport(width, height float64) {
	g.mu.Lock()
	g.viewport.Width = width
	g.viewport.Height = height
	g.mu.Unlock()
	g.RequestRender()
}

// Scroll records a new absolute scroll position and broadcasts the tick
// to all attached plugins.
func (g *Grid) Scroll(left, top float64) {
	g.mu.Lock()
	ev := ScrollEvent{
		Left:   left,
		Top:    top,
		DeltaX: left - g.viewport.ScrollLeft,
		DeltaY: top - g.viewport.ScrollTop,
	}
	g.viewport.ScrollLeft = left
	g.viewport.ScrollTop = top
	g.mu.Unlock()

	g.manager.onScroll(ev)
	if ev.DeltaY != 0 {
		// Vertical movement changes the visible row window.
		g.RequestRender()
	}
}

// RowCount returns the total number of rows: a plugin-reported count if
// one was set, otherwise the in-memory source's filtered count.
func (g *Grid) RowCount() int {
	g.mu.Lock()
	if g.totalRows >= 0 {
		n := g.totalRows
		g.mu.Unlock()
		return n
	}
	g.mu.Unlock()
	return len(g.resolveRowOrder())
}

// rowWindow computes the materialized row range [start, end) from the
// viewport geometry, expanded by the row overscan and clamped to the
// dataset bounds.
func (g *Grid) rowWindow(total int) (int, int) {
	g.mu.Lock()
	vp := g.viewport
	overscan := g.rowOverscan
	g.mu.Unlock()

	if total <= 0 {
		return 0, 0
	}
	start := int(vp.ScrollTop/vp.RowHeight) - overscan
	count := int(math.Ceil(vp.Height/vp.RowHeight)) + 2*overscan + 1
	if vp.Height <= 0 {
		// No viewport yet: materialize everything (small grids, tests).
		start, count = 0, total
	}
	if start < 0 {
		start = 0
	}
	end := start + count
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

// Render runs one render pass: resolve the effective column set, fold it
// through the plugins' ProcessColumns hooks, materialize the visible row
// window, then broadcast AfterRender. It returns the resulting frame.
func (g *Grid) Render() (*Frame, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, ErrGridClosed
	}
	cols := visibleColumns(g.columns)
	// Default frame metrics assume every column is materialized;
	// plugins overwrite them during the fold.
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = layout.ParseWidth(c.Width)
	}
	g.padLeft = 0
	g.totalWidth = layout.TotalWidth(widths)
	g.mu.Unlock()

	rendered := g.manager.processColumns(cols)

	total := g.RowCount()
	start, end := g.rowWindow(total)
	rows := g.materializeRows(start, end, rendered)

	g.mu.Lock()
	g.seq++
	frame := &Frame{
		Sequence:   g.seq,
		Columns:    rendered,
		StartRow:   start,
		Rows:       rows,
		TotalRows:  total,
		PadLeft:    g.padLeft,
		TotalWidth: g.totalWidth,
	}
	g.dirty = false
	g.mu.Unlock()

	g.manager.afterRender()
	g.Dispatch(&Event{Name: EventRenderComplete, Detail: map[string]interface{}{
		"sequence": frame.Sequence,
	}})
	return frame, nil
}

// materializeRows fills the row window, preferring a row-providing
// plugin (QueryRowWindow) over the in-memory source.
func (g *Grid) materializeRows(start, end int, rendered []Column) []WindowRow {
	if end <= start {
		return nil
	}

	q := &Query{Name: QueryRowWindow, Args: RowWindowRequest{Start: start, End: end}}
	if g.Query(q) {
		if res, ok := q.Result.(*RowWindowResult); ok && res != nil {
			return g.projectRows(res.Rows, rendered)
		}
		g.logger.Warn("row window query returned unexpected result type")
	}

	g.mu.Lock()
	source := g.source
	g.mu.Unlock()
	if source == nil {
		return nil
	}

	order := g.resolveRowOrder()
	rows := make([]WindowRow, 0, end-start)
	for i := start; i < end && i < len(order); i++ {
		full, err := source.Row(order[i])
		if err != nil {
			rows = append(rows, WindowRow{Index: i, State: RowError, Err: err})
			continue
		}
		rows = append(rows, WindowRow{Index: i, State: RowLoaded, Cells: g.projectCells(full, rendered)})
	}
	return rows
}

// projectRows reduces full-width plugin rows to the rendered columns.
func (g *Grid) projectRows(in []WindowRow, rendered []Column) []WindowRow {
	out := make([]WindowRow, len(in))
	for i, r := range in {
		out[i] = r
		if r.State == RowLoaded {
			out[i].Cells = g.projectCells(r.Cells, rendered)
		}
	}
	return out
}

// projectCells picks the cells belonging to the rendered columns out of
// a full-width row, matching by field position in the effective set.
func (g *Grid) projectCells(full []Value, rendered []Column) []Value {
	g.mu.Lock()
	effective := visibleColumns(g.columns)
	g.mu.Unlock()

	pos := make(map[string]int, len(effective))
	for i, c := range effective {
		pos[c.Field] = i
	}
	cells := make([]Value, len(rendered))
	for i, c := range rendered {
		if j, ok := pos[c.Field]; ok && j < len(full) {
			cells[i] = full[j]
		} else {
			cells[i] = NewNullValue(c.Type)
		}
	}
	return cells
}

// resolveRowOrder computes (and caches) the filtered and sorted row
// order for the in-memory source.
func (g *Grid) resolveRowOrder() []int {
	g.mu.Lock()
	if g.visIdx != nil {
		idx := g.visIdx
		g.mu.Unlock()
		return idx
	}
	source := g.source
	sortModel := g.sortModel
	filterModel := g.filterModel
	cols := g.columns
	g.mu.Unlock()

	if source == nil {
		return nil
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Field
	}

	filter, _ := filterModel.(Filter)
	n := source.RowCount()
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if filter != nil {
			row, err := source.Row(i)
			if err != nil {
				continue
			}
			ok, err := filter.Evaluate(row, names)
			if err != nil {
				g.logger.Warn("filter evaluation failed", "row", i, "error", err)
				continue
			}
			if !ok {
				continue
			}
		}
		order = append(order, i)
	}

	if st, ok := sortModel.(SortState); ok && st.IsSorted() && st.Column < len(cols) {
		col := st.Column
		sort.SliceStable(order, func(a, b int) bool {
			va, erra := source.Cell(order[a], col)
			vb, errb := source.Cell(order[b], col)
			if erra != nil || errb != nil {
				return false
			}
			less := lessValue(va, vb)
			if st.Direction == SortDescending {
				return lessValue(vb, va)
			}
			return less
		})
	}

	g.mu.Lock()
	g.visIdx = order
	g.mu.Unlock()
	return order
}

// lessValue orders two cell values: numerically when both are numeric,
// otherwise by formatted text. Nulls sort first.
func lessValue(a, b Value) bool {
	if a.IsNull != b.IsNull {
		return a.IsNull
	}
	fa, oka := a.Float()
	fb, okb := b.Float()
	if oka && okb {
		return fa < fb
	}
	return a.Formatted < b.Formatted
}

// RequestRender marks the grid dirty and notifies the host adapter.
func (g *Grid) RequestRender() {
	g.mu.Lock()
	g.dirty = true
	fn := g.onRender
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// OnRenderRequested registers the host adapter callback invoked whenever
// a new render pass is wanted.
func (g *Grid) OnRenderRequested(fn func()) {
	g.mu.Lock()
	g.onRender = fn
	g.mu.Unlock()
}

// Dirty reports whether a render pass has been requested since the last
// completed one.
func (g *Grid) Dirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dirty
}

// Status returns a short summary line in the form the status bar shows:
// visible/total columns and rows, plus the active sort if any.
func (g *Grid) Status() string {
	g.mu.Lock()
	totalCols := len(g.columns)
	shownCols := len(visibleColumns(g.columns))
	sortModel := g.sortModel
	cols := g.columns
	g.mu.Unlock()

	shownRows := g.RowCount()
	status := fmt.Sprintf("%d/%d columns x %d rows", shownCols, totalCols, shownRows)
	if st, ok := sortModel.(SortState); ok && st.IsSorted() && st.Column < len(cols) {
		dir := "asc"
		if st.Direction == SortDescending {
			dir = "desc"
		}
		status += fmt.Sprintf(" | sorted: %s %s", cols[st.Column].Field, dir)
	}
	return status
}

// Close tears the grid down, detaching every plugin in reverse
// attachment order. The grid is unusable afterwards.
func (g *Grid) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.mu.Unlock()

	g.manager.detachAll()
}
