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
	"context"
	"log/slog"
)

// ScrollEvent describes one scroll tick of the host viewport.
type ScrollEvent struct {
	// Left and Top are the absolute scroll offsets in pixels.
	Left, Top float64
	// DeltaX and DeltaY are the offsets relative to the previous tick.
	DeltaX, DeltaY float64
}

// Query is a read-only request answered by an attached plugin, letting the
// host or other plugins ask for derived information without coupling to
// plugin internals. The answering plugin fills Result.
type Query struct {
	// Name identifies the question, e.g. colvirt.QueryVisibleRange.
	Name string
	// Args carries request parameters. The concrete type is part of each
	// query's contract.
	Args interface{}
	// Result is filled by the plugin that answers the query.
	Result interface{}
}

// Dependency declares that a plugin relies on another named plugin.
type Dependency struct {
	// Name is the depended-on plugin's name.
	Name string
	// Required makes a missing dependency a configuration error at attach
	// time. Optional dependencies degrade gracefully.
	Required bool
	// Reason documents why the dependency exists.
	Reason string
}

// Plugin is the capability surface every grid plugin implements.
//
// Hooks are only invoked between a successful Attach and a subsequent
// Detach. Embed PluginBase to get default no-op implementations for the
// hooks a plugin does not care about.
type Plugin interface {
	// Name returns the stable unique identifier used for lookup.
	Name() string

	// DefaultConfig returns the plugin's default configuration, merged
	// under caller-supplied config (caller values win on key conflicts).
	DefaultConfig() map[string]interface{}

	// Attach is called exactly once when the plugin is added to a grid.
	// An error aborts the registration; the plugin is not added.
	Attach(h *GridHandle) error

	// Detach is called exactly once on removal. It must release all
	// private state not already covered by the handle's disconnect signal.
	Detach()

	// ProcessColumns transforms the ordered column list into the column
	// list to actually render. Implementations that do not alter columns
	// must return a fresh copy of the input, not a mutated alias.
	ProcessColumns(cols []Column) []Column

	// AfterRender runs once per completed render pass, for measurement or
	// adjustment that depends on the final layout.
	AfterRender()

	// OnScroll runs on every scroll tick. Implementations must be cheap
	// and should early-return when the relevant axis delta is
	// insignificant.
	OnScroll(ev ScrollEvent)

	// HandleQuery answers a read-only query. Returning true claims the
	// query and stops dispatch.
	HandleQuery(q *Query) bool

	// Dependencies declares the plugin's soft and hard dependencies.
	Dependencies() []Dependency
}

// PluginBase provides default no-op hook implementations.
// Concrete plugins embed it and override what they need.
type PluginBase struct{}

func (PluginBase) DefaultConfig() map[string]interface{} { return nil }
func (PluginBase) Attach(*GridHandle) error              { return nil }
func (PluginBase) Detach()                               {}
func (PluginBase) AfterRender()                          {}
func (PluginBase) OnScroll(ScrollEvent)                  {}
func (PluginBase) HandleQuery(*Query) bool               { return false }
func (PluginBase) Dependencies() []Dependency            { return nil }

// ProcessColumns returns a fresh copy of the input columns.
func (PluginBase) ProcessColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// MergeConfig layers caller-supplied values over a plugin's defaults.
// Caller values win on key conflicts. Neither input map is modified.
func MergeConfig(defaults, overrides map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Viewport is the host viewport geometry the engine renders into.
type Viewport struct {
	// ScrollLeft and ScrollTop are the current scroll offsets in pixels.
	ScrollLeft, ScrollTop float64
	// Width and Height are the viewport dimensions in pixels.
	Width, Height float64
	// RowHeight is the fixed height of one row in pixels.
	RowHeight float64
}

// GridHandle is the surface a plugin receives at attach time. It exposes
// the grid's public query/column/row state plus a disconnect signal so the
// plugin's timers and observers can self-cancel on teardown.
type GridHandle struct {
	grid   *Grid
	ctx    context.Context
	cancel context.CancelFunc

	cleanups []func()
}

func newGridHandle(g *Grid) *GridHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &GridHandle{grid: g, ctx: ctx, cancel: cancel}
}

// Done is the disconnect signal: the channel closes when the plugin is
// detached or the grid tears down. Plugins must wire their async work to
// this channel.
func (h *GridHandle) Done() <-chan struct{} { return h.ctx.Done() }

// Context returns a context canceled on detach, for passing to fetches.
func (h *GridHandle) Context() context.Context { return h.ctx }

// OnCleanup registers fn to run exactly once at detach, after the
// disconnect signal fires. Cleanups run in reverse registration order.
func (h *GridHandle) OnCleanup(fn func()) {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	h.cleanups = append(h.cleanups, fn)
}

// disconnect fires the signal and runs cleanups in reverse order.
func (h *GridHandle) disconnect() {
	h.cancel()
	h.grid.mu.Lock()
	cleanups := h.cleanups
	h.cleanups = nil
	h.grid.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Logger returns the grid's structured logger.
func (h *GridHandle) Logger() *slog.Logger { return h.grid.logger }

// Columns returns a copy of the grid's effective (non-hidden) column set.
func (h *GridHandle) Columns() []Column {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	return visibleColumns(h.grid.columns)
}

// RowCount returns the grid's current total row count.
func (h *GridHandle) RowCount() int { return h.grid.RowCount() }

// Viewport returns the current viewport geometry.
func (h *GridHandle) Viewport() Viewport {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	return h.grid.viewport
}

// SortModel returns the grid's opaque sort descriptor (nil when unsorted).
func (h *GridHandle) SortModel() interface{} {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	return h.grid.sortModel
}

// FilterModel returns the grid's opaque filter descriptor (nil when
// unfiltered).
func (h *GridHandle) FilterModel() interface{} {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	return h.grid.filterModel
}

// SetFrameMetrics records the left padding and total content width the
// render layer must apply so scrollbar range stays correct while
// off-screen columns are not materialized.
func (h *GridHandle) SetFrameMetrics(padLeft, totalWidth float64) {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	h.grid.padLeft = padLeft
	h.grid.totalWidth = totalWidth
}

// SetTotalRowCount lets a row-providing plugin report the dataset size
// (e.g. totalRowCount from a server-side response). A negative value
// clears the override.
func (h *GridHandle) SetTotalRowCount(n int) {
	h.grid.mu.Lock()
	defer h.grid.mu.Unlock()
	h.grid.totalRows = n
}

// RequestRender marks the grid dirty and notifies the host adapter that a
// new render pass is wanted.
func (h *GridHandle) RequestRender() { h.grid.RequestRender() }

// Plugin resolves another attached plugin by name, or nil. Optional
// dependencies are probed this way and degrade gracefully when absent.
func (h *GridHandle) Plugin(name string) Plugin { return h.grid.GetPlugin(name) }

// Query dispatches a read-only query to the attached plugins and reports
// whether any plugin answered it.
func (h *GridHandle) Query(q *Query) bool { return h.grid.Query(q) }

// Dispatch delivers a grid event on behalf of the plugin.
func (h *GridHandle) Dispatch(ev *Event) bool { return h.grid.Dispatch(ev) }
