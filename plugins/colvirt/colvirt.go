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

// Package colvirt implements column virtualization: for grids with many
// columns, only the columns inside (or near) the viewport are
// materialized, while the rendered frame keeps the full content width so
// scrolling stays seamless.
package colvirt

import (
	"sync"

	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/internal/layout"
)

// PluginName is the stable identifier used for lookup.
const PluginName = "column-virtualization"

// QueryVisibleRange asks the plugin for its current visible column
// window. Result is filled with a VisibleRange.
const QueryVisibleRange = "colvirt/visible-range"

// VisibleRange is the answer to QueryVisibleRange.
type VisibleRange struct {
	// Active reports whether virtualization is currently on.
	Active bool
	// Start and End are the inclusive visible column bounds (after
	// overscan expansion). Meaningless when Active is false.
	Start, End int
	// TotalWidth is the full unvirtualized content width.
	TotalWidth float64
}

// scrollEpsilon is the minimum horizontal delta, in pixels, that
// triggers a window recomputation. Sub-pixel deltas are ignored.
const scrollEpsilon = 1.0

// Config configures the virtualization plugin.
type Config struct {
	// Threshold is the column count above which virtualization engages
	// (default 30).
	Threshold int
	// Overscan is the number of extra columns materialized on each side
	// of the viewport (default 3).
	Overscan int
	// AutoEnable gates the whole feature (default true). When false the
	// plugin passes columns through untouched.
	AutoEnable bool
}

// DefaultConfig returns the plugin defaults.
func DefaultConfig() Config {
	return Config{Threshold: 30, Overscan: 3, AutoEnable: true}
}

// Plugin is the column virtualization plugin. Attach it to a grid via
// datagrid.Config.Plugins or Grid.AttachPlugin.
type Plugin struct {
	datagrid.PluginBase

	cfg Config

	mu     sync.Mutex
	handle *datagrid.GridHandle

	// Derived, per-render state. Owned exclusively by this instance and
	// discarded on detach.
	active     bool
	rng        layout.Range
	lastLeft   float64
	widths     []float64
	offsets    []float64
	totalWidth float64
}

// New creates the plugin with the given configuration. Start from
// DefaultConfig and override the fields you need:
//
//	cfg := colvirt.DefaultConfig()
//	cfg.Threshold = 50
//	grid.AttachPlugin(colvirt.New(cfg))
func New(cfg Config) *Plugin {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.Overscan < 0 {
		cfg.Overscan = 0
	}
	return &Plugin{cfg: cfg}
}

// Name implements datagrid.Plugin.
func (p *Plugin) Name() string { return PluginName }

// DefaultConfig implements datagrid.Plugin.
func (p *Plugin) DefaultConfig() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"threshold":  def.Threshold,
		"overscan":   def.Overscan,
		"autoEnable": def.AutoEnable,
	}
}

// Attach implements datagrid.Plugin.
func (p *Plugin) Attach(h *datagrid.GridHandle) error {
	p.mu.Lock()
	p.handle = h
	p.mu.Unlock()
	return nil
}

// Detach implements datagrid.Plugin, discarding all derived state.
func (p *Plugin) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handle = nil
	p.active = false
	p.widths = nil
	p.offsets = nil
	p.rng = layout.Range{}
}

// ProcessColumns narrows the column list to the visible window when
// virtualization is active. The layout state is recomputed here because
// the hook runs on every render pass, which covers both column-set
// changes and scroll-triggered re-renders.
func (p *Plugin) ProcessColumns(cols []datagrid.Column) []datagrid.Column {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := p.handle
	if h == nil {
		out := make([]datagrid.Column, len(cols))
		copy(out, cols)
		return out
	}

	p.widths = make([]float64, len(cols))
	for i, c := range cols {
		p.widths[i] = layout.ParseWidth(c.Width)
	}
	p.offsets = layout.Offsets(p.widths)
	p.totalWidth = layout.TotalWidth(p.widths)

	p.active = layout.ShouldVirtualize(len(cols), p.cfg.Threshold, p.cfg.AutoEnable)
	if !p.active {
		h.SetFrameMetrics(0, p.totalWidth)
		out := make([]datagrid.Column, len(cols))
		copy(out, cols)
		return out
	}

	vp := h.Viewport()
	p.lastLeft = vp.ScrollLeft
	p.rng = layout.VisibleRange(vp.ScrollLeft, vp.Width, p.offsets, p.widths, p.cfg.Overscan)

	// The renderer pads by startCol's left offset and keeps the full
	// content width so the scrollbar range stays correct.
	h.SetFrameMetrics(p.offsets[p.rng.Start], p.totalWidth)

	out := make([]datagrid.Column, 0, p.rng.End-p.rng.Start+1)
	for i := p.rng.Start; i <= p.rng.End; i++ {
		out = append(out, cols[i])
	}
	return out
}

// OnScroll requests a re-render when the horizontal delta since the last
// computed window is at least one pixel. Sub-pixel deltas and pure
// vertical scrolling are ignored.
func (p *Plugin) OnScroll(ev datagrid.ScrollEvent) {
	p.mu.Lock()
	h := p.handle
	active := p.active
	last := p.lastLeft
	p.mu.Unlock()

	if h == nil || !active {
		return
	}
	delta := ev.Left - last
	if delta < 0 {
		delta = -delta
	}
	if delta < scrollEpsilon {
		return
	}
	h.RequestRender()
}

// HandleQuery answers QueryVisibleRange.
func (p *Plugin) HandleQuery(q *datagrid.Query) bool {
	if q.Name != QueryVisibleRange {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	q.Result = VisibleRange{
		Active:     p.active,
		Start:      p.rng.Start,
		End:        p.rng.End,
		TotalWidth: p.totalWidth,
	}
	return true
}
