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

// Package widget hosts a grid inside a Fyne application. The widget is
// a thin shell: scrolling, loading states and column windows all come
// from the engine's frames, this package only paints them.
package widget

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/internal/layout"
)

// Config controls the widget chrome.
type Config struct {
	ShowHeader    bool
	ShowStatusBar bool
}

// DefaultConfig enables all chrome.
func DefaultConfig() Config {
	return Config{ShowHeader: true, ShowStatusBar: true}
}

// DataGrid is a Fyne widget displaying live frames from a grid engine.
type DataGrid struct {
	widget.BaseWidget

	grid *datagrid.Grid
	cfg  Config

	header  *fyne.Container
	rows    *fyne.Container
	scroll  *container.Scroll
	status  *widget.Label
	content fyne.CanvasObject
}

// NewDataGrid hosts the grid with the default chrome.
func NewDataGrid(grid *datagrid.Grid) *DataGrid {
	return NewDataGridWithConfig(grid, DefaultConfig())
}

// NewDataGridWithConfig hosts the grid. The widget registers itself as
// the grid's render callback; one grid should have one host widget.
func NewDataGridWithConfig(grid *datagrid.Grid, cfg Config) *DataGrid {
	d := &DataGrid{
		grid:   grid,
		cfg:    cfg,
		header: container.NewHBox(),
		rows:   container.NewVBox(),
		status: widget.NewLabel(""),
	}
	d.ExtendBaseWidget(d)

	d.scroll = container.NewScroll(d.rows)
	d.scroll.OnScrolled = func(pos fyne.Position) {
		d.grid.Scroll(float64(pos.X), float64(pos.Y))
	}

	objects := []fyne.CanvasObject{}
	if cfg.ShowHeader {
		objects = append(objects, d.header)
	}
	objects = append(objects, d.scroll)
	if cfg.ShowStatusBar {
		objects = append(objects, d.status)
	}
	switch len(objects) {
	case 1:
		d.content = objects[0]
	case 2:
		if cfg.ShowHeader {
			d.content = container.NewBorder(objects[0], nil, nil, nil, objects[1])
		} else {
			d.content = container.NewBorder(nil, objects[1], nil, nil, objects[0])
		}
	default:
		d.content = container.NewBorder(objects[0], objects[2], nil, nil, objects[1])
	}

	grid.OnRenderRequested(func() {
		fyne.Do(d.repaint)
	})
	return d
}

// CreateRenderer implements fyne.Widget.
func (d *DataGrid) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.content)
}

// Resize propagates the new viewport size to the engine.
func (d *DataGrid) Resize(size fyne.Size) {
	d.BaseWidget.Resize(size)
	d.grid.SetViewport(float64(size.Width), float64(size.Height))
}

// repaint pulls a fresh frame and rebuilds the cell tree. Runs on the
// Fyne goroutine.
func (d *DataGrid) repaint() {
	frame, err := d.grid.Render()
	if err != nil {
		d.status.SetText("render failed: " + err.Error())
		return
	}

	d.header.Objects = d.buildHeader(frame)
	d.header.Refresh()

	d.rows.Objects = d.buildRows(frame)
	d.rows.Refresh()

	if d.cfg.ShowStatusBar {
		d.status.SetText(d.grid.Status())
	}
}

func (d *DataGrid) buildHeader(frame *datagrid.Frame) []fyne.CanvasObject {
	rowHeight := d.rowHeight()
	cells := make([]fyne.CanvasObject, 0, len(frame.Columns)+1)
	if frame.PadLeft > 0 {
		cells = append(cells, spacer(float32(frame.PadLeft), rowHeight))
	}
	for _, c := range frame.Columns {
		label := widget.NewLabel(c.HeaderText())
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.Truncation = fyne.TextTruncateEllipsis
		cells = append(cells, sized(float32(layout.ParseWidth(c.Width)), rowHeight, label))
	}
	return cells
}

func (d *DataGrid) buildRows(frame *datagrid.Frame) []fyne.CanvasObject {
	rowHeight := d.rowHeight()
	out := make([]fyne.CanvasObject, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		out = append(out, d.buildRow(frame, row, rowHeight))
	}
	// A full-width spacer keeps the horizontal scroll range honest when
	// plugins narrow the rendered columns.
	if frame.TotalWidth > frame.PadLeft+renderedWidth(frame.Columns) {
		out = append(out, spacer(float32(frame.TotalWidth), 1))
	}
	return out
}

func (d *DataGrid) buildRow(frame *datagrid.Frame, row datagrid.WindowRow, rowHeight float32) fyne.CanvasObject {
	switch row.State {
	case datagrid.RowLoading:
		label := widget.NewLabel(fmt.Sprintf("loading row %d…", row.Index))
		label.TextStyle = fyne.TextStyle{Italic: true}
		return label
	case datagrid.RowError:
		label := widget.NewLabel(fmt.Sprintf("row %d failed: %v", row.Index, row.Err))
		label.Importance = widget.DangerImportance
		return label
	}

	cells := make([]fyne.CanvasObject, 0, len(frame.Columns)+1)
	if frame.PadLeft > 0 {
		cells = append(cells, spacer(float32(frame.PadLeft), rowHeight))
	}
	for i, c := range frame.Columns {
		text := ""
		if i < len(row.Cells) {
			text = row.Cells[i].Formatted
		}
		label := widget.NewLabel(text)
		label.Truncation = fyne.TextTruncateEllipsis
		cells = append(cells, sized(float32(layout.ParseWidth(c.Width)), rowHeight, label))
	}
	return container.NewHBox(cells...)
}

func (d *DataGrid) rowHeight() float32 {
	return float32(datagrid.DefaultRowHeight)
}

func renderedWidth(cols []datagrid.Column) float64 {
	var sum float64
	for _, c := range cols {
		sum += layout.ParseWidth(c.Width)
	}
	return sum
}

// sized forces a canvas object into a fixed cell.
func sized(w, h float32, obj fyne.CanvasObject) fyne.CanvasObject {
	return container.NewGridWrap(fyne.NewSize(w, h), obj)
}

// spacer is an invisible fixed-size filler.
func spacer(w, h float32) fyne.CanvasObject {
	r := canvas.NewRectangle(color.Transparent)
	return container.NewGridWrap(fyne.NewSize(w, h), r)
}
