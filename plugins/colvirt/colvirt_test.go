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

package colvirt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

func wideGrid(t *testing.T, columns int, cfg Config) *datagrid.Grid {
	t.Helper()

	names := make([]string, columns)
	types := make([]datagrid.DataType, columns)
	row := make(datagrid.Row, columns)
	cols := make([]datagrid.Column, columns)
	for i := 0; i < columns; i++ {
		names[i] = fmt.Sprintf("c%02d", i)
		types[i] = datagrid.TypeInt
		row[i] = datagrid.NewValue(int64(i), datagrid.TypeInt)
		cols[i] = datagrid.Column{Field: names[i], Width: "100", Type: datagrid.TypeInt}
	}
	source, err := datagrid.NewSliceSource(names, types, []datagrid.Row{row})
	require.NoError(t, err)

	grid, err := datagrid.New(datagrid.Config{
		Columns: cols,
		Source:  source,
		Plugins: []datagrid.Plugin{New(cfg)},
	})
	require.NoError(t, err)
	t.Cleanup(grid.Close)
	return grid
}

func TestNarrowsWideGridToVisibleWindow(t *testing.T) {
	grid := wideGrid(t, 50, DefaultConfig())
	grid.SetViewport(800, 600)
	grid.Scroll(250, 0)

	frame, err := grid.Render()
	require.NoError(t, err)

	// 50 columns of 100px at scrollLeft 250 with overscan 3: columns
	// 0..13 are materialized.
	require.Len(t, frame.Columns, 14)
	assert.Equal(t, "c00", frame.Columns[0].Field)
	assert.Equal(t, "c13", frame.Columns[13].Field)
	assert.Equal(t, 0.0, frame.PadLeft)
	assert.Equal(t, 5000.0, frame.TotalWidth)

	// Cell values line up with their columns after narrowing.
	require.Len(t, frame.Rows[0].Cells, 14)
	assert.Equal(t, "13", frame.Rows[0].Cells[13].Formatted)
}

func TestPadLeftTracksScrollPosition(t *testing.T) {
	grid := wideGrid(t, 50, DefaultConfig())
	grid.SetViewport(800, 600)
	grid.Scroll(1250, 0)

	frame, err := grid.Render()
	require.NoError(t, err)

	// Window [9, 23]: start column 12 minus overscan 3, left offset 900.
	require.Len(t, frame.Columns, 15)
	assert.Equal(t, "c09", frame.Columns[0].Field)
	assert.Equal(t, 900.0, frame.PadLeft)
	assert.Equal(t, "9", frame.Rows[0].Cells[0].Formatted)
}

func TestBelowThresholdPassesThrough(t *testing.T) {
	grid := wideGrid(t, 20, DefaultConfig())
	grid.SetViewport(400, 600)

	frame, err := grid.Render()
	require.NoError(t, err)
	assert.Len(t, frame.Columns, 20)
	assert.Equal(t, 0.0, frame.PadLeft)
	assert.Equal(t, 2000.0, frame.TotalWidth)

	q := &datagrid.Query{Name: QueryVisibleRange}
	require.True(t, grid.Query(q))
	assert.False(t, q.Result.(VisibleRange).Active)
}

func TestAutoEnableOffDisablesVirtualization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoEnable = false
	grid := wideGrid(t, 50, cfg)
	grid.SetViewport(400, 600)

	frame, err := grid.Render()
	require.NoError(t, err)
	assert.Len(t, frame.Columns, 50)
}

func TestVisibleRangeQuery(t *testing.T) {
	grid := wideGrid(t, 50, DefaultConfig())
	grid.SetViewport(800, 600)
	grid.Scroll(250, 0)
	_, err := grid.Render()
	require.NoError(t, err)

	q := &datagrid.Query{Name: QueryVisibleRange}
	require.True(t, grid.Query(q))
	vr := q.Result.(VisibleRange)
	assert.True(t, vr.Active)
	assert.Equal(t, 0, vr.Start)
	assert.Equal(t, 13, vr.End)
	assert.Equal(t, 5000.0, vr.TotalWidth)

	assert.False(t, grid.Query(&datagrid.Query{Name: "colvirt/unknown"}))
}

func TestSubPixelScrollIsIgnored(t *testing.T) {
	grid := wideGrid(t, 50, DefaultConfig())
	grid.SetViewport(800, 600)
	_, err := grid.Render()
	require.NoError(t, err)

	renders := 0
	grid.OnRenderRequested(func() { renders++ })

	grid.Scroll(0.4, 0)
	assert.Equal(t, 0, renders, "sub-pixel deltas must not re-render")

	grid.Scroll(5, 0)
	assert.Equal(t, 1, renders)
}

func TestScrollLoadsNewColumns(t *testing.T) {
	grid := wideGrid(t, 100, DefaultConfig())
	grid.SetViewport(500, 600)

	frame, err := grid.Render()
	require.NoError(t, err)
	firstEnd := frame.Columns[len(frame.Columns)-1].Field

	grid.Scroll(4000, 0)
	frame, err = grid.Render()
	require.NoError(t, err)
	assert.NotEqual(t, firstEnd, frame.Columns[len(frame.Columns)-1].Field)
	assert.Greater(t, frame.PadLeft, 0.0)

	// Scrolling back restores the leading window.
	grid.Scroll(0, 0)
	frame, err = grid.Render()
	require.NoError(t, err)
	assert.Equal(t, "c00", frame.Columns[0].Field)
}
