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

package serverside

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// fakeBackend serves deterministic rows and records every request.
type fakeBackend struct {
	mu       sync.Mutex
	total    int
	requests []GetRowsRequest
	failAll  bool
}

func (f *fakeBackend) GetRows(ctx context.Context, req GetRowsRequest) (*GetRowsResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fail := f.failAll
	f.mu.Unlock()

	if fail {
		return nil, errors.New("backend unavailable")
	}

	end := req.EndRow
	if end > f.total {
		end = f.total
	}
	rows := make([]datagrid.Row, 0, end-req.StartRow)
	for i := req.StartRow; i < end; i++ {
		rows = append(rows, datagrid.Row{
			datagrid.NewValue(int64(i), datagrid.TypeInt),
			datagrid.NewValue(fmt.Sprintf("row-%d", i), datagrid.TypeString),
		})
	}
	return &GetRowsResult{Rows: rows, TotalRowCount: f.total}, nil
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeBackend) setFail(fail bool) {
	f.mu.Lock()
	f.failAll = fail
	f.mu.Unlock()
}

func testColumns() []datagrid.Column {
	return []datagrid.Column{
		{Field: "id", Type: datagrid.TypeInt},
		{Field: "name", Type: datagrid.TypeString},
	}
}

// newTestGrid builds a grid driven by the plugin and returns a channel
// signalled on every render request.
func newTestGrid(t *testing.T, backend DataSource, blockSize, cacheBlocks int) (*datagrid.Grid, *Plugin, chan struct{}) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Source = backend
	cfg.BlockSize = blockSize
	cfg.CacheBlocks = cacheBlocks
	cfg.PrefetchBlocks = 0
	plugin := New(cfg)

	grid, err := datagrid.New(datagrid.Config{
		Columns: testColumns(),
		Plugins: []datagrid.Plugin{plugin},
	})
	require.NoError(t, err)
	t.Cleanup(grid.Close)

	renders := make(chan struct{}, 16)
	grid.OnRenderRequested(func() {
		select {
		case renders <- struct{}{}:
		default:
		}
	})
	return grid, plugin, renders
}

func waitRender(t *testing.T, renders chan struct{}) {
	t.Helper()
	select {
	case <-renders:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a render request")
	}
}

func TestPluginServesRowsAfterLoad(t *testing.T) {
	backend := &fakeBackend{total: 25}
	grid, _, renders := newTestGrid(t, backend, 10, 4)

	// Attach kicks off the block 0 bootstrap fetch.
	waitRender(t, renders)

	frame, err := grid.Render()
	require.NoError(t, err)
	assert.Equal(t, 25, frame.TotalRows)
	require.NotEmpty(t, frame.Rows)
	assert.Equal(t, datagrid.RowLoaded, frame.Rows[0].State)
	assert.Equal(t, "row-0", frame.Rows[0].Cells[1].Formatted)

	// The whole 25-row set spans blocks 0..2; re-render until every
	// outstanding block fetch has landed.
	require.Eventually(t, func() bool {
		frame, err := grid.Render()
		if err != nil || len(frame.Rows) != 25 {
			return false
		}
		for _, row := range frame.Rows {
			if row.State != datagrid.RowLoaded {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, backend.requestCount())
}

func TestPluginDeduplicatesInFlightBlocks(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{total: 30}
	slow := &slowBackend{inner: backend, release: release, passFirst: true}
	grid, _, renders := newTestGrid(t, slow, 10, 4)

	// The bootstrap fetch of block 0 passes straight through.
	waitRender(t, renders)
	require.Equal(t, 1, backend.requestCount())

	// Blocks 1 and 2 stay in flight across several renders; each must
	// be requested exactly once.
	for i := 0; i < 3; i++ {
		_, err := grid.Render()
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		return backend.requestCount() == 3
	}, 2*time.Second, 10*time.Millisecond)

	close(release)
	require.Eventually(t, func() bool {
		frame, err := grid.Render()
		if err != nil {
			return false
		}
		for _, row := range frame.Rows {
			if row.State != datagrid.RowLoaded {
				return false
			}
		}
		return len(frame.Rows) == 30
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, backend.requestCount())
}

type slowBackend struct {
	inner     DataSource
	release   chan struct{}
	passFirst bool

	mu    sync.Mutex
	calls int
}

func (s *slowBackend) GetRows(ctx context.Context, req GetRowsRequest) (*GetRowsResult, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	res, err := s.inner.GetRows(ctx, req)
	if s.passFirst && first {
		return res, err
	}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return res, err
}

func TestPluginMarksFailedBlocks(t *testing.T) {
	backend := &fakeBackend{total: 10, failAll: true}
	grid, plugin, renders := newTestGrid(t, backend, 10, 4)

	waitRender(t, renders)
	first := backend.requestCount()

	// The failed block must not be refetched on subsequent renders.
	_, err := grid.Render()
	require.NoError(t, err)
	_, err = grid.Render()
	require.NoError(t, err)
	assert.Equal(t, first, backend.requestCount())

	// With no known total there is no row window yet, but the stats
	// must report the failure.
	q := &datagrid.Query{Name: QueryStats}
	require.True(t, grid.Query(q))
	stats := q.Result.(Stats)
	assert.Equal(t, 1, stats.FailedBlocks)

	// RetryFailed clears the marker and refetches; the dataset size
	// becomes known and rows load.
	backend.setFail(false)
	plugin.RetryFailed()
	require.Eventually(t, func() bool {
		frame, err := grid.Render()
		if err != nil || len(frame.Rows) == 0 {
			return false
		}
		return frame.Rows[0].State == datagrid.RowLoaded
	}, 2*time.Second, 10*time.Millisecond)
	assert.Greater(t, backend.requestCount(), first)
}

func TestPluginRendersErrorRows(t *testing.T) {
	backend := &fakeBackend{total: 20}
	grid, _, renders := newTestGrid(t, backend, 10, 4)

	// Let the bootstrap load of block 0 land, then fail block 1.
	waitRender(t, renders)
	backend.setFail(true)

	frame, err := grid.Render()
	require.NoError(t, err)
	require.Len(t, frame.Rows, 20)
	assert.Equal(t, datagrid.RowLoaded, frame.Rows[0].State)

	// Wait for the block 1 failure to come back, then re-render.
	waitRender(t, renders)
	frame, err = grid.Render()
	require.NoError(t, err)
	assert.Equal(t, datagrid.RowError, frame.Rows[10].State)
	assert.Error(t, frame.Rows[10].Err)
}

func TestPluginInvalidatesOnSortModelChange(t *testing.T) {
	backend := &fakeBackend{total: 10}
	grid, _, renders := newTestGrid(t, backend, 10, 4)

	waitRender(t, renders)
	frame, err := grid.Render()
	require.NoError(t, err)
	require.NotEmpty(t, frame.Rows)

	grid.SetSortModel(datagrid.SortState{Column: 0, Direction: datagrid.SortDescending})
	before := backend.requestCount()

	_, err = grid.Render()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return backend.requestCount() > before
	}, 2*time.Second, 10*time.Millisecond)

	backend.mu.Lock()
	last := backend.requests[len(backend.requests)-1]
	backend.mu.Unlock()
	sortState, ok := last.SortModel.(datagrid.SortState)
	require.True(t, ok, "sort model must pass through unmodified")
	assert.Equal(t, datagrid.SortDescending, sortState.Direction)
}

func TestPluginRequiresSource(t *testing.T) {
	_, err := datagrid.New(datagrid.Config{
		Columns: testColumns(),
		Plugins: []datagrid.Plugin{New(DefaultConfig())},
	})
	assert.ErrorIs(t, err, datagrid.ErrNoDataSource)
}

func TestBlockStateAccessors(t *testing.T) {
	backend := &fakeBackend{total: 25}
	grid, plugin, renders := newTestGrid(t, backend, 10, 4)

	waitRender(t, renders)
	assert.True(t, plugin.IsBlockLoaded(0))
	assert.False(t, plugin.IsBlockLoading(0))
	assert.False(t, plugin.IsBlockLoaded(2))

	require.Eventually(t, func() bool {
		_, err := grid.Render()
		require.NoError(t, err)
		return plugin.IsBlockLoaded(2) && !plugin.IsBlockLoading(2)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStatsQuery(t *testing.T) {
	backend := &fakeBackend{total: 40}
	grid, _, renders := newTestGrid(t, backend, 10, 2)

	waitRender(t, renders)
	_, err := grid.Render()
	require.NoError(t, err)

	q := &datagrid.Query{Name: QueryStats}
	require.True(t, grid.Query(q))
	stats := q.Result.(Stats)
	assert.Equal(t, 2, stats.Capacity)
	assert.Equal(t, 40, stats.TotalRows)
	assert.GreaterOrEqual(t, stats.LoadedBlocks, 1)
}
