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

// Package serverside lets a grid display a virtual row set backed by an
// external, possibly remote, data source without loading the entire
// dataset. Rows are fetched in fixed-size blocks, de-duplicated while in
// flight, and bounded in memory by a least-recently-used block cache.
package serverside

import (
	"reflect"
	"sync"

	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/schedule"
)

// PluginName is the stable identifier used for lookup.
const PluginName = "server-side-rows"

// QueryStats asks the plugin for its cache statistics. Result is filled
// with a Stats value.
const QueryStats = "serverside/stats"

// Stats describes the plugin's cache state.
type Stats struct {
	LoadedBlocks  int
	LoadingBlocks int
	FailedBlocks  int
	Capacity      int
	TotalRows     int
}

// Config configures the server-side rows plugin.
type Config struct {
	// Source is the external backend. Required.
	Source DataSource
	// BlockSize is the number of rows per fetch/cache block (default 100).
	BlockSize int
	// CacheBlocks bounds the number of resident blocks (default 16).
	CacheBlocks int
	// PrefetchBlocks is how many blocks beyond the visible window are
	// prefetched on idle time in each direction (default 1; negative
	// disables prefetch).
	PrefetchBlocks int
	// Scheduler defers prefetch work to idle time. Optional; when nil,
	// no prefetching happens.
	Scheduler *schedule.Scheduler
}

// DefaultConfig returns the plugin defaults (Source must still be set).
func DefaultConfig() Config {
	return Config{BlockSize: 100, CacheBlocks: 16, PrefetchBlocks: 1}
}

// Plugin serves the grid's row windows from an external data source.
// It answers datagrid.QueryRowWindow: cached rows render immediately,
// rows in a block already in flight render a loading placeholder, and
// missing blocks trigger exactly one fetch each.
type Plugin struct {
	datagrid.PluginBase

	cfg Config

	mu     sync.Mutex
	handle *datagrid.GridHandle
	cache  *BlockCache
	// loading tracks block numbers with an in-flight fetch, preventing
	// duplicate requests for the same block.
	loading map[int]struct{}
	// failed remembers the last fetch error per block so the affected
	// row range renders an error state instead of refetching in a loop.
	failed map[int]error
	total  int
	// generation invalidates in-flight fetches after a model change.
	generation uint64

	lastSort   interface{}
	lastFilter interface{}
}

// New creates the plugin. Start from DefaultConfig and set Source:
//
//	cfg := serverside.DefaultConfig()
//	cfg.Source = backend
//	grid.AttachPlugin(serverside.New(cfg))
func New(cfg Config) *Plugin {
	def := DefaultConfig()
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = def.BlockSize
	}
	if cfg.CacheBlocks <= 0 {
		cfg.CacheBlocks = def.CacheBlocks
	}
	return &Plugin{
		cfg:     cfg,
		cache:   NewBlockCache(cfg.CacheBlocks),
		loading: make(map[int]struct{}),
		failed:  make(map[int]error),
		total:   -1,
	}
}

// Name implements datagrid.Plugin.
func (p *Plugin) Name() string { return PluginName }

// DefaultConfig implements datagrid.Plugin.
func (p *Plugin) DefaultConfig() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"blockSize":      def.BlockSize,
		"cacheBlocks":    def.CacheBlocks,
		"prefetchBlocks": def.PrefetchBlocks,
	}
}

// Attach implements datagrid.Plugin. The first block is fetched right
// away: its totalRowCount response tells the grid the dataset size, so
// the initial render has a row window to ask for.
func (p *Plugin) Attach(h *datagrid.GridHandle) error {
	if p.cfg.Source == nil {
		return datagrid.ErrNoDataSource
	}
	p.mu.Lock()
	p.handle = h
	p.mu.Unlock()
	p.ensureBlock(h, 0)
	return nil
}

// Detach implements datagrid.Plugin. In-flight fetches self-cancel via
// the handle's disconnect signal; here the caches are released.
func (p *Plugin) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handle = nil
	p.cache.Clear()
	p.loading = make(map[int]struct{})
	p.failed = make(map[int]error)
	p.generation++
}

// HandleQuery answers datagrid.QueryRowWindow and QueryStats.
func (p *Plugin) HandleQuery(q *datagrid.Query) bool {
	switch q.Name {
	case datagrid.QueryRowWindow:
		req, ok := q.Args.(datagrid.RowWindowRequest)
		if !ok {
			return false
		}
		q.Result = &datagrid.RowWindowResult{Rows: p.rowWindow(req)}
		return true
	case QueryStats:
		p.mu.Lock()
		defer p.mu.Unlock()
		q.Result = Stats{
			LoadedBlocks:  p.cache.Len(),
			LoadingBlocks: len(p.loading),
			FailedBlocks:  len(p.failed),
			Capacity:      p.cfg.CacheBlocks,
			TotalRows:     p.total,
		}
		return true
	}
	return false
}

// rowWindow resolves [req.Start, req.End) against the block cache,
// kicking off coalesced fetches for missing blocks.
func (p *Plugin) rowWindow(req datagrid.RowWindowRequest) []datagrid.WindowRow {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return nil
	}

	p.checkModels(h)

	rows := make([]datagrid.WindowRow, 0, req.End-req.Start)
	for _, blockNum := range RequiredBlocks(req.Start, req.End, p.cfg.BlockSize) {
		p.ensureBlock(h, blockNum)
	}

	p.mu.Lock()
	for i := req.Start; i < req.End; i++ {
		blockNum := BlockNumber(i, p.cfg.BlockSize)
		if payload, ok := p.cache.Get(blockNum); ok {
			block := payload.([]datagrid.Row)
			offset := i % p.cfg.BlockSize
			if offset < len(block) {
				rows = append(rows, datagrid.WindowRow{
					Index: i, State: datagrid.RowLoaded, Cells: block[offset],
				})
				continue
			}
			// Past the partial final block.
			continue
		}
		if err, ok := p.failed[blockNum]; ok {
			rows = append(rows, datagrid.WindowRow{Index: i, State: datagrid.RowError, Err: err})
			continue
		}
		rows = append(rows, datagrid.WindowRow{Index: i, State: datagrid.RowLoading})
	}
	p.mu.Unlock()

	p.schedulePrefetch(h, req)
	return rows
}

// checkModels invalidates all cached blocks when the grid's sort or
// filter descriptor changed since the last window.
func (p *Plugin) checkModels(h *datagrid.GridHandle) {
	sortModel := h.SortModel()
	filterModel := h.FilterModel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if reflect.DeepEqual(sortModel, p.lastSort) && reflect.DeepEqual(filterModel, p.lastFilter) {
		return
	}
	p.lastSort = sortModel
	p.lastFilter = filterModel
	p.cache.Clear()
	p.failed = make(map[int]error)
	p.loading = make(map[int]struct{})
	p.generation++
}

// ensureBlock starts a fetch for the block unless it is already cached,
// in flight, or marked failed. Exactly one request is issued per block.
func (p *Plugin) ensureBlock(h *datagrid.GridHandle, blockNum int) {
	p.mu.Lock()
	if p.cache.Has(blockNum) {
		p.mu.Unlock()
		return
	}
	if _, inflight := p.loading[blockNum]; inflight {
		p.mu.Unlock()
		return
	}
	if _, bad := p.failed[blockNum]; bad {
		p.mu.Unlock()
		return
	}
	p.loading[blockNum] = struct{}{}
	gen := p.generation
	sortModel := p.lastSort
	filterModel := p.lastFilter
	p.mu.Unlock()

	go func() {
		res, err := LoadBlock(h.Context(), p.cfg.Source, blockNum, p.cfg.BlockSize, sortModel, filterModel)

		p.mu.Lock()
		if gen != p.generation {
			// Stale response from before an invalidation; drop it.
			p.mu.Unlock()
			return
		}
		delete(p.loading, blockNum)
		if err != nil {
			p.failed[blockNum] = err
			p.mu.Unlock()
			h.Logger().Error("block fetch failed", "block", blockNum, "error", err)
			h.RequestRender()
			return
		}
		p.cache.Set(blockNum, res.Rows)
		p.total = res.TotalRowCount
		p.mu.Unlock()

		h.SetTotalRowCount(res.TotalRowCount)
		h.RequestRender()
	}()
}

// schedulePrefetch defers fetches for the blocks adjacent to the window
// to idle time.
func (p *Plugin) schedulePrefetch(h *datagrid.GridHandle, req datagrid.RowWindowRequest) {
	if p.cfg.Scheduler == nil || p.cfg.PrefetchBlocks <= 0 {
		return
	}
	blocks := RequiredBlocks(req.Start, req.End, p.cfg.BlockSize)
	if len(blocks) == 0 {
		return
	}
	first, last := blocks[0], blocks[len(blocks)-1]

	p.mu.Lock()
	total := p.total
	p.mu.Unlock()

	for d := 1; d <= p.cfg.PrefetchBlocks; d++ {
		for _, candidate := range []int{first - d, last + d} {
			if candidate < 0 {
				continue
			}
			if total >= 0 && candidate*p.cfg.BlockSize >= total {
				continue
			}
			block := candidate
			// Prefetch is best-effort; the task no-ops once the plugin
			// has been detached.
			p.cfg.Scheduler.Defer(schedule.PriorityLow, func() {
				select {
				case <-h.Done():
				default:
					p.ensureBlock(h, block)
				}
			})
		}
	}
}

// IsBlockLoaded reports whether the block is resident in the cache.
func (p *Plugin) IsBlockLoaded(blockNumber int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Has(blockNumber)
}

// IsBlockLoading reports whether a fetch for the block is in flight.
func (p *Plugin) IsBlockLoading(blockNumber int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.loading[blockNumber]
	return ok
}

// RetryFailed clears the failed-block markers so the next render
// refetches the affected ranges. When the dataset size is still unknown
// (the bootstrap fetch itself failed) block 0 is refetched directly.
func (p *Plugin) RetryFailed() {
	p.mu.Lock()
	p.failed = make(map[int]error)
	h := p.handle
	total := p.total
	p.mu.Unlock()
	if h == nil {
		return
	}
	if total < 0 {
		p.ensureBlock(h, 0)
		return
	}
	h.RequestRender()
}
