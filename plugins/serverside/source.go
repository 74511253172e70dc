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

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// GetRowsRequest asks an external data source for the rows in
// [StartRow, EndRow). SortModel and FilterModel are opaque descriptors
// forwarded unchanged from the grid; the data source, not this layer,
// interprets them.
type GetRowsRequest struct {
	StartRow    int
	EndRow      int
	SortModel   interface{}
	FilterModel interface{}
}

// GetRowsResult is the external data source's response.
type GetRowsResult struct {
	// Rows holds the requested rows; the final block of a dataset may
	// be partial.
	Rows []datagrid.Row
	// TotalRowCount is the full dataset size.
	TotalRowCount int
}

// DataSource is the sole contract an external backend must satisfy to
// serve a virtual row set. Fetch errors propagate to the caller
// unmodified; no retry is performed at this layer.
type DataSource interface {
	GetRows(ctx context.Context, req GetRowsRequest) (*GetRowsResult, error)
}

// LoadBlock issues exactly one request for the given block, computing
// the row range from the block number and forwarding the pass-through
// sort/filter models.
func LoadBlock(ctx context.Context, source DataSource, blockNumber, blockSize int, sortModel, filterModel interface{}) (*GetRowsResult, error) {
	start, end := BlockRange(blockNumber, blockSize)
	return source.GetRows(ctx, GetRowsRequest{
		StartRow:    start,
		EndRow:      end,
		SortModel:   sortModel,
		FilterModel: filterModel,
	})
}

// RowFromCache looks up the owning block in loadedBlocks and indexes the
// row within it. The second result is false if the block is absent or
// the row falls beyond a partial final block.
func RowFromCache(rowIndex, blockSize int, loadedBlocks map[int][]datagrid.Row) (datagrid.Row, bool) {
	block, ok := loadedBlocks[BlockNumber(rowIndex, blockSize)]
	if !ok {
		return nil, false
	}
	offset := rowIndex % blockSize
	if offset >= len(block) {
		return nil, false
	}
	return block[offset], true
}
