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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

func TestBlockNumber(t *testing.T) {
	assert.Equal(t, 0, BlockNumber(0, 100))
	assert.Equal(t, 0, BlockNumber(99, 100))
	assert.Equal(t, 1, BlockNumber(100, 100))
	assert.Equal(t, 2, BlockNumber(250, 100))
}

func TestBlockRange(t *testing.T) {
	start, end := BlockRange(0, 100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 100, end)

	start, end = BlockRange(3, 50)
	assert.Equal(t, 150, start)
	assert.Equal(t, 200, end)

	// Row indices round-trip through their block.
	for _, row := range []int{0, 1, 49, 50, 149, 150} {
		b := BlockNumber(row, 50)
		s, e := BlockRange(b, 50)
		assert.GreaterOrEqual(t, row, s)
		assert.Less(t, row, e)
	}
}

func TestRequiredBlocks(t *testing.T) {
	assert.Equal(t, []int{0}, RequiredBlocks(0, 100, 100))
	assert.Equal(t, []int{0, 1}, RequiredBlocks(50, 150, 100))
	assert.Equal(t, []int{2, 3, 4}, RequiredBlocks(250, 480, 100))
	assert.Nil(t, RequiredBlocks(100, 100, 100))
	assert.Nil(t, RequiredBlocks(200, 100, 100))
	assert.Nil(t, RequiredBlocks(0, 100, 0))
}

func TestRowFromCache(t *testing.T) {
	mkRow := func(i int) datagrid.Row {
		return datagrid.Row{datagrid.NewValue(int64(i), datagrid.TypeInt)}
	}
	loaded := map[int][]datagrid.Row{
		0: {mkRow(0), mkRow(1), mkRow(2)},
		2: {mkRow(6)}, // partial final block
	}

	row, ok := RowFromCache(1, 3, loaded)
	require.True(t, ok)
	assert.Equal(t, "1", row[0].Formatted)

	_, ok = RowFromCache(4, 3, loaded)
	assert.False(t, ok, "block 1 is not loaded")

	row, ok = RowFromCache(6, 3, loaded)
	require.True(t, ok)
	assert.Equal(t, "6", row[0].Formatted)

	_, ok = RowFromCache(7, 3, loaded)
	assert.False(t, ok, "row beyond the partial final block")
}
