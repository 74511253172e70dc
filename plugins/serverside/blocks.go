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

// Block addressing. A block is a fixed-size contiguous run of rows, the
// unit of fetch and cache granularity.

// BlockNumber returns the block owning rowIndex.
func BlockNumber(rowIndex, blockSize int) int {
	return rowIndex / blockSize
}

// BlockRange returns the end-exclusive row range [start, end) covered by
// a block.
func BlockRange(blockNumber, blockSize int) (start, end int) {
	return blockNumber * blockSize, (blockNumber + 1) * blockSize
}

// RequiredBlocks returns, in ascending order and without duplicates,
// every block number whose range intersects [startRow, endRow).
func RequiredBlocks(startRow, endRow, blockSize int) []int {
	if endRow <= startRow || blockSize <= 0 {
		return nil
	}
	first := BlockNumber(startRow, blockSize)
	last := BlockNumber(endRow-1, blockSize)
	blocks := make([]int, 0, last-first+1)
	for b := first; b <= last; b++ {
		blocks = append(blocks, b)
	}
	return blocks
}
