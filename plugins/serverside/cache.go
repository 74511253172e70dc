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

import "container/list"

// BlockCache is a fixed-capacity cache mapping an integer block number
// to a block payload, with least-recently-used eviction. Both Get and
// Set count as a touch: the least-recently-touched block is always the
// next eviction candidate.
//
// Capacities are expected to be small (tens of blocks), so the
// list+map bookkeeping is deliberately simple rather than tuned.
// The cache is not safe for concurrent use; it is owned by exactly one
// plugin instance on the UI goroutine.
type BlockCache struct {
	capacity int
	entries  map[int]*list.Element
	order    *list.List // front = most recently used
}

type blockEntry struct {
	key   int
	value interface{}
}

// NewBlockCache creates a cache holding at most capacity blocks.
// Capacity must be at least 1.
func NewBlockCache(capacity int) *BlockCache {
	if capacity < 1 {
		capacity = 1
	}
	return &BlockCache{
		capacity: capacity,
		entries:  make(map[int]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached payload and marks the block most-recently-used.
// The second result is false if the block is absent.
func (c *BlockCache) Get(key int) (interface{}, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*blockEntry).value, true
}

// Set stores a payload. An existing key is updated in place and marked
// most-recently-used without changing the cache size; otherwise, at
// capacity, the least-recently-used block is evicted before inserting.
func (c *BlockCache) Set(key int, value interface{}) {
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*blockEntry).value = value
		c.order.MoveToFront(elem)
		return
	}
	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = c.order.PushFront(&blockEntry{key: key, value: value})
}

// Has reports whether the block is cached, without touching it.
func (c *BlockCache) Has(key int) bool {
	_, ok := c.entries[key]
	return ok
}

// Delete removes a block if present.
func (c *BlockCache) Delete(key int) {
	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
}

// Clear removes all cached blocks.
func (c *BlockCache) Clear() {
	c.entries = make(map[int]*list.Element, c.capacity)
	c.order.Init()
}

// Len returns the number of cached blocks.
func (c *BlockCache) Len() int { return c.order.Len() }

// Keys returns the cached block numbers from most to least recently
// used. Useful for diagnostics and tests.
func (c *BlockCache) Keys() []int {
	keys := make([]int, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*blockEntry).key)
	}
	return keys
}

func (c *BlockCache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.order.Remove(back)
	delete(c.entries, back.Value.(*blockEntry).key)
}
