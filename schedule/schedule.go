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

// Package schedule provides a cooperative idle-time task queue.
//
// Non-critical work (block prefetch, width measurement) is deferred so
// it never competes with rendering. Tasks carry a priority and run in
// priority order whenever the scheduler is idle; each task returns a
// cancellable handle. When the host never signals idleness the
// scheduler falls back to a periodic tick so deferred work still drains.
package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// Priority orders deferred tasks. Higher runs first.
type Priority int

const (
	// PriorityLow is for opportunistic work such as prefetching.
	PriorityLow Priority = iota
	// PriorityNormal is the default.
	PriorityNormal
	// PriorityHigh is for work the next frame likely depends on.
	PriorityHigh
)

// DefaultFallbackInterval is the tick used when no idle signal arrives.
const DefaultFallbackInterval = 50 * time.Millisecond

// Task is a unit of deferred work.
type Task func()

// Handle cancels a scheduled task.
type Handle struct {
	s  *Scheduler
	id uint64
}

// Cancel prevents the task from running. Canceling an already-run or
// already-canceled task is a no-op.
func (h *Handle) Cancel() {
	if h == nil || h.s == nil {
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	delete(h.s.pending, h.id)
}

type queued struct {
	id       uint64
	priority Priority
	seq      uint64 // FIFO within a priority
	task     Task
}

type taskHeap []*queued

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(*queued)) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Scheduler is the cooperative idle-time queue. Create it with New and
// stop it with Shutdown.
type Scheduler struct {
	mu      sync.Mutex
	heap    taskHeap
	pending map[uint64]struct{} // ids not yet run or canceled
	nextID  uint64
	nextSeq uint64

	idle   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	closed bool

	fallback time.Duration
}

// New creates and starts a scheduler. fallback is the tick interval used
// when Idle is never signaled; zero selects DefaultFallbackInterval.
func New(fallback time.Duration) *Scheduler {
	if fallback <= 0 {
		fallback = DefaultFallbackInterval
	}
	s := &Scheduler{
		pending:  make(map[uint64]struct{}),
		idle:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		fallback: fallback,
	}
	go s.run()
	return s
}

// Defer queues a task at the given priority and returns its handle.
// Tasks of equal priority run in submission order.
func (s *Scheduler) Defer(priority Priority, task Task) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &Handle{}
	}
	s.nextID++
	s.nextSeq++
	q := &queued{id: s.nextID, priority: priority, seq: s.nextSeq, task: task}
	heap.Push(&s.heap, q)
	s.pending[q.id] = struct{}{}
	return &Handle{s: s, id: q.id}
}

// Idle signals that the host is idle; the scheduler drains one task per
// signal so rendering work is never starved.
func (s *Scheduler) Idle() {
	select {
	case s.idle <- struct{}{}:
	default:
	}
}

// Len returns the number of tasks still pending.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown stops the scheduler. Pending tasks are discarded.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.fallback)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-s.idle:
			s.runNext()
		case <-ticker.C:
			s.runNext()
		}
	}
}

// runNext pops the highest-priority task that has not been canceled and
// runs it.
func (s *Scheduler) runNext() {
	for {
		s.mu.Lock()
		if s.heap.Len() == 0 {
			s.mu.Unlock()
			return
		}
		q := heap.Pop(&s.heap).(*queued)
		_, live := s.pending[q.id]
		delete(s.pending, q.id)
		s.mu.Unlock()

		if live {
			q.task()
			return
		}
		// Canceled; try the next one.
	}
}
