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

package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowFallback keeps the ticker out of the way so tests drive execution
// through Idle signals alone.
const slowFallback = time.Hour

func TestTasksRunInPriorityOrder(t *testing.T) {
	s := New(slowFallback)
	defer s.Shutdown()

	var mu sync.Mutex
	var order []string
	record := func(name string) Task {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	s.Defer(PriorityLow, record("low"))
	s.Defer(PriorityHigh, record("high"))
	s.Defer(PriorityNormal, record("normal-1"))
	s.Defer(PriorityNormal, record("normal-2"))

	for i := 0; i < 4; i++ {
		s.Idle()
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(order) == i+1
		}, time.Second, time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"high", "normal-1", "normal-2", "low"}, order)
}

func TestOneTaskPerIdleSignal(t *testing.T) {
	s := New(slowFallback)
	defer s.Shutdown()

	ran := make(chan struct{}, 8)
	for i := 0; i < 3; i++ {
		s.Defer(PriorityNormal, func() { ran <- struct{}{} })
	}

	s.Idle()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	select {
	case <-ran:
		t.Fatal("a single idle signal must run a single task")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 2, s.Len())
}

func TestCancelPreventsExecution(t *testing.T) {
	s := New(slowFallback)
	defer s.Shutdown()

	ran := make(chan string, 4)
	h := s.Defer(PriorityHigh, func() { ran <- "canceled" })
	s.Defer(PriorityLow, func() { ran <- "survivor" })
	h.Cancel()
	h.Cancel() // double cancel is a no-op

	// The canceled task is skipped and the next live one runs instead.
	s.Idle()
	select {
	case name := <-ran:
		assert.Equal(t, "survivor", name)
	case <-time.After(time.Second):
		t.Fatal("surviving task did not run")
	}
	assert.Equal(t, 0, s.Len())
}

func TestFallbackTickerDrainsWithoutIdleSignals(t *testing.T) {
	s := New(5 * time.Millisecond)
	defer s.Shutdown()

	ran := make(chan struct{})
	s.Defer(PriorityNormal, func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("fallback ticker never ran the task")
	}
}

func TestShutdownDiscardsPending(t *testing.T) {
	s := New(slowFallback)

	ran := false
	s.Defer(PriorityNormal, func() { ran = true })
	s.Shutdown()
	s.Shutdown() // idempotent

	assert.False(t, ran)

	// Defer after shutdown returns an inert handle.
	h := s.Defer(PriorityNormal, func() { ran = true })
	h.Cancel()
	assert.False(t, ran)
}

func TestNilHandleCancel(t *testing.T) {
	var h *Handle
	h.Cancel()
}
