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

// Package aggregate provides the named aggregation function registry
// used by grouping and pivot features. A Registry is an explicit,
// injectable object so tests can create and reset their own; Default()
// returns the process-wide instance third-party plugins contribute to.
package aggregate

import (
	"sort"
	"sync"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// Func aggregates the cell values of one column.
type Func func(values []datagrid.Value) datagrid.Value

// RowFunc aggregates whole rows, addressing the target column by field.
// columnNames holds the field key for each cell position.
type RowFunc func(rows []datagrid.Row, columnNames []string, field string) datagrid.Value

// Registry is a named-function table of aggregators. Register and
// Unregister are last-write-wins; all access is expected from the UI
// goroutine but the registry is still locked so background contributors
// are safe.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
	rows  map[string]RowFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Func),
		rows:  make(map[string]RowFunc),
	}
}

// NewBuiltinRegistry creates a registry pre-populated with the built-in
// aggregators: sum, avg, count, min, max, first, last.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.Register("sum", Sum)
	r.Register("avg", Avg)
	r.Register("count", Count)
	r.Register("min", Min)
	r.Register("max", Max)
	r.Register("first", First)
	r.Register("last", Last)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, created on first use with
// the built-ins registered.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewBuiltinRegistry() })
	return defaultRegistry
}

// Register adds or overrides a value-based aggregator.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// RegisterRow adds or overrides a row-based aggregator.
func (r *Registry) RegisterRow(name string, fn RowFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[name] = fn
}

// Unregister removes an aggregator by name (both kinds).
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.funcs, name)
	delete(r.rows, name)
}

// Get returns a value-based aggregator, ok=false for unknown names.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// GetRow returns a row-based aggregator, ok=false for unknown names.
func (r *Registry) GetRow(name string) (RowFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.rows[name]
	return fn, ok
}

// Run applies the named aggregator to the given rows, resolving
// row-based aggregators first and falling back to value-based ones on
// the extracted column. Unknown names return a null value and ok=false.
func (r *Registry) Run(name string, rows []datagrid.Row, columnNames []string, field string) (datagrid.Value, bool) {
	if fn, ok := r.GetRow(name); ok {
		return fn(rows, columnNames, field), true
	}
	fn, ok := r.Get(name)
	if !ok {
		return datagrid.NewNullValue(datagrid.TypeFloat), false
	}

	idx := -1
	for i, n := range columnNames {
		if n == field {
			idx = i
			break
		}
	}
	if idx < 0 {
		return datagrid.NewNullValue(datagrid.TypeFloat), false
	}
	values := make([]datagrid.Value, 0, len(rows))
	for _, row := range rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return fn(values), true
}

// Names returns the registered aggregator names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.funcs)+len(r.rows))
	for name := range r.funcs {
		seen[name] = struct{}{}
	}
	for name := range r.rows {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Built-in aggregators. Nulls and non-numeric cells are skipped by the
// numeric aggregators.

// Sum adds all numeric values.
func Sum(values []datagrid.Value) datagrid.Value {
	var sum float64
	for _, v := range values {
		if f, ok := v.Float(); ok {
			sum += f
		}
	}
	return datagrid.NewValue(sum, datagrid.TypeFloat)
}

// Avg averages the numeric values; null when none are numeric.
func Avg(values []datagrid.Value) datagrid.Value {
	var sum float64
	var n int
	for _, v := range values {
		if f, ok := v.Float(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return datagrid.NewNullValue(datagrid.TypeFloat)
	}
	return datagrid.NewValue(sum/float64(n), datagrid.TypeFloat)
}

// Count counts non-null values.
func Count(values []datagrid.Value) datagrid.Value {
	var n int64
	for _, v := range values {
		if !v.IsNull {
			n++
		}
	}
	return datagrid.NewValue(n, datagrid.TypeInt)
}

// Min returns the smallest numeric value; null when none are numeric.
func Min(values []datagrid.Value) datagrid.Value {
	best, found := 0.0, false
	for _, v := range values {
		if f, ok := v.Float(); ok {
			if !found || f < best {
				best, found = f, true
			}
		}
	}
	if !found {
		return datagrid.NewNullValue(datagrid.TypeFloat)
	}
	return datagrid.NewValue(best, datagrid.TypeFloat)
}

// Max returns the largest numeric value; null when none are numeric.
func Max(values []datagrid.Value) datagrid.Value {
	best, found := 0.0, false
	for _, v := range values {
		if f, ok := v.Float(); ok {
			if !found || f > best {
				best, found = f, true
			}
		}
	}
	if !found {
		return datagrid.NewNullValue(datagrid.TypeFloat)
	}
	return datagrid.NewValue(best, datagrid.TypeFloat)
}

// First returns the first non-null value; null when all are null.
func First(values []datagrid.Value) datagrid.Value {
	for _, v := range values {
		if !v.IsNull {
			return v
		}
	}
	return datagrid.NewNullValue(datagrid.TypeString)
}

// Last returns the last non-null value; null when all are null.
func Last(values []datagrid.Value) datagrid.Value {
	for i := len(values) - 1; i >= 0; i-- {
		if !values[i].IsNull {
			return values[i]
		}
	}
	return datagrid.NewNullValue(datagrid.TypeString)
}
