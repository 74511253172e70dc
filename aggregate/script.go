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

package aggregate

import (
	"fmt"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// CompileScript interprets a Go snippet into a value-based aggregator.
// The snippet must evaluate to a `func(values []float64) float64`; it
// may use the standard library. The compiled aggregator feeds the
// snippet the column's numeric values (nulls and non-numeric cells are
// skipped) and wraps the result as a float cell.
//
// Example:
//
//	fn, err := aggregate.CompileScript(`
//	    func(values []float64) float64 {
//	        var sum float64
//	        for _, v := range values {
//	            sum += v * v
//	        }
//	        return sum
//	    }`)
//	registry.Register("sumsq", fn)
func CompileScript(src string) (Func, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}

	v, err := i.Eval(src)
	if err != nil {
		return nil, fmt.Errorf("eval aggregator script: %w", err)
	}
	scripted, ok := v.Interface().(func(values []float64) float64)
	if !ok {
		return nil, fmt.Errorf("aggregator script must evaluate to func(values []float64) float64, got %T", v.Interface())
	}

	return func(values []datagrid.Value) datagrid.Value {
		nums := make([]float64, 0, len(values))
		for _, val := range values {
			if f, ok := val.Float(); ok {
				nums = append(nums, f)
			}
		}
		return datagrid.NewValue(scripted(nums), datagrid.TypeFloat)
	}, nil
}

// RegisterScript compiles the snippet and registers it under name.
func (r *Registry) RegisterScript(name, src string) error {
	fn, err := CompileScript(src)
	if err != nil {
		return err
	}
	r.Register(name, fn)
	return nil
}
