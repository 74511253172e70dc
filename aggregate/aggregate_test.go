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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

func floats(vals ...interface{}) []datagrid.Value {
	out := make([]datagrid.Value, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			out = append(out, datagrid.NewNullValue(datagrid.TypeFloat))
			continue
		}
		out = append(out, datagrid.NewValue(v, datagrid.TypeFloat))
	}
	return out
}

func TestBuiltins(t *testing.T) {
	values := floats(2.0, nil, 4.0, 6.0)

	sum := Sum(values)
	assert.Equal(t, 12.0, sum.Raw)

	avg := Avg(values)
	assert.Equal(t, 4.0, avg.Raw)

	count := Count(values)
	assert.Equal(t, int64(3), count.Raw)

	min := Min(values)
	assert.Equal(t, 2.0, min.Raw)

	max := Max(values)
	assert.Equal(t, 6.0, max.Raw)

	first := First(values)
	assert.Equal(t, 2.0, first.Raw)

	last := Last(values)
	assert.Equal(t, 6.0, last.Raw)
}

func TestNumericBuiltinsOnEmptyInput(t *testing.T) {
	empty := floats(nil, nil)

	assert.True(t, Avg(empty).IsNull)
	assert.True(t, Min(empty).IsNull)
	assert.True(t, Max(empty).IsNull)
	assert.True(t, First(empty).IsNull)
	assert.True(t, Last(empty).IsNull)
	assert.Equal(t, int64(0), Count(empty).Raw)
	assert.Equal(t, 0.0, Sum(empty).Raw)
}

func TestBuiltinsSkipNonNumeric(t *testing.T) {
	values := []datagrid.Value{
		datagrid.NewValue("text", datagrid.TypeString),
		datagrid.NewValue(3.0, datagrid.TypeFloat),
	}
	assert.Equal(t, 3.0, Sum(values).Raw)
	assert.Equal(t, int64(2), Count(values).Raw, "count includes non-numeric non-nulls")
}

func TestRegistryRegisterAndRun(t *testing.T) {
	r := NewBuiltinRegistry()
	rows := []datagrid.Row{
		{datagrid.NewValue("a", datagrid.TypeString), datagrid.NewValue(1.0, datagrid.TypeFloat)},
		{datagrid.NewValue("b", datagrid.TypeString), datagrid.NewValue(2.0, datagrid.TypeFloat)},
	}
	names := []string{"label", "score"}

	v, ok := r.Run("sum", rows, names, "score")
	require.True(t, ok)
	assert.Equal(t, 3.0, v.Raw)

	_, ok = r.Run("unknown", rows, names, "score")
	assert.False(t, ok)

	_, ok = r.Run("sum", rows, names, "ghost")
	assert.False(t, ok, "unknown field cannot be aggregated")
}

func TestRowAggregatorTakesPrecedence(t *testing.T) {
	r := NewBuiltinRegistry()
	r.RegisterRow("sum", func(rows []datagrid.Row, columnNames []string, field string) datagrid.Value {
		return datagrid.NewValue(float64(len(rows)), datagrid.TypeFloat)
	})

	rows := []datagrid.Row{
		{datagrid.NewValue(10.0, datagrid.TypeFloat)},
		{datagrid.NewValue(20.0, datagrid.TypeFloat)},
	}
	v, ok := r.Run("sum", rows, []string{"x"}, "x")
	require.True(t, ok)
	assert.Equal(t, 2.0, v.Raw, "row-based override wins over the value-based builtin")

	r.Unregister("sum")
	_, ok = r.Run("sum", rows, []string{"x"}, "x")
	assert.False(t, ok, "unregister removes both kinds")
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", Sum)
	r.Register("alpha", Sum)
	r.RegisterRow("alpha", func([]datagrid.Row, []string, string) datagrid.Value {
		return datagrid.NewNullValue(datagrid.TypeFloat)
	})
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	names := Default().Names()
	assert.Subset(t, names, []string{"sum", "avg", "count", "min", "max", "first", "last"})
}

func TestCompileScript(t *testing.T) {
	fn, err := CompileScript(`
		func(values []float64) float64 {
			var sum float64
			for _, v := range values {
				sum += v * v
			}
			return sum
		}`)
	require.NoError(t, err)

	v := fn(floats(3.0, nil, 4.0))
	assert.Equal(t, 25.0, v.Raw)
}

func TestCompileScriptRejectsWrongShape(t *testing.T) {
	_, err := CompileScript(`func(a, b int) int { return a + b }`)
	assert.Error(t, err)

	_, err = CompileScript(`func(values []float64 float64 {`)
	assert.Error(t, err)
}

func TestRegisterScript(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterScript("range", `
		func(values []float64) float64 {
			if len(values) == 0 {
				return 0
			}
			min, max := values[0], values[0]
			for _, v := range values {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			return max - min
		}`))

	v, ok := r.Run("range", []datagrid.Row{
		{datagrid.NewValue(2.0, datagrid.TypeFloat)},
		{datagrid.NewValue(9.0, datagrid.TypeFloat)},
	}, []string{"x"}, "x")
	require.True(t, ok)
	assert.Equal(t, 7.0, v.Raw)
}
