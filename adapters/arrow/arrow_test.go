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

package arrow

import (
	"testing"

	aw "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

func sampleTable(t *testing.T) aw.Table {
	t.Helper()
	pool := memory.NewGoAllocator()
	schema := aw.NewSchema([]aw.Field{
		{Name: "id", Type: aw.PrimitiveTypes.Int64},
		{Name: "name", Type: aw.BinaryTypes.String},
		{Name: "score", Type: aw.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"ada", "bo", "cy"}, nil)
	sb := b.Field(2).(*array.Float64Builder)
	sb.Append(1.5)
	sb.AppendNull()
	sb.Append(3.5)

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []aw.Record{rec})
}

func TestNewFromArrowTable(t *testing.T) {
	table := sampleTable(t)
	defer table.Release()

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	assert.Equal(t, 3, src.RowCount())
	assert.Equal(t, 3, src.ColumnCount())

	name, err := src.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "name", name)

	typ, err := src.ColumnType(0)
	require.NoError(t, err)
	assert.Equal(t, datagrid.TypeInt, typ)

	typ, err = src.ColumnType(2)
	require.NoError(t, err)
	assert.Equal(t, datagrid.TypeFloat, typ)

	cell, err := src.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "ada", cell.Formatted)

	cell, err = src.Cell(1, 2)
	require.NoError(t, err)
	assert.True(t, cell.IsNull, "arrow nulls map to null cells")

	cell, err = src.Cell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, cell.Raw)
}

func TestSourceBoundsChecks(t *testing.T) {
	table := sampleTable(t)
	defer table.Release()

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	_, err = src.Cell(99, 0)
	assert.ErrorIs(t, err, datagrid.ErrInvalidRow)
	_, err = src.Cell(0, 99)
	assert.ErrorIs(t, err, datagrid.ErrInvalidColumn)
	_, err = src.ColumnName(-1)
	assert.ErrorIs(t, err, datagrid.ErrInvalidColumn)
	_, err = src.Row(3)
	assert.ErrorIs(t, err, datagrid.ErrInvalidRow)
}

func TestNilTableRejected(t *testing.T) {
	_, err := NewFromArrowTable(nil)
	assert.ErrorIs(t, err, datagrid.ErrNoDataSource)
}

func TestSourceWorksAsGridBacking(t *testing.T) {
	table := sampleTable(t)
	defer table.Release()

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	grid, err := datagrid.New(datagrid.Config{Source: src})
	require.NoError(t, err)
	defer grid.Close()

	frame, err := grid.Render()
	require.NoError(t, err)
	assert.Equal(t, 3, frame.TotalRows)
	require.Len(t, frame.Columns, 3)
	assert.Equal(t, "score", frame.Columns[2].Field)
	assert.Equal(t, "1.5", frame.Rows[0].Cells[2].Formatted)
}
