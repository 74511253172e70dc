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

// Package arrow adapts an Apache Arrow table into a datagrid.DataSource.
package arrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// Source is a datagrid.DataSource backed by a materialized Arrow table.
type Source struct {
	names []string
	types []datagrid.DataType
	rows  []datagrid.Row
	meta  datagrid.Metadata
}

// NewFromArrowTable materializes the Arrow table into a DataSource.
// The table may be released after this returns.
func NewFromArrowTable(table arrow.Table) (*Source, error) {
	if table == nil {
		return nil, datagrid.ErrNoDataSource
	}

	schema := table.Schema()
	fields := schema.Fields()
	s := &Source{
		names: make([]string, len(fields)),
		types: make([]datagrid.DataType, len(fields)),
		meta:  datagrid.Metadata{"source": "arrow"},
	}
	for i, f := range fields {
		s.names[i] = f.Name
		s.types[i] = mapDataType(f.Type)
	}

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		numRows := int(rec.NumRows())
		for pos := 0; pos < numRows; pos++ {
			row := make(datagrid.Row, len(fields))
			for col := range fields {
				row[col] = valueAt(rec.Column(col), pos, s.types[col])
			}
			s.rows = append(s.rows, row)
		}
	}
	return s, nil
}

func (s *Source) RowCount() int    { return len(s.rows) }
func (s *Source) ColumnCount() int { return len(s.names) }

func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", datagrid.ErrInvalidColumn
	}
	return s.names[col], nil
}

func (s *Source) ColumnType(col int) (datagrid.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return datagrid.TypeString, datagrid.ErrInvalidColumn
	}
	return s.types[col], nil
}

func (s *Source) Cell(row, col int) (datagrid.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return datagrid.Value{}, datagrid.ErrInvalidRow
	}
	if col < 0 || col >= len(s.names) {
		return datagrid.Value{}, datagrid.ErrInvalidColumn
	}
	return s.rows[row][col], nil
}

func (s *Source) Row(row int) ([]datagrid.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, datagrid.ErrInvalidRow
	}
	out := make([]datagrid.Value, len(s.rows[row]))
	copy(out, s.rows[row])
	return out, nil
}

func (s *Source) Metadata() datagrid.Metadata { return s.meta }

// mapDataType maps an Arrow data type to the grid's column type.
func mapDataType(dt arrow.DataType) datagrid.DataType {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return datagrid.TypeString
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datagrid.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datagrid.TypeFloat
	case arrow.BOOL:
		return datagrid.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datagrid.TypeDate
	case arrow.TIMESTAMP:
		return datagrid.TypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY:
		return datagrid.TypeBinary
	case arrow.DECIMAL128:
		return datagrid.TypeDecimal
	case arrow.STRUCT:
		return datagrid.TypeStruct
	case arrow.LIST, arrow.LARGE_LIST:
		return datagrid.TypeList
	default:
		return datagrid.TypeString
	}
}

// valueAt extracts a typed cell value from an Arrow array.
func valueAt(col arrow.Array, pos int, dt datagrid.DataType) datagrid.Value {
	if col.IsNull(pos) {
		return datagrid.NewNullValue(dt)
	}

	switch col.DataType().ID() {
	case arrow.STRING:
		return datagrid.NewValue(col.(*array.String).Value(pos), dt)
	case arrow.BINARY:
		return datagrid.NewValue(col.(*array.Binary).Value(pos), dt)
	case arrow.BOOL:
		return datagrid.NewValue(col.(*array.Boolean).Value(pos), dt)
	case arrow.INT8:
		return datagrid.NewValue(col.(*array.Int8).Value(pos), dt)
	case arrow.INT16:
		return datagrid.NewValue(col.(*array.Int16).Value(pos), dt)
	case arrow.INT32:
		return datagrid.NewValue(col.(*array.Int32).Value(pos), dt)
	case arrow.INT64:
		return datagrid.NewValue(col.(*array.Int64).Value(pos), dt)
	case arrow.UINT8:
		return datagrid.NewValue(col.(*array.Uint8).Value(pos), dt)
	case arrow.UINT16:
		return datagrid.NewValue(col.(*array.Uint16).Value(pos), dt)
	case arrow.UINT32:
		return datagrid.NewValue(col.(*array.Uint32).Value(pos), dt)
	case arrow.UINT64:
		return datagrid.NewValue(col.(*array.Uint64).Value(pos), dt)
	case arrow.FLOAT16:
		return datagrid.NewValue(float64(col.(*array.Float16).Value(pos).Float32()), dt)
	case arrow.FLOAT32:
		return datagrid.NewValue(float64(col.(*array.Float32).Value(pos)), dt)
	case arrow.FLOAT64:
		return datagrid.NewValue(col.(*array.Float64).Value(pos), dt)
	case arrow.DATE32:
		return datagrid.NewValue(col.(*array.Date32).Value(pos).ToTime(), dt)
	case arrow.DATE64:
		return datagrid.NewValue(col.(*array.Date64).Value(pos).ToTime(), dt)
	case arrow.TIMESTAMP:
		ts := col.(*array.Timestamp)
		unit := ts.DataType().(*arrow.TimestampType).Unit
		return datagrid.NewValue(ts.Value(pos).ToTime(unit), dt)
	case arrow.DECIMAL128:
		d := col.(*array.Decimal128)
		scale := d.DataType().(*arrow.Decimal128Type).Scale
		return datagrid.NewValue(d.Value(pos).ToFloat64(scale), dt)
	default:
		// Nested and exotic types fall back to their string form.
		return datagrid.NewValue(fmt.Sprintf("%v", col.GetOneForMarshal(pos)), dt)
	}
}
