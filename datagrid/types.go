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

// Package datagrid provides a plugin-extensible data grid engine.
//
// The engine is headless: it owns column configuration, row data and the
// render pipeline, and produces immutable Frame snapshots that render
// adapters (Fyne widget, terminal UI) turn into pixels. Features such as
// column virtualization or server-side row windowing are added by
// attaching plugins (see Plugin).
package datagrid

import (
	"fmt"
	"strconv"
	"time"
)

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data (any size).
	TypeInt
	// TypeFloat represents floating-point data (any precision).
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
	// TypeDate represents date data (without time).
	TypeDate
	// TypeTimestamp represents timestamp data (date + time).
	TypeTimestamp
	// TypeBinary represents binary/blob data.
	TypeBinary
	// TypeDecimal represents decimal/numeric data (fixed precision).
	TypeDecimal
	// TypeStruct represents structured data (nested fields).
	TypeStruct
	// TypeList represents list/array data.
	TypeList
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeDate:
		return "Date"
	case TypeTimestamp:
		return "Timestamp"
	case TypeBinary:
		return "Binary"
	case TypeDecimal:
		return "Decimal"
	case TypeStruct:
		return "Struct"
	case TypeList:
		return "List"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value.
	// The type depends on the DataType field.
	Raw interface{}

	// Type indicates the data type of this value.
	Type DataType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is a pre-formatted string representation for display.
	// This improves UI performance by avoiding repeated formatting.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw interface{}, dataType DataType) Value {
	if raw == nil {
		return Value{
			Raw:       nil,
			Type:      dataType,
			IsNull:    true,
			Formatted: "",
		}
	}

	return Value{
		Raw:       raw,
		Type:      dataType,
		IsNull:    false,
		Formatted: formatValue(raw, dataType),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

// Float returns the value as a float64 for numeric types.
// The second result is false for nulls and non-numeric values.
func (v Value) Float() (float64, bool) {
	if v.IsNull {
		return 0, false
	}
	switch raw := v.Raw.(type) {
	case float64:
		return raw, true
	case float32:
		return float64(raw), true
	case int:
		return float64(raw), true
	case int8:
		return float64(raw), true
	case int16:
		return float64(raw), true
	case int32:
		return float64(raw), true
	case int64:
		return float64(raw), true
	case uint:
		return float64(raw), true
	case uint8:
		return float64(raw), true
	case uint16:
		return float64(raw), true
	case uint32:
		return float64(raw), true
	case uint64:
		return float64(raw), true
	}
	return 0, false
}

// formatValue converts a raw value to a formatted string.
func formatValue(raw interface{}, dataType DataType) string {
	if raw == nil {
		return ""
	}

	switch dataType {
	case TypeFloat, TypeDecimal:
		if f, ok := rawFloat(raw); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case TypeBool:
		if b, ok := raw.(bool); ok {
			return strconv.FormatBool(b)
		}
	case TypeDate:
		if t, ok := raw.(time.Time); ok {
			return t.Format("2006-01-02")
		}
	case TypeTimestamp:
		if t, ok := raw.(time.Time); ok {
			return t.Format(time.RFC3339)
		}
	case TypeBinary:
		if b, ok := raw.([]byte); ok {
			return fmt.Sprintf("<%d bytes>", len(b))
		}
	}
	return fmt.Sprintf("%v", raw)
}

func rawFloat(raw interface{}) (float64, bool) {
	switch f := raw.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}

// Row is one record of cell values, ordered by column.
type Row []Value

// Metadata holds optional metadata about a data source.
type Metadata map[string]interface{}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// SortState represents the current sorting configuration.
type SortState struct {
	// Column is the index of the sorted column (-1 if unsorted).
	Column int
	// Direction is the sort direction.
	Direction SortDirection
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Column >= 0 && s.Direction != SortNone
}
