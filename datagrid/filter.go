package datagrid

import (
	"fmt"
	"strings"
)

// Filter decides whether a row is part of the visible row set.
type Filter interface {
	// Evaluate returns true if the row passes the filter.
	// columnNames holds the field key for each cell position.
	Evaluate(row []Value, columnNames []string) (bool, error)

	// Description returns a human-readable form for status display.
	Description() string
}

// CompareOp is a comparison operator for ColumnFilter.
type CompareOp int

const (
	// OpEquals matches cells whose formatted value equals the operand.
	OpEquals CompareOp = iota
	// OpContains matches cells whose formatted value contains the operand.
	OpContains
	// OpGreaterThan matches numeric cells greater than the operand.
	OpGreaterThan
	// OpLessThan matches numeric cells less than the operand.
	OpLessThan
)

// String returns the string representation of a CompareOp.
func (op CompareOp) String() string {
	switch op {
	case OpEquals:
		return "="
	case OpContains:
		return "contains"
	case OpGreaterThan:
		return ">"
	case OpLessThan:
		return "<"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// ColumnFilter matches one column against a literal operand.
type ColumnFilter struct {
	// Field is the column field key the filter applies to.
	Field string
	// Op is the comparison operator.
	Op CompareOp
	// Operand is the right-hand side of the comparison. For numeric
	// operators it must be convertible via Value.Float on the cell side
	// and hold a float64 here.
	Operand interface{}
}

// Evaluate implements the Filter interface.
func (f *ColumnFilter) Evaluate(row []Value, columnNames []string) (bool, error) {
	idx := -1
	for i, name := range columnNames {
		if name == f.Field {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(row) {
		return false, fmt.Errorf("%w: %q", ErrColumnNotFound, f.Field)
	}
	cell := row[idx]
	if cell.IsNull {
		return false, nil
	}

	switch f.Op {
	case OpEquals:
		return cell.Formatted == fmt.Sprintf("%v", f.Operand), nil
	case OpContains:
		return strings.Contains(cell.Formatted, fmt.Sprintf("%v", f.Operand)), nil
	case OpGreaterThan, OpLessThan:
		lhs, ok := cell.Float()
		if !ok {
			return false, fmt.Errorf("%w: column %q is not numeric", ErrTypeMismatch, f.Field)
		}
		rhs, ok := f.Operand.(float64)
		if !ok {
			return false, fmt.Errorf("%w: operand for %q is not a float64", ErrTypeMismatch, f.Field)
		}
		if f.Op == OpGreaterThan {
			return lhs > rhs, nil
		}
		return lhs < rhs, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %d", ErrInvalidFilter, f.Op)
	}
}

// Description implements the Filter interface.
func (f *ColumnFilter) Description() string {
	return fmt.Sprintf("%s %s %v", f.Field, f.Op, f.Operand)
}

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines multiple filters with AND or OR logic.
type CompositeFilter struct {
	// Filters is the list of filters to combine.
	Filters []Filter

	// Logic specifies how to combine the filters (AND or OR).
	Logic LogicOp
}

// Evaluate implements the Filter interface.
func (f *CompositeFilter) Evaluate(row []Value, columnNames []string) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil // Empty filter passes all rows
	}

	switch f.Logic {
	case LogicAND:
		for _, filter := range f.Filters {
			passes, err := filter.Evaluate(row, columnNames)
			if err != nil {
				return false, err
			}
			if !passes {
				return false, nil // Short-circuit on first failure
			}
		}
		return true, nil

	case LogicOR:
		for _, filter := range f.Filters {
			passes, err := filter.Evaluate(row, columnNames)
			if err != nil {
				return false, err
			}
			if passes {
				return true, nil // Short-circuit on first success
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", ErrInvalidFilter, f.Logic)
	}
}

// Description implements the Filter interface.
func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}

	descriptions := make([]string, len(f.Filters))
	for i, filter := range f.Filters {
		descriptions[i] = filter.Description()
	}

	logicStr := f.Logic.String()
	return "(" + strings.Join(descriptions, " "+logicStr+" ") + ")"
}
