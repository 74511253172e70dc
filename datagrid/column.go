package datagrid

import "fmt"

// Column describes one logical grid column.
//
// Field keys must be unique within a column set. Width accepts a plain
// number ("120"), a pixel suffix ("120px"), or empty; anything else falls
// back to the engine's default column width during layout.
type Column struct {
	// Field is the unique key identifying this column.
	Field string

	// Title is the header text. Empty falls back to Field.
	Title string

	// Width is the declared column width. See ParseWidth in internal/layout
	// for the accepted forms.
	Width string

	// MinWidth is a lower bound applied by width auto-adjustment.
	MinWidth string

	// Type is the column's data type.
	Type DataType

	// Hidden excludes the column from the effective column set.
	Hidden bool

	// Editable marks the column as editable by cell editors.
	Editable bool

	// Sortable marks the column as sortable by header interaction.
	Sortable bool

	// Aggregator optionally names an aggregate function (see the
	// aggregate package) applied by grouping features.
	Aggregator string
}

// HeaderText returns the display title, falling back to the field key.
func (c Column) HeaderText() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Field
}

// validateColumns checks the field-uniqueness invariant.
func validateColumns(cols []Column) error {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Field == "" {
			return fmt.Errorf("%w: empty field key", ErrColumnNotFound)
		}
		if _, ok := seen[c.Field]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, c.Field)
		}
		seen[c.Field] = struct{}{}
	}
	return nil
}

// visibleColumns filters out hidden columns, returning a fresh slice.
func visibleColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// ColumnsFromSource derives a column set from a data source's schema.
func ColumnsFromSource(source DataSource) ([]Column, error) {
	if source == nil {
		return nil, ErrNoDataSource
	}
	n := source.ColumnCount()
	cols := make([]Column, 0, n)
	for i := 0; i < n; i++ {
		name, err := source.ColumnName(i)
		if err != nil {
			return nil, err
		}
		typ, err := source.ColumnType(i)
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{Field: name, Type: typ, Sortable: true})
	}
	if err := validateColumns(cols); err != nil {
		return nil, err
	}
	return cols, nil
}
