package datagrid

// DataSource provides read-only access to tabular data.
// Implementations must be thread-safe for concurrent reads.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)

	// Row returns all values for the specified row.
	// Returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}

// SliceSource is an in-memory DataSource backed by a slice of rows.
// It is primarily useful for tests, demos and small datasets.
type SliceSource struct {
	names []string
	types []DataType
	rows  []Row
	meta  Metadata
}

// NewSliceSource builds a SliceSource from column names, column types and
// row data. Every row must have exactly len(names) cells.
func NewSliceSource(names []string, types []DataType, rows []Row) (*SliceSource, error) {
	if len(names) != len(types) {
		return nil, ErrTypeMismatch
	}
	for _, r := range rows {
		if len(r) != len(names) {
			return nil, ErrInvalidRow
		}
	}
	return &SliceSource{names: names, types: types, rows: rows, meta: Metadata{}}, nil
}

func (s *SliceSource) RowCount() int    { return len(s.rows) }
func (s *SliceSource) ColumnCount() int { return len(s.names) }

func (s *SliceSource) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", ErrInvalidColumn
	}
	return s.names[col], nil
}

func (s *SliceSource) ColumnType(col int) (DataType, error) {
	if col < 0 || col >= len(s.types) {
		return TypeString, ErrInvalidColumn
	}
	return s.types[col], nil
}

func (s *SliceSource) Cell(row, col int) (Value, error) {
	if row < 0 || row >= len(s.rows) {
		return Value{}, ErrInvalidRow
	}
	if col < 0 || col >= len(s.names) {
		return Value{}, ErrInvalidColumn
	}
	return s.rows[row][col], nil
}

func (s *SliceSource) Row(row int) ([]Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, ErrInvalidRow
	}
	out := make([]Value, len(s.rows[row]))
	copy(out, s.rows[row])
	return out, nil
}

func (s *SliceSource) Metadata() Metadata { return s.meta }
