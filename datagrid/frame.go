package datagrid

// RowState describes how a frame row should be presented.
type RowState int

const (
	// RowLoaded means the row's cells are available.
	RowLoaded RowState = iota
	// RowLoading means the row's block is being fetched; render a
	// loading placeholder.
	RowLoading
	// RowError means the row's block fetch failed; render an error
	// placeholder for the affected range.
	RowError
)

// WindowRow is one row of a frame's visible window.
type WindowRow struct {
	// Index is the absolute row index in the dataset.
	Index int
	// State tells the renderer whether Cells is usable.
	State RowState
	// Cells holds one value per rendered column when State is RowLoaded.
	Cells []Value
	// Err carries the fetch failure when State is RowError.
	Err error
}

// Frame is an immutable snapshot produced by one render pass. Adapters
// turn frames into pixels; they must not mutate them.
type Frame struct {
	// Sequence increases by one per render pass.
	Sequence uint64

	// Columns is the column list after the plugin fold; when column
	// virtualization is active this is the visible window only.
	Columns []Column

	// StartRow is the absolute index of Rows[0].
	StartRow int

	// Rows is the visible row window.
	Rows []WindowRow

	// TotalRows is the full dataset size (after filtering for in-memory
	// sources; totalRowCount for server-side sources).
	TotalRows int

	// PadLeft is the left offset in pixels the renderer must apply to
	// header and body containers to compensate for unmaterialized
	// columns.
	PadLeft float64

	// TotalWidth is the full unvirtualized content width in pixels; the
	// scrollable area must use it so the scrollbar range stays correct.
	TotalWidth float64
}

// Queries answered by row-providing plugins.
const (
	// QueryRowWindow asks a row-providing plugin for a window of rows.
	// Args is RowWindowRequest, Result is *RowWindowResult.
	QueryRowWindow = "grid/row-window"
)

// RowWindowRequest asks for rows [Start, End).
type RowWindowRequest struct {
	Start, End int
}

// RowWindowResult is the answer to a QueryRowWindow query.
type RowWindowResult struct {
	Rows []WindowRow
}
