package datagrid

import "errors"

// Common errors returned by the datagrid package.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrTypeMismatch is returned when a type comparison is invalid.
	ErrTypeMismatch = errors.New("type mismatch in comparison")

	// ErrNoDataSource is returned when a required data source is nil.
	ErrNoDataSource = errors.New("data source is nil")

	// ErrColumnNotFound is returned when a column field is not found.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateField is returned when two columns share the same field key.
	ErrDuplicateField = errors.New("duplicate column field")

	// ErrDuplicatePlugin is returned when a plugin with the same name is
	// already attached to the grid.
	ErrDuplicatePlugin = errors.New("plugin name already attached")

	// ErrPluginNotFound is returned when detaching a plugin that is not
	// attached.
	ErrPluginNotFound = errors.New("plugin not attached")

	// ErrMissingDependency is returned at attach time when a plugin declares
	// a required dependency that is not attached.
	ErrMissingDependency = errors.New("required plugin dependency missing")

	// ErrDependencyHeld is returned when detaching a plugin that another
	// attached plugin declares as a required dependency.
	ErrDependencyHeld = errors.New("plugin is a required dependency of another plugin")

	// ErrGridClosed is returned when operating on a grid after Close.
	ErrGridClosed = errors.New("grid is closed")

	// ErrExportFailed is returned when an export operation fails.
	ErrExportFailed = errors.New("export failed")
)
