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

package datagrid

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// exportView resolves the current view: the effective (non-hidden)
// columns, their source indices, and the filtered+sorted row order.
// Export deliberately ignores plugin column narrowing: a virtualized
// window is a render optimization, not part of the user's view.
func (g *Grid) exportView() ([]Column, []int, error) {
	g.mu.Lock()
	source := g.source
	cols := visibleColumns(g.columns)
	g.mu.Unlock()

	if source == nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExportFailed, ErrNoDataSource)
	}
	return cols, g.resolveRowOrder(), nil
}

// sourceColumnIndex maps a field key to its index in the data source.
func sourceColumnIndex(source DataSource, field string) (int, error) {
	for i := 0; i < source.ColumnCount(); i++ {
		name, err := source.ColumnName(i)
		if err != nil {
			return -1, err
		}
		if name == field {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, field)
}

// ExportCSV writes the current view (filtered, sorted, visible columns)
// as CSV with a header row.
func (g *Grid) ExportCSV(w io.Writer) error {
	cols, order, err := g.exportView()
	if err != nil {
		return err
	}
	g.mu.Lock()
	source := g.source
	g.mu.Unlock()

	colIdx := make([]int, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		idx, err := sourceColumnIndex(source, c.Field)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		colIdx[i] = idx
		header[i] = c.HeaderText()
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	record := make([]string, len(cols))
	for _, rowIdx := range order {
		for i, idx := range colIdx {
			cell, err := source.Cell(rowIdx, idx)
			if err != nil {
				return fmt.Errorf("%w: row %d: %v", ErrExportFailed, rowIdx, err)
			}
			record[i] = cell.Formatted
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// ExportJSON writes the current view as an array of objects keyed by
// column field.
func (g *Grid) ExportJSON(w io.Writer) error {
	cols, order, err := g.exportView()
	if err != nil {
		return err
	}
	g.mu.Lock()
	source := g.source
	g.mu.Unlock()

	colIdx := make([]int, len(cols))
	for i, c := range cols {
		idx, err := sourceColumnIndex(source, c.Field)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		colIdx[i] = idx
	}

	out := make([]map[string]interface{}, 0, len(order))
	for _, rowIdx := range order {
		obj := make(map[string]interface{}, len(cols))
		for i, idx := range colIdx {
			cell, err := source.Cell(rowIdx, idx)
			if err != nil {
				return fmt.Errorf("%w: row %d: %v", ErrExportFailed, rowIdx, err)
			}
			if cell.IsNull {
				obj[cols[i].Field] = nil
			} else {
				obj[cols[i].Field] = cell.Raw
			}
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}
