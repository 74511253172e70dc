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

package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/plugins/serverside"
)

// syntheticColumns builds a wide column set: id, name, then numbered
// metric columns. Widths are character counts for the terminal host.
func syntheticColumns(n int) []datagrid.Column {
	if n < 2 {
		n = 2
	}
	cols := make([]datagrid.Column, 0, n)
	cols = append(cols,
		datagrid.Column{Field: "id", Title: "ID", Width: "8", Type: datagrid.TypeInt, Sortable: true},
		datagrid.Column{Field: "name", Title: "Name", Width: "16", Type: datagrid.TypeString, Sortable: true},
	)
	for i := len(cols); i < n; i++ {
		cols = append(cols, datagrid.Column{
			Field:      fmt.Sprintf("metric_%02d", i),
			Title:      fmt.Sprintf("Metric %02d", i),
			Width:      "12",
			Type:       datagrid.TypeFloat,
			Sortable:   true,
			Aggregator: "avg",
		})
	}
	return cols
}

// syntheticSource generates deterministic rows on demand, with a
// simulated network delay so the loading placeholders are visible.
type syntheticSource struct {
	rows    int
	columns int
	latency time.Duration
}

func newSyntheticSource(rows, columns int, latency time.Duration) *syntheticSource {
	if rows <= 0 {
		rows = 5000
	}
	return &syntheticSource{rows: rows, columns: columns, latency: latency}
}

// GetRows implements serverside.DataSource.
func (s *syntheticSource) GetRows(ctx context.Context, req serverside.GetRowsRequest) (*serverside.GetRowsResult, error) {
	select {
	case <-time.After(s.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start, end := req.StartRow, req.EndRow
	if start < 0 {
		start = 0
	}
	if end > s.rows {
		end = s.rows
	}

	out := make([]datagrid.Row, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, s.makeRow(i))
	}
	return &serverside.GetRowsResult{Rows: out, TotalRowCount: s.rows}, nil
}

func (s *syntheticSource) makeRow(i int) datagrid.Row {
	rng := rand.New(rand.NewSource(int64(i)))
	row := make(datagrid.Row, 0, s.columns)
	row = append(row,
		datagrid.NewValue(int64(i), datagrid.TypeInt),
		datagrid.NewValue(fmt.Sprintf("device-%04d", i), datagrid.TypeString),
	)
	for c := 2; c < s.columns; c++ {
		row = append(row, datagrid.NewValue(rng.Float64()*1000, datagrid.TypeFloat))
	}
	return row
}
