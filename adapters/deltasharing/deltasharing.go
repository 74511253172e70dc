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

// Package deltasharing serves grid row blocks from a Delta Sharing
// table. The shared table file is loaded once as an Arrow table on the
// first block request, then windows are served from the materialized
// rows, so only the grid's block cache bounds what the UI holds.
package deltasharing

import (
	"context"
	"fmt"
	"sync"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	arrowadapter "github.com/magpierre/fyne-datagrid/adapters/arrow"
	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/plugins/serverside"
)

// Source is a serverside.DataSource backed by one file of a Delta
// Sharing table.
type Source struct {
	profile string
	table   delta_sharing.Table
	fileID  string

	mu     sync.Mutex
	rows   *arrowadapter.Source
	fields []string
}

// NewSource creates a lazy source for the given share profile, table
// and file id. No network traffic happens until the first GetRows.
func NewSource(profile string, table delta_sharing.Table, fileID string) *Source {
	return &Source{profile: profile, table: table, fileID: fileID}
}

// GetRows implements serverside.DataSource. Sort and filter models are
// ignored: a shared table file is a static snapshot, so ordering is the
// file's native order.
func (s *Source) GetRows(ctx context.Context, req serverside.GetRowsRequest) (*serverside.GetRowsResult, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.rows.RowCount()
	start, end := req.StartRow, req.EndRow
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}

	out := make([]datagrid.Row, 0, end-start)
	for i := start; i < end; i++ {
		row, err := s.rows.Row(i)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return &serverside.GetRowsResult{Rows: out, TotalRowCount: total}, nil
}

// ColumnNames returns the shared table's field names, loading the table
// if needed.
func (s *Source) ColumnNames(ctx context.Context) ([]string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out, nil
}

func (s *Source) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows != nil {
		return nil
	}

	ds, err := delta_sharing.NewSharingClientV2FromString(s.profile)
	if err != nil {
		return fmt.Errorf("sharing client for %q: %w", s.table.Name, err)
	}

	fileID := s.fileID
	if fileID == "" {
		resp, err := ds.ListFilesInTable(ctx, s.table)
		if err != nil {
			return fmt.Errorf("list files in %q: %w", s.table.Name, err)
		}
		if len(resp.AddFiles) == 0 {
			return fmt.Errorf("table %q has no data files", s.table.Name)
		}
		fileID = resp.AddFiles[0].Id
	}

	arrowTable, err := delta_sharing.LoadArrowTable(ctx, ds, s.table, fileID)
	if err != nil {
		return fmt.Errorf("load table %q file %s: %w", s.table.Name, fileID, err)
	}
	defer arrowTable.Release()

	src, err := arrowadapter.NewFromArrowTable(arrowTable)
	if err != nil {
		return err
	}
	s.rows = src
	s.fields = make([]string, src.ColumnCount())
	for i := range s.fields {
		name, err := src.ColumnName(i)
		if err != nil {
			return err
		}
		s.fields[i] = name
	}
	return nil
}
