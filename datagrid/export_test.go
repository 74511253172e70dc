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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSVReflectsView(t *testing.T) {
	grid := peopleGrid(t)
	grid.SetFilterModel(&ColumnFilter{Field: "city", Op: OpEquals, Operand: "berlin"})
	require.NoError(t, grid.SortByField("name", SortAscending))

	var buf bytes.Buffer
	require.NoError(t, grid.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,age,city", lines[0])
	assert.Equal(t, "alice,30,berlin", lines[1])
	assert.Equal(t, "dave,,berlin", lines[2])
}

func TestExportCSVSkipsHiddenColumns(t *testing.T) {
	grid := peopleGrid(t)
	cols := grid.Columns()
	cols[1].Hidden = true
	require.NoError(t, grid.SetColumns(cols))

	var buf bytes.Buffer
	require.NoError(t, grid.ExportCSV(&buf))
	assert.Equal(t, "name,city", strings.Split(buf.String(), "\n")[0])
}

func TestExportJSON(t *testing.T) {
	grid := peopleGrid(t)
	grid.SetFilterModel(&ColumnFilter{Field: "name", Op: OpEquals, Operand: "dave"})

	var buf bytes.Buffer
	require.NoError(t, grid.ExportJSON(&buf))

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "dave", out[0]["name"])
	assert.Nil(t, out[0]["age"], "null cells export as JSON null")
	assert.Equal(t, "berlin", out[0]["city"])
}

func TestExportWithoutSourceFails(t *testing.T) {
	grid, err := New(Config{Columns: []Column{{Field: "a"}}})
	require.NoError(t, err)
	t.Cleanup(grid.Close)

	var buf bytes.Buffer
	assert.ErrorIs(t, grid.ExportCSV(&buf), ErrExportFailed)
	assert.ErrorIs(t, grid.ExportJSON(&buf), ErrExportFailed)
}
