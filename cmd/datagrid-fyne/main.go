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

// Command datagrid-fyne hosts the grid engine in a Fyne window. By
// default it shows an in-memory sample table; with -profile it streams
// a Delta Sharing table through the server-side rows plugin instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/lmittmann/tint"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	"github.com/magpierre/fyne-datagrid/adapters/deltasharing"
	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/plugins/colvirt"
	"github.com/magpierre/fyne-datagrid/plugins/serverside"
	"github.com/magpierre/fyne-datagrid/schedule"
	dgwidget "github.com/magpierre/fyne-datagrid/widget"
)

func main() {
	profile := flag.String("profile", "", "Delta Sharing profile file")
	share := flag.String("share", "", "share name")
	schema := flag.String("schema", "", "schema name")
	table := flag.String("table", "", "table name")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))

	scheduler := schedule.New(schedule.DefaultFallbackInterval)
	defer scheduler.Shutdown()

	grid, err := buildGrid(logger, scheduler, *profile, *share, *schema, *table)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer grid.Close()

	a := app.New()
	w := a.NewWindow("DataGrid")
	w.SetContent(dgwidget.NewDataGrid(grid))
	w.Resize(fyne.NewSize(1024, 600))
	grid.RequestRender()
	w.ShowAndRun()
}

func buildGrid(logger *slog.Logger, scheduler *schedule.Scheduler, profile, share, schema, table string) (*datagrid.Grid, error) {
	cfg := datagrid.Config{
		Logger:  logger,
		Plugins: []datagrid.Plugin{colvirt.New(colvirt.DefaultConfig())},
	}

	if profile == "" {
		source, err := sampleSource()
		if err != nil {
			return nil, err
		}
		cfg.Source = source
		return datagrid.New(cfg)
	}

	remote := deltasharing.NewSource(profile, delta_sharing.Table{
		Share: share, Schema: schema, Name: table,
	}, "")
	fields, err := remote.ColumnNames(context.Background())
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		cfg.Columns = append(cfg.Columns, datagrid.Column{Field: f, Sortable: true})
	}

	ssCfg := serverside.DefaultConfig()
	ssCfg.Source = remote
	ssCfg.Scheduler = scheduler
	cfg.Plugins = append(cfg.Plugins, serverside.New(ssCfg))
	return datagrid.New(cfg)
}

// sampleSource builds a small in-memory table for offline runs.
func sampleSource() (*datagrid.SliceSource, error) {
	names := []string{"region", "device", "uptime_days", "cpu_pct"}
	types := []datagrid.DataType{
		datagrid.TypeString, datagrid.TypeString, datagrid.TypeInt, datagrid.TypeFloat,
	}
	regions := []string{"emea", "amer", "apac"}
	rows := make([]datagrid.Row, 0, 300)
	for i := 0; i < 300; i++ {
		rows = append(rows, datagrid.Row{
			datagrid.NewValue(regions[i%len(regions)], datagrid.TypeString),
			datagrid.NewValue(fmt.Sprintf("node-%03d", i), datagrid.TypeString),
			datagrid.NewValue(int64(i%400), datagrid.TypeInt),
			datagrid.NewValue(float64(i%97)+0.5, datagrid.TypeFloat),
		})
	}
	return datagrid.NewSliceSource(names, types, rows)
}
