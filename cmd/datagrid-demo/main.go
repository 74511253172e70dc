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

// Command datagrid-demo shows the grid engine in a terminal: a synthetic
// server-side row source with simulated latency, block caching, idle
// prefetch and column virtualization.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/magpierre/fyne-datagrid/adapters/tui"
	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/plugins/colvirt"
	"github.com/magpierre/fyne-datagrid/plugins/serverside"
	"github.com/magpierre/fyne-datagrid/schedule"
)

type demoConfig struct {
	LogLevel string `yaml:"log_level"`
	Columns  int    `yaml:"columns"`
	Rows     int    `yaml:"rows"`

	ServerSide struct {
		BlockSize      int `yaml:"block_size"`
		CacheBlocks    int `yaml:"cache_blocks"`
		PrefetchBlocks int `yaml:"prefetch_blocks"`
		LatencyMS      int `yaml:"latency_ms"`
	} `yaml:"server_side"`

	Virtualization struct {
		Threshold int `yaml:"threshold"`
		Overscan  int `yaml:"overscan"`
	} `yaml:"virtualization"`
}

func defaultDemoConfig() demoConfig {
	cfg := demoConfig{LogLevel: "info", Columns: 60, Rows: 5000}
	cfg.ServerSide.BlockSize = 100
	cfg.ServerSide.CacheBlocks = 8
	cfg.ServerSide.PrefetchBlocks = 1
	cfg.ServerSide.LatencyMS = 150
	cfg.Virtualization.Threshold = 30
	cfg.Virtualization.Overscan = 3
	return cfg
}

func loadConfig(path string) (demoConfig, error) {
	cfg := defaultDemoConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logFile, err := os.Create("datagrid-demo.log")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(tint.NewHandler(logFile, &tint.Options{
		Level:      logLevel(cfg.LogLevel),
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	}))

	scheduler := schedule.New(schedule.DefaultFallbackInterval)
	defer scheduler.Shutdown()

	ssCfg := serverside.DefaultConfig()
	ssCfg.Source = newSyntheticSource(cfg.Rows, cfg.Columns, time.Duration(cfg.ServerSide.LatencyMS)*time.Millisecond)
	ssCfg.BlockSize = cfg.ServerSide.BlockSize
	ssCfg.CacheBlocks = cfg.ServerSide.CacheBlocks
	ssCfg.PrefetchBlocks = cfg.ServerSide.PrefetchBlocks
	ssCfg.Scheduler = scheduler

	cvCfg := colvirt.DefaultConfig()
	cvCfg.Threshold = cfg.Virtualization.Threshold
	cvCfg.Overscan = cfg.Virtualization.Overscan

	grid, err := datagrid.New(datagrid.Config{
		Columns:   syntheticColumns(cfg.Columns),
		Logger:    logger,
		RowHeight: 1,
		Plugins: []datagrid.Plugin{
			colvirt.New(cvCfg),
			serverside.New(ssCfg),
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer grid.Close()

	program := tea.NewProgram(tui.NewModel(grid), tea.WithAltScreen())
	grid.RequestRender()
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
