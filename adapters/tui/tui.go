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

// Package tui renders a grid in the terminal with Bubble Tea.
//
// The adapter maps one layout unit to one terminal cell: configure the
// grid with RowHeight 1 and column widths in character counts, e.g.
// Width: "16" for a 16-character column.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/magpierre/fyne-datagrid/datagrid"
	"github.com/magpierre/fyne-datagrid/internal/layout"
)

const chromeRows = 2 // header line + status line

type renderRequested struct{}

// Model is a tea.Model displaying live grid frames. Arrow keys and
// PgUp/PgDn scroll, q quits.
type Model struct {
	grid  *datagrid.Grid
	frame *datagrid.Frame
	err   error

	width, height         int
	scrollLeft, scrollTop float64

	renders chan struct{}

	headerStyle  lipgloss.Style
	loadingStyle lipgloss.Style
	errorStyle   lipgloss.Style
	statusStyle  lipgloss.Style
}

// NewModel wraps the grid. The grid's render requests drive the model,
// so asynchronous block loads repaint without polling.
func NewModel(grid *datagrid.Grid) Model {
	renders := make(chan struct{}, 1)
	grid.OnRenderRequested(func() {
		select {
		case renders <- struct{}{}:
		default:
		}
	})
	return Model{
		grid:         grid,
		renders:      renders,
		headerStyle:  lipgloss.NewStyle().Bold(true).Underline(true),
		loadingStyle: lipgloss.NewStyle().Faint(true),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		statusStyle:  lipgloss.NewStyle().Reverse(true),
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForRender()
}

func (m Model) waitForRender() tea.Cmd {
	renders := m.renders
	return func() tea.Msg {
		<-renders
		return renderRequested{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetViewport(float64(msg.Width), float64(msg.Height-chromeRows))
		return m, nil

	case renderRequested:
		m.frame, m.err = m.grid.Render()
		return m, m.waitForRender()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up":
			m.scrollTop = max(0, m.scrollTop-1)
		case "down":
			m.scrollTop++
		case "pgup":
			m.scrollTop = max(0, m.scrollTop-float64(m.height-chromeRows))
		case "pgdown":
			m.scrollTop += float64(m.height - chromeRows)
		case "left":
			m.scrollLeft = max(0, m.scrollLeft-8)
		case "right":
			m.scrollLeft += 8
		case "home":
			m.scrollLeft, m.scrollTop = 0, 0
		default:
			return m, nil
		}
		m.grid.Scroll(m.scrollLeft, m.scrollTop)
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return m.errorStyle.Render("render failed: " + m.err.Error())
	}
	if m.frame == nil {
		return m.loadingStyle.Render("loading…")
	}

	var b strings.Builder
	pad := strings.Repeat(" ", int(max(0, m.frame.PadLeft-m.scrollLeft)))

	b.WriteString(m.headerStyle.Render(m.clip(pad + m.headerLine())))
	b.WriteByte('\n')

	visible := m.height - chromeRows
	shown := 0
	for _, row := range m.frame.Rows {
		if shown >= visible {
			break
		}
		b.WriteString(m.clip(pad + m.rowLine(row)))
		b.WriteByte('\n')
		shown++
	}
	for ; shown < visible; shown++ {
		b.WriteByte('\n')
	}

	b.WriteString(m.statusStyle.Render(m.clip(m.grid.Status())))
	return b.String()
}

func (m Model) headerLine() string {
	cells := make([]string, len(m.frame.Columns))
	for i, c := range m.frame.Columns {
		cells[i] = fit(c.HeaderText(), colWidth(c))
	}
	return strings.Join(cells, " ")
}

func (m Model) rowLine(row datagrid.WindowRow) string {
	switch row.State {
	case datagrid.RowLoading:
		return m.loadingStyle.Render(fmt.Sprintf("… row %d", row.Index))
	case datagrid.RowError:
		return m.errorStyle.Render(fmt.Sprintf("! row %d: %v", row.Index, row.Err))
	}
	cells := make([]string, len(m.frame.Columns))
	for i := range m.frame.Columns {
		text := ""
		if i < len(row.Cells) {
			text = row.Cells[i].Formatted
		}
		cells[i] = fit(text, colWidth(m.frame.Columns[i]))
	}
	return strings.Join(cells, " ")
}

func (m Model) clip(line string) string {
	if m.width > 0 && len(line) > m.width {
		return line[:m.width]
	}
	return line
}

func colWidth(c datagrid.Column) int {
	return int(layout.ParseWidth(c.Width))
}

func fit(s string, width int) string {
	if width <= 0 {
		width = 1
	}
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
