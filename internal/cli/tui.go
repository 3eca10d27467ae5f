package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/WhiteBite/diaflow/pkg/formats"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// formatPicker is the bubbletea model for interactive format selection.
type formatPicker struct {
	Formats  []*formats.Format
	Cursor   int
	Selected *formats.Format
}

func newFormatPicker(fmts []*formats.Format) formatPicker {
	return formatPicker{Formats: fmts}
}

func (m formatPicker) Init() tea.Cmd {
	return nil
}

func (m formatPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Formats)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Formats[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m formatPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Format"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Formats {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		var status string
		switch {
		case f.CanParse() && f.CanGenerate():
			status = StyleSuccess.Render("*")
		default:
			status = StyleWarning.Render("!")
		}

		line := fmt.Sprintf("%s%s %-10s %s", cursor, status, f.Name, listDimStyle.Render(f.Description))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s read + write   %s one direction only\n",
		StyleSuccess.Render("*"), StyleWarning.Render("!")))

	return b.String()
}
