package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/WhiteBite/diaflow/pkg/formats"
)

// formatsCommand creates the formats command listing supported syntaxes.
func (c *CLI) formatsCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported diagram formats",
		Long: `List supported diagram formats.

With --pick, an interactive picker runs on stderr and the chosen format
name is printed to stdout, so the command can feed other invocations:

  diaflow convert flow.mmd --to "$(diaflow formats --pick)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pick {
				return runFormatPicker()
			}
			fmt.Println(formatsTable())
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "select a format interactively and print its name")

	return cmd
}

// runFormatPicker runs the interactive picker. The selection UI renders on
// stderr so that stdout carries nothing but the chosen name.
func runFormatPicker() error {
	p := tea.NewProgram(newFormatPicker(formats.All), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(formatPicker)
	if !ok || m.Selected == nil {
		return fmt.Errorf("no format selected")
	}

	fmt.Println(m.Selected.Name)
	return nil
}

// formatsTable renders the format registry as a bordered table.
func formatsTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := [][]string{}
	for _, f := range formats.All {
		aliases := strings.Join(f.Aliases, ", ")
		if aliases == "" {
			aliases = "—"
		}
		rows = append(rows, []string{
			f.Name,
			aliases,
			strings.Join(f.Extensions, ", "),
			capabilityMark(f.CanParse()),
			capabilityMark(f.CanGenerate()),
			f.Description,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Format", "Aliases", "Extensions", "Read", "Write", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 || col == 4 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}

func capabilityMark(ok bool) string {
	if ok {
		return iconSuccess
	}
	return "—"
}
