package cli

import (
	"encoding/json"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/logging"
)

// Table layout shared by the list-style commands.
const (
	tabMinWidth = 0
	tabWidth    = 0
	tabPadding  = 2
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// styled reports whether the command writes to a terminal, in which case
// output is decorated with lipgloss styles.
func styled(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(f)
}

func render(cmd *cobra.Command, style lipgloss.Style, s string) string {
	if !styled(cmd) {
		return s
	}
	return style.Render(s)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, tabMinWidth, tabWidth, tabPadding, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandLogger returns the logger attached by the root command, tagged with
// the component name.
func commandLogger(cmd *cobra.Command, component string) zerolog.Logger {
	return logging.ComponentLogger(*logging.FromContext(cmd.Context()), component)
}
