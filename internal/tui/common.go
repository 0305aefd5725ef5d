// Package tui implements the interactive terminal views of anascode.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// ViewState is the screen an interactive model is showing.
type ViewState int

// View states.
const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateQuitting
)

// Key bindings shared by the models.
const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keySlash  = "/"
	keyS      = "s"
	keyDrafts = "d"
)

const (
	defaultWidth  = 120
	defaultHeight = 30
	minHeight     = 5

	// headerHeight is the space reserved above and below the table.
	headerHeight = 6

	filterInputCharLimit = 64
	filterInputWidth     = 40
)

// Colors.
var (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("229")
	ColorSelected  = lipgloss.Color("57")
	ColorDraft     = lipgloss.Color("214")
	ColorOK        = lipgloss.Color("42")
)

// Styles.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorValue)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	DraftStyle = lipgloss.NewStyle().Foreground(ColorDraft).Bold(true)
	OKStyle    = lipgloss.NewStyle().Foreground(ColorOK)

	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	TableSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorHighlight).
		Background(ColorSelected)
)

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	return ti
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
