package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anasaboreeda/anascode/internal/content"
)

// detailBodyLines is how much of the article body the detail view previews.
const detailBodyLines = 15

// View implements tea.Model.
func (m ArticlesModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		if m.selected < 0 || m.selected >= len(m.rows) {
			return "Error: selected article out of range\n"
		}
		return RenderArticleDetail(m.rows[m.selected], m.detail, m.width)
	default:
		return m.renderList()
	}
}

func (m ArticlesModel) renderList() string {
	var b strings.Builder

	drafts := 0
	for _, a := range m.rows {
		if !a.IsPublished() {
			drafts++
		}
	}
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Articles (%d of %d)", len(m.rows), len(m.all))))
	b.WriteString("  ")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("sort: %s  drafts: %d", m.sortBy, drafts)))
	b.WriteString("\n")

	if m.showFilter {
		b.WriteString(m.textInput.View())
	} else if v := m.textInput.Value(); v != "" {
		b.WriteString(MutedStyle.Render("filter: " + v))
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(MutedStyle.Italic(true).Render("No articles match."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(MutedStyle.Render("↑/↓ navigate • enter open • / filter • s sort • d toggle drafts • q quit"))
	return b.String()
}

// RenderArticleDetail renders the metadata of a and, when doc is available,
// the start of its body.
func RenderArticleDetail(a content.Article, doc *content.Document, width int) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(a.Title))
	b.WriteString("\n\n")

	status := OKStyle.Render("published")
	if !a.IsPublished() {
		status = DraftStyle.Render("draft")
	}

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(ValueStyle.Render(value))
		b.WriteString("\n")
	}
	field("Slug", a.Slug)
	field("Date", a.Date)
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-10s", "Status")) + status + "\n")
	field("Tags", strings.Join(a.Tags, ", "))
	field("Source", a.Source)
	field("Canonical", a.CanonicalURL)
	if doc != nil {
		field("File", doc.Path)
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(max(width-2, 20)).Render(a.Summary))
	b.WriteString("\n")

	if doc != nil {
		lines := strings.Split(strings.TrimSpace(doc.Content), "\n")
		more := len(lines) > detailBodyLines
		if more {
			lines = lines[:detailBodyLines]
		}
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(strings.Join(lines, "\n")))
		if more {
			b.WriteString("\n" + MutedStyle.Render("…"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("esc back • q quit"))
	return b.String()
}
