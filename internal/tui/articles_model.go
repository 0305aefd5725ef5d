package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anasaboreeda/anascode/internal/content"
)

// SortField is the column the article table is ordered by.
type SortField int

// Sort fields, in the order the 's' key cycles through them.
const (
	SortByDate SortField = iota
	SortByTitle
	SortBySlug

	numSortFields = 3
)

func (f SortField) String() string {
	switch f {
	case SortByTitle:
		return "title"
	case SortBySlug:
		return "slug"
	default:
		return "date"
	}
}

// DocumentLoader loads the full source of an article for the detail view.
type DocumentLoader func(slug string) (*content.Document, bool)

// ArticlesModel is the Bubble Tea model behind `anascode articles browse`.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type ArticlesModel struct {
	state    ViewState
	all      []content.Article
	rows     []content.Article
	load     DocumentLoader
	detail   *content.Document
	selected int

	table     table.Model
	textInput textinput.Model

	width      int
	height     int
	sortBy     SortField
	showFilter bool
	hideDrafts bool
}

// NewArticlesModel creates a browser over articles, newest first. load is
// called when an article is opened; it may be nil.
func NewArticlesModel(articles []content.Article, load DocumentLoader) ArticlesModel {
	m := ArticlesModel{
		state:     ViewStateList,
		all:       articles,
		load:      load,
		textInput: newTextInput("Filter articles..."),
		width:     defaultWidth,
		height:    defaultHeight,
		sortBy:    SortByDate,
	}
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m ArticlesModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ArticlesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if winMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = winMsg.Width
		m.height = winMsg.Height
		m.rebuildTable()
		return m, nil
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	switch m.state {
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	default:
		return m, nil
	}
}

func (m ArticlesModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			m.showFilter = false
			m.textInput.Blur()
			m.applyFilter()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m ArticlesModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEnter:
		m.openSelected()
		return m, nil
	case keySlash:
		m.showFilter = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keyS:
		m.sortBy = (m.sortBy + 1) % numSortFields
		m.applySort()
		m.rebuildTable()
		return m, nil
	case keyDrafts:
		m.hideDrafts = !m.hideDrafts
		m.applyFilter()
		return m, nil
	case keyEsc:
		if m.textInput.Value() != "" {
			m.textInput.SetValue("")
			m.applyFilter()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
}

func (m ArticlesModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEsc:
			m.state = ViewStateList
			m.detail = nil
			m.table.Focus()
			return m, nil
		}
	}
	return m, nil
}

// openSelected switches to the detail view of the article under the cursor.
func (m *ArticlesModel) openSelected() {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return
	}
	m.selected = cursor
	m.detail = nil
	if m.load != nil {
		if doc, ok := m.load(m.rows[cursor].Slug); ok {
			m.detail = doc
		}
	}
	m.state = ViewStateDetail
}

// applyFilter rebuilds rows from all articles using the filter text and the
// draft toggle, then re-sorts.
func (m *ArticlesModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.textInput.Value()))

	rows := make([]content.Article, 0, len(m.all))
	for _, a := range m.all {
		if m.hideDrafts && !a.IsPublished() {
			continue
		}
		if query != "" && !matches(a, query) {
			continue
		}
		rows = append(rows, a)
	}
	m.rows = rows
	m.applySort()
	m.rebuildTable()
}

func matches(a content.Article, query string) bool {
	if strings.Contains(strings.ToLower(a.Title), query) ||
		strings.Contains(a.Slug, query) ||
		strings.Contains(strings.ToLower(a.Summary), query) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func (m *ArticlesModel) applySort() {
	sort.SliceStable(m.rows, func(i, j int) bool {
		a, b := m.rows[i], m.rows[j]
		switch m.sortBy {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortBySlug:
			return a.Slug < b.Slug
		default:
			return a.Time().After(b.Time())
		}
	})
}

func (m *ArticlesModel) rebuildTable() {
	m.table = m.buildTable()
}

func (m *ArticlesModel) buildTable() table.Model {
	titleWidth := m.width - 12 - 8 - 30 - 8
	if titleWidth < 20 {
		titleWidth = 20
	}
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Title", Width: titleWidth},
		{Title: "Status", Width: 8},
		{Title: "Tags", Width: 30},
	}

	rows := make([]table.Row, len(m.rows))
	for i, a := range m.rows {
		status := "live"
		if !a.IsPublished() {
			status = "draft"
		}
		rows[i] = table.Row{a.Date, truncate(a.Title, titleWidth), status, truncate(strings.Join(a.Tags, ", "), 30)}
	}

	height := m.height - headerHeight
	if height < minHeight {
		height = minHeight
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

// State returns the current view state.
func (m ArticlesModel) State() ViewState {
	return m.state
}

// Visible returns the slugs of the rows currently listed, in display order.
func (m ArticlesModel) Visible() []string {
	slugs := make([]string, len(m.rows))
	for i, a := range m.rows {
		slugs[i] = a.Slug
	}
	return slugs
}
