package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

// scrollThreshold is how close to the end of the list the cursor must get before the
// next page is requested.
const scrollThreshold = 3

// newSearchCmd returns the "search" subcommand for the interactive search screen.
func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search movies interactively",
		Long: "Open the search screen. Type at least 3 characters to search;\n" +
			"enter expands a title, ctrl+n loads more, esc quits.",
		RunE: func(_ *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "))
		},
	}
}

// runSearch initializes the movie service and starts the Bubble Tea search TUI.
func runSearch(initial string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := interactiveLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	svc := newMovieService(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := tea.NewProgram(newSearchModel(ctx, svc, initial, cfg.UI.ScrollDebounce, logger), tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run search: %w", err)
	}
	return nil
}

// pageResultMsg carries a finished page fetch back to the TUI.
type pageResultMsg struct {
	result search.PageResult
}

// detailResultMsg carries a finished detail fetch back to the TUI.
type detailResultMsg struct {
	result search.DetailResult
}

// scrollSettledMsg fires once the cursor has rested near the end of the list.
// Only the message matching the latest seq acts.
type scrollSettledMsg struct {
	seq int
}

// searchModel is the Bubble Tea model for the search screen.
type searchModel struct {
	ctx       context.Context
	svc       core.MovieService
	ctrl      *search.Controller
	textinput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	help      help.Model
	keys      searchKeyMap
	logger    *slog.Logger
	cursor    int
	debounce  time.Duration
	scrollSeq int
	pending   *search.PageRequest // issued before the program started
	width     int
	height    int
	ready     bool
}

// newSearchModel creates a searchModel. A non-empty initial query is searched on start.
func newSearchModel(
	ctx context.Context, svc core.MovieService, initial string, debounce time.Duration, logger *slog.Logger,
) searchModel {
	ti := textinput.New()
	ti.Placeholder = "Search movies..."
	ti.Prompt = "🔎 "
	ti.CharLimit = 200
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	m := searchModel{
		ctx:       ctx,
		svc:       svc,
		ctrl:      search.NewController(),
		textinput: ti,
		spinner:   s,
		help:      help.New(),
		keys:      newSearchKeyMap(),
		logger:    logger,
		debounce:  debounce,
	}

	if initial != "" {
		m.textinput.SetValue(initial)
		m.textinput.CursorEnd()
		if req, ok := m.ctrl.SetQuery(initial); ok {
			m.pending = &req
		}
	}
	return m
}

// Init starts the cursor blink, the spinner and the initial search if one was given.
func (m searchModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.pending != nil {
		cmds = append(cmds, m.fetchPage(*m.pending))
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and user input.
func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageResultMsg:
		m.handlePage(msg.result)
		return m, nil

	case detailResultMsg:
		if m.ctrl.ApplyDetail(msg.result) {
			m.refresh()
		}
		return m, nil

	case scrollSettledMsg:
		if msg.seq != m.scrollSeq || !m.nearEnd() {
			return m, nil
		}
		return m, m.loadMore()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

// handleResize adjusts viewport and text input dimensions on terminal resize.
func (m *searchModel) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.textinput.Width = max(m.width-6, 10)
	if !m.ready {
		m.viewport = viewport.New(m.width, 1)
		m.ready = true
	}
	m.viewport.Width = m.width
	m.refresh()
}

// handleKey dispatches key events. Keys without a binding edit the query.
func (m searchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m, m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m, m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m, m.moveCursor(-max(m.viewport.Height/2, 1))
	case key.Matches(msg, m.keys.PageDown):
		return m, m.moveCursor(max(m.viewport.Height/2, 1))
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleSelected()
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.loadMore()
	case key.Matches(msg, m.keys.Retry):
		req, ok := m.ctrl.Retry()
		m.refresh()
		if !ok {
			return m, nil
		}
		return m, m.fetchPage(req)
	}

	before := m.textinput.Value()
	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	if m.textinput.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.queryChanged(m.textinput.Value()))
}

// queryChanged resets the list for a new query and starts its first page.
func (m *searchModel) queryChanged(q string) tea.Cmd {
	req, ok := m.ctrl.SetQuery(q)
	m.cursor = 0
	m.scrollSeq++
	if m.ready {
		m.viewport.GotoTop()
	}
	m.refresh()
	if !ok {
		return nil
	}
	m.logger.Debug("query changed", slog.String("query", q))
	return m.fetchPage(req)
}

// moveCursor moves the selection and arms the load-more debounce near the end of the list.
func (m *searchModel) moveCursor(delta int) tea.Cmd {
	n := m.ctrl.Len()
	if n == 0 {
		return nil
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.refresh()
	return m.armScroll()
}

// armScroll schedules a scrollSettledMsg. Every call supersedes the previous one.
func (m *searchModel) armScroll() tea.Cmd {
	m.scrollSeq++
	if !m.nearEnd() || !m.ctrl.More() || m.ctrl.Loading() {
		return nil
	}
	seq := m.scrollSeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return scrollSettledMsg{seq: seq}
	})
}

// nearEnd reports whether the cursor is within scrollThreshold items of the end.
func (m searchModel) nearEnd() bool {
	n := m.ctrl.Len()
	return n > 0 && m.cursor >= n-scrollThreshold
}

// loadMore requests the next page, if the controller allows it.
func (m *searchModel) loadMore() tea.Cmd {
	req, ok := m.ctrl.LoadMore()
	if !ok {
		return nil
	}
	m.refresh()
	return m.fetchPage(req)
}

// toggleSelected expands or collapses the item under the cursor.
func (m *searchModel) toggleSelected() tea.Cmd {
	it := m.ctrl.Item(m.cursor)
	if it == nil {
		return nil
	}
	req, ok := it.Toggle()
	m.refresh()
	if !ok {
		return nil
	}
	return m.fetchDetail(req)
}

// handlePage applies a page result and clamps the cursor.
func (m *searchModel) handlePage(res search.PageResult) {
	if !m.ctrl.Apply(res) {
		m.logger.Debug("discarded stale page",
			slog.String("query", res.Request.Query), slog.Int("page", res.Request.Page))
		return
	}
	if res.Err != nil {
		m.logger.Info("page fetch failed",
			slog.String("query", res.Request.Query),
			slog.Int("page", res.Request.Page),
			slog.String("error", res.Err.Error()))
	}
	if n := m.ctrl.Len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.refresh()
}

// busy reports whether any fetch is in flight.
func (m searchModel) busy() bool {
	if m.ctrl.Loading() {
		return true
	}
	for _, it := range m.ctrl.Items() {
		if it.State() == search.DetailLoading {
			return true
		}
	}
	return false
}

// refresh re-renders the list into the viewport and keeps the cursor visible.
func (m *searchModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.Height = max(m.height-lipgloss.Height(m.chrome()), 1)

	content, top, bottom := m.renderList()
	m.viewport.SetContent(content)
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

// View renders the search box, error banner, result list, status line and help.
func (m searchModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

// chrome is everything except the list, used to size the viewport.
func (m searchModel) chrome() string {
	return m.header() + "\n" + m.footer()
}

func (m searchModel) header() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("5")).
		Render("MovieScout")

	out := title + "\n" + m.textinput.View()
	if msg := m.ctrl.ErrorMessage(); msg != "" {
		out += "\n" + styleError.Render(msg)
		if remote, ok := core.RemoteMessage(m.ctrl.Err()); ok {
			out += styleDim.Render(" (" + remote + ")")
		}
	}
	return out
}

func (m searchModel) footer() string {
	status := m.ctrl.StatusLine()
	if m.ctrl.Loading() {
		status = m.spinner.View() + styleDim.Render(" "+status)
	} else if status != "" {
		status = styleDim.Render(status)
	}
	if n := m.ctrl.Len(); n > 0 {
		count := styleDim.Render(fmt.Sprintf("%d of %d", n, m.ctrl.TotalResults()))
		if status != "" {
			status = count + styleDim.Render(" · ") + status
		} else {
			status = count
		}
	}
	return status + "\n" + m.help.View(m.keys)
}

// renderList formats the items and returns the line span of the selected one.
func (m searchModel) renderList() (content string, top, bottom int) {
	var sb strings.Builder
	line := 0
	for i, it := range m.ctrl.Items() {
		block := m.renderItem(i, it)
		h := lipgloss.Height(block)
		if i == m.cursor {
			top, bottom = line, line+h-1
		}
		sb.WriteString(block)
		sb.WriteString("\n")
		line += h
	}
	return strings.TrimSuffix(sb.String(), "\n"), top, bottom
}

func (m searchModel) renderItem(i int, it *search.Item) string {
	s := it.Summary()
	line := styleTitle.Render("  " + s.Title)
	if i == m.cursor {
		line = styleSelected.Render("> " + s.Title)
	}
	if s.Year != "" {
		line += styleDim.Render(" (" + s.Year + ")")
	}
	if s.Type != "" && s.Type != "movie" {
		line += styleDim.Render(" · " + s.Type)
	}

	switch it.State() {
	case search.DetailCollapsed:
		return line
	case search.DetailLoading:
		return line + "\n    " + m.spinner.View() + styleDim.Render(" "+search.MsgLoading)
	case search.DetailFailed:
		out := line + "\n    " + styleError.Render(it.ErrorMessage())
		if remote, ok := core.RemoteMessage(it.Err()); ok {
			out += styleDim.Render(" (" + remote + ")")
		}
		return out
	}
	return line + "\n" + m.renderDetail(it.Detail())
}

// renderDetail formats the expanded fields; empty values show as N/A.
func (m searchModel) renderDetail(d *core.MovieDetail) string {
	width := max(m.width-4-lipgloss.Width(styleLabel.Render("")), 20)
	body := lipgloss.NewStyle().Width(width)

	rows := []struct{ label, value string }{
		{"Year", d.Year},
		{"Genre", d.Genre},
		{"Director", d.Director},
		{"Plot", d.Plot},
	}
	if d.Poster != "" {
		rows = append(rows, struct{ label, value string }{"Poster", d.Poster})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		v := r.value
		if v == "" {
			v = search.MsgNotAvailable
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			"    ", styleLabel.Render(r.label), body.Render(v)))
	}
	return strings.Join(lines, "\n")
}

// fetchPage returns a command that runs the page request off the event loop.
func (m searchModel) fetchPage(req search.PageRequest) tea.Cmd {
	return func() tea.Msg {
		return pageResultMsg{result: req.Run(m.ctx, m.svc)}
	}
}

// fetchDetail returns a command that runs the detail request off the event loop.
func (m searchModel) fetchDetail(req search.DetailRequest) tea.Cmd {
	return func() tea.Msg {
		return detailResultMsg{result: req.Run(m.ctx, m.svc)}
	}
}
