package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

func newQueryCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "query [title]",
		Short: "Print one page of search results",
		Long:  "Search OMDb once and print a single page of results without entering interactive mode.",
		Example: `  moviescout query batman
  moviescout query "the matrix" --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			return runQuery(strings.Join(args, " "), page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "results page to fetch")
	return cmd
}

func runQuery(title string, page int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := interactiveLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := tea.NewProgram(newQueryModel(ctx, newMovieService(cfg, logger), title, page))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	qm, ok := m.(queryModel)
	if !ok {
		return fmt.Errorf("unexpected model type from tea program")
	}
	if qm.err != nil {
		return userError(search.MsgFetchFailed, qm.err)
	}
	return nil
}

// queryResponseMsg carries the search page back to the TUI.
type queryResponseMsg struct {
	page *core.SearchPage
	err  error
}

type queryModel struct {
	ctx     context.Context
	svc     core.MovieService
	title   string
	pageNum int
	spinner spinner.Model
	page    *core.SearchPage
	err     error
	done    bool
}

func newQueryModel(ctx context.Context, svc core.MovieService, title string, page int) queryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return queryModel{
		ctx:     ctx,
		svc:     svc,
		title:   title,
		pageNum: page,
		spinner: s,
	}
}

func (m queryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sendQuery())
}

func (m queryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case queryResponseMsg:
		m.page = msg.page
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m queryModel) View() string {
	if !m.done {
		return m.spinner.View() + styleDim.Render(" "+search.MsgLoading) + "\n"
	}
	if m.err != nil {
		// runQuery reports the failure once the program exits.
		return ""
	}
	return renderPage(m.page, m.pageNum)
}

func (m queryModel) sendQuery() tea.Cmd {
	return func() tea.Msg {
		page, err := m.svc.SearchMovies(m.ctx, m.title, m.pageNum)
		return queryResponseMsg{page: page, err: err}
	}
}

// renderPage formats one page of results with the page position.
func renderPage(page *core.SearchPage, pageNum int) string {
	var sb strings.Builder
	if page == nil || len(page.Results) == 0 {
		sb.WriteString(styleDim.Render("No results on this page.") + "\n")
		return sb.String()
	}
	for _, r := range page.Results {
		sb.WriteString(styleTitle.Render(r.Title))
		if r.Year != "" {
			sb.WriteString(styleDim.Render(" (" + r.Year + ")"))
		}
		sb.WriteString(styleDim.Render("  " + r.ID))
		sb.WriteString("\n")
	}
	sb.WriteString(styleDim.Render(fmt.Sprintf("page %d of %d · %d results",
		pageNum, page.TotalPages(), page.TotalResults)))
	sb.WriteString("\n")
	return sb.String()
}
