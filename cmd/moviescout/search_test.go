package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

// fakeService serves 12 results for any query (10 on page 1, 2 on page 2) and
// records every call.
type fakeService struct {
	searchErr   error
	detailErr   error
	searchCalls []string
	detailCalls []string
}

func newFakeService() *fakeService { return &fakeService{} }

func (f *fakeService) SearchMovies(_ context.Context, query string, page int) (*core.SearchPage, error) {
	f.searchCalls = append(f.searchCalls, fmt.Sprintf("%s:%d", query, page))
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	first, n := 1, 10
	if page == 2 {
		first, n = 11, 2
	}
	results := make([]core.MovieSummary, n)
	for i := range n {
		results[i] = core.MovieSummary{
			ID:    fmt.Sprintf("tt%07d", first+i),
			Title: fmt.Sprintf("Movie %d", first+i),
			Year:  "2005",
			Type:  "movie",
		}
	}
	return &core.SearchPage{Results: results, TotalResults: 12}, nil
}

func (f *fakeService) GetMovie(_ context.Context, id string) (*core.MovieDetail, error) {
	f.detailCalls = append(f.detailCalls, id)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return &core.MovieDetail{ID: id, Title: "Movie", Year: "2005", Director: "Christopher Nolan"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m searchModel, msg tea.Msg) (searchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(searchModel)
	require.True(t, ok, "Update should return a searchModel")
	return sm, cmd
}

// loadedModel returns a sized model showing the first page of "bat".
func loadedModel(t *testing.T, svc *fakeService) searchModel {
	t.Helper()
	m := newSearchModel(context.Background(), svc, "bat", time.Millisecond, testLogger())
	require.NotNil(t, m.pending, "an initial query should issue a request")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	m, _ = update(t, m, m.fetchPage(*m.pending)())
	require.Equal(t, 10, m.ctrl.Len())
	return m
}

func TestSearchModel_InitialState(t *testing.T) {
	m := newSearchModel(context.Background(), newFakeService(), "", time.Millisecond, testLogger())

	assert.Nil(t, m.pending)
	assert.True(t, m.ctrl.Idle())
	assert.NotNil(t, m.Init())
	assert.Equal(t, "Initializing...", m.View())
}

func TestSearchModel_TypingSearchesAtThreeCharacters(t *testing.T) {
	svc := newFakeService()
	m := newSearchModel(context.Background(), svc, "", time.Millisecond, testLogger())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	m, _ = update(t, m, keyRunes("b"))
	m, _ = update(t, m, keyRunes("a"))
	assert.False(t, m.ctrl.Loading())
	assert.Contains(t, m.View(), search.MsgPrompt)

	m, cmd := update(t, m, keyRunes("t"))
	assert.NotNil(t, cmd)
	assert.True(t, m.ctrl.Loading())
	assert.Equal(t, "bat", m.ctrl.Query())
	assert.Contains(t, m.View(), search.MsgLoading)
}

func TestSearchModel_ShowsResults(t *testing.T) {
	m := loadedModel(t, newFakeService())

	view := m.View()
	assert.Contains(t, view, "Movie 1")
	assert.Contains(t, view, "10 of 12")
	assert.Contains(t, view, "> Movie 1")
}

func TestSearchModel_LoadMoreKey(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.Loading())
	assert.Contains(t, m.View(), search.MsgLoadingMore)

	m, _ = update(t, m, cmd())
	assert.Equal(t, 12, m.ctrl.Len())
	assert.False(t, m.ctrl.More())
	assert.Contains(t, m.View(), search.MsgNoMore)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Nil(t, cmd, "no request once every page is loaded")
	assert.Equal(t, []string{"bat:1", "bat:2"}, svc.searchCalls)
}

func TestSearchModel_ScrollNearEndLoadsMore(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	var cmd tea.Cmd
	for range 6 {
		m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
		assert.Nil(t, cmd, "far from the end nothing is scheduled")
	}
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.NotNil(t, cmd, "the cursor is within reach of the end")
	assert.Equal(t, 7, m.cursor)
	settled := scrollSettledMsg{seq: m.scrollSeq}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd = update(t, m, settled)
	assert.Nil(t, cmd, "a superseded scroll signal is ignored")
	assert.False(t, m.ctrl.Loading())

	m, cmd = update(t, m, scrollSettledMsg{seq: m.scrollSeq})
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.Loading())

	m, _ = update(t, m, cmd())
	assert.Equal(t, 12, m.ctrl.Len())
	assert.Equal(t, []string{"bat:1", "bat:2"}, svc.searchCalls)
}

func TestSearchModel_ScrollSignalAfterQueryChangeIgnored(t *testing.T) {
	m := loadedModel(t, newFakeService())
	for range 8 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	settled := scrollSettledMsg{seq: m.scrollSeq}

	m, _ = update(t, m, keyRunes("m"))
	assert.Zero(t, m.cursor)
	_, cmd := update(t, m, settled)
	assert.Nil(t, cmd)
}

func TestSearchModel_ExpandDetails(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, search.DetailLoading, m.ctrl.Item(1).State())

	m, _ = update(t, m, cmd())
	assert.Equal(t, search.DetailLoaded, m.ctrl.Item(1).State())
	view := m.View()
	assert.Contains(t, view, "Christopher Nolan")
	assert.Contains(t, view, search.MsgNotAvailable, "empty fields show N/A")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.NotContains(t, m.View(), "Christopher Nolan")

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "loaded details are never fetched again")
	assert.Equal(t, []string{"tt0000002"}, svc.detailCalls)
}

func TestSearchModel_DetailFailure(t *testing.T) {
	svc := newFakeService()
	svc.detailErr = &core.TransportError{Op: "get movie", Err: fmt.Errorf("timeout")}
	m := loadedModel(t, svc)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, search.DetailFailed, m.ctrl.Item(0).State())
	assert.Contains(t, m.View(), search.MsgDetailFailed)
}

func TestSearchModel_SearchFailureAndRetry(t *testing.T) {
	svc := newFakeService()
	svc.searchErr = &core.RemoteQueryError{Message: "Too many results."}
	m := newSearchModel(context.Background(), svc, "bat", time.Millisecond, testLogger())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	m, _ = update(t, m, m.fetchPage(*m.pending)())

	view := m.View()
	assert.Contains(t, view, search.MsgFetchFailed)
	assert.Contains(t, view, "Too many results.")

	svc.searchErr = nil
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, 10, m.ctrl.Len())
	assert.NotContains(t, m.View(), search.MsgFetchFailed)
}

func TestSearchModel_StalePageIgnored(t *testing.T) {
	svc := newFakeService()
	m := newSearchModel(context.Background(), svc, "bat", time.Millisecond, testLogger())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	stale := m.fetchPage(*m.pending)()

	m, _ = update(t, m, keyRunes("m"))
	m, _ = update(t, m, stale)

	assert.Zero(t, m.ctrl.Len(), "results for the previous query must not appear")
	assert.True(t, m.ctrl.Loading())
}

func TestSearchModel_HelpToggle(t *testing.T) {
	m := loadedModel(t, newFakeService())
	assert.False(t, m.help.ShowAll)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "retry")
}

func TestSearchModel_QuitClosesSession(t *testing.T) {
	m := loadedModel(t, newFakeService())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Zero(t, m.ctrl.Len())
}

func TestSearchModel_CursorStaysVisible(t *testing.T) {
	m := loadedModel(t, newFakeService())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 8})

	for range 9 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.True(t, strings.Contains(m.viewport.View(), "> Movie 10"),
		"the selected item should be scrolled into view:\n%s", m.viewport.View())
}
