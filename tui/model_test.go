package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/dataset/datasettest"
	"github.com/Khayman1/titanic-streamlit/views"
)

func newModel(t *testing.T, cache *dataset.Cache) Model {
	t.Helper()
	if cache == nil {
		cache = datasettest.NewCache()
	}
	data := views.NewData(cache, zaptest.NewLogger(t))
	data.Classifier.Trees = 5
	return NewModel(context.Background(), data, Options{Style: "notty", Logger: zaptest.NewLogger(t)})
}

// step applies msg and runs the resulting command once, feeding its
// message back like the bubbletea runtime would.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitRendersHome(t *testing.T) {
	m := newModel(t, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	msg := m.Init()()
	next, _ := m.Update(msg)
	m = next.(Model)

	require.NoError(t, m.err)
	assert.Equal(t, views.Home, m.Active())
	assert.Contains(t, m.View(), "타이타닉 생존자 대시보드")
}

func TestNavigation(t *testing.T) {
	m := newModel(t, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 160, Height: 200})
	m = step(t, m, key("right"))
	assert.Equal(t, views.Passengers, m.Active())

	m = step(t, m, key("left"))
	m = step(t, m, key("left"))
	assert.Equal(t, views.Download, m.Active(), "navigation wraps")

	m = step(t, m, key("4"))
	assert.Equal(t, views.Search, m.Active())
	assert.Contains(t, m.View(), "검색 결과")
}

func TestTabCyclesOnlyOnPassengers(t *testing.T) {
	m := newModel(t, nil)
	m = step(t, m, key("t"))
	assert.Equal(t, views.Distribution, m.Tab())

	m = step(t, m, key("2"))
	m = step(t, m, key("t"))
	assert.Equal(t, views.EmbarkFare, m.Tab())
	assert.Contains(t, m.View(), views.EmbarkFare.Label())
}

func TestStalePagesAreDropped(t *testing.T) {
	m := newModel(t, nil)
	next, _ := m.Update(pageMsg{kind: views.Survival, content: "stale"})
	m = next.(Model)
	assert.False(t, m.ready)
}

func TestErrorsAreShown(t *testing.T) {
	fsys := datasettest.FS()
	delete(fsys, "test.csv")
	m := newModel(t, dataset.NewCache(fsys, dataset.DefaultFiles()))

	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "resource unavailable")

	m = step(t, m, key("2"))
	assert.NoError(t, m.err)
}

func TestQuit(t *testing.T) {
	m := newModel(t, nil)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
