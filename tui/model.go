package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/views"
)

const helpText = "←/→ 화면 전환 · 1-6 바로가기 · t 탭 전환 · r 다시 읽기 · ↑/↓ 스크롤 · q 종료"

// Options configure the terminal dashboard.
type Options struct {
	// Style is a glamour standard style ("dark", "light", "notty"); empty
	// detects the terminal background.
	Style  string
	Logger *zap.Logger
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	ctx    context.Context
	data   *views.Data
	opts   Options
	styles Styles

	kinds  []views.Kind
	active int
	tab    views.Tab

	viewport viewport.Model
	renderer *glamour.TermRenderer
	width    int
	height   int

	loading bool
	err     error
	ready   bool
}

// pageMsg carries a rendered page back to Update.
type pageMsg struct {
	kind    views.Kind
	tab     views.Tab
	content string
	err     error
}

// NewModel returns a model showing the Home view first.
func NewModel(ctx context.Context, data *views.Data, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := Model{
		ctx:      ctx,
		data:     data,
		opts:     opts,
		styles:   DefaultStyles(),
		kinds:    views.Kinds(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.renderer = m.newRenderer(80)
	return m
}

func (m Model) newRenderer(width int) *glamour.TermRenderer {
	style := glamour.WithAutoStyle()
	if m.opts.Style != "" {
		style = glamour.WithStandardStyle(m.opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(width-4, 20)))
	if err != nil {
		m.opts.Logger.Warn("glamour renderer unavailable, showing raw markdown", zap.Error(err))
		return nil
	}
	return r
}

// Active returns the view on screen.
func (m Model) Active() views.Kind { return m.kinds[m.active] }

// Tab returns the selected Passengers tab.
func (m Model) Tab() views.Tab { return m.tab }

// Init renders the first view.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// load renders the active view off the update loop.
func (m Model) load() tea.Cmd {
	kind, tab := m.Active(), m.tab
	ctx, data, renderer := m.ctx, m.data, m.renderer
	return func() tea.Msg {
		var v views.View = views.PassengersView{Tab: tab}
		if kind != views.Passengers {
			var err error
			if v, err = views.New(kind); err != nil {
				return pageMsg{kind: kind, tab: tab, err: err}
			}
		}
		page, err := v.Render(ctx, data)
		if err != nil {
			return pageMsg{kind: kind, tab: tab, err: err}
		}
		md := views.Markdown(page)
		if renderer == nil {
			return pageMsg{kind: kind, tab: tab, content: md}
		}
		out, err := renderer.Render(md)
		if err != nil {
			return pageMsg{kind: kind, tab: tab, content: md}
		}
		return pageMsg{kind: kind, tab: tab, content: out}
	}
}

func (m Model) switchTo(i int) (Model, tea.Cmd) {
	n := len(m.kinds)
	m.active = ((i % n) + n) % n
	m.loading = true
	m.err = nil
	return m, m.load()
}

// Update handles keys, resizes and rendered pages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1) // tabs + help
		m.renderer = m.newRenderer(msg.Width)
		if m.ready {
			return m, m.load()
		}
		return m, nil

	case pageMsg:
		if msg.kind != m.Active() || (msg.kind == views.Passengers && msg.tab != m.tab) {
			return m, nil // stale
		}
		m.loading = false
		m.ready = true
		m.err = msg.err
		if msg.err != nil {
			m.opts.Logger.Warn("view failed", zap.String("view", msg.kind.Slug()), zap.Error(msg.err))
			m.viewport.SetContent("")
			return m, nil
		}
		m.viewport.SetContent(msg.content)
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			return m.switchTo(m.active + 1)
		case "left", "h", "shift+tab":
			return m.switchTo(m.active - 1)
		case "1", "2", "3", "4", "5", "6":
			return m.switchTo(int(key[0] - '1'))
		case "t":
			if m.Active() != views.Passengers {
				return m, nil
			}
			tabs := views.Tabs()
			m.tab = tabs[(int(m.tab)+1)%len(tabs)]
			m.loading = true
			return m, m.load()
		case "r":
			m.data.Cache.InvalidateAll()
			m.loading = true
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View draws the tab bar, the page and the help line.
func (m Model) View() string {
	tabs := make([]string, len(m.kinds))
	for i, k := range m.kinds {
		label := fmt.Sprintf("%d %s %s", i+1, k.Icon(), k.Label())
		if i == m.active {
			tabs[i] = m.styles.ActiveTab.Render(label)
		} else {
			tabs[i] = m.styles.Tab.Render(label)
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	if m.Active() == views.Passengers {
		header = lipgloss.JoinVertical(lipgloss.Left, header, m.styles.Status.Render("탭: "+m.tab.Label()))
	}

	var body string
	switch {
	case m.err != nil:
		body = m.styles.Error.Render("⚠️ " + m.err.Error())
	case m.loading || !m.ready:
		body = m.styles.Status.Render("불러오는 중…")
	default:
		body = m.viewport.View()
	}

	return strings.Join([]string{header, body, m.styles.Help.Render(helpText)}, "\n")
}

// Run starts the terminal dashboard and blocks until the user quits or ctx
// is done.
func Run(ctx context.Context, data *views.Data, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, data, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal dashboard: %w", err)
	}
	return nil
}
