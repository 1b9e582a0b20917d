package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/watplay/highlight"
	"github.com/wippyai/watplay/playground"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	dimTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("#7D56F4"))
)

type pane int

const (
	paneWAT pane = iota
	paneHost
	paneAST
	paneConsole
	paneCount
)

var paneTitles = [paneCount]string{
	paneWAT:     "WAT",
	paneHost:    "Host (Starlark)",
	paneAST:     "Module",
	paneConsole: "Console",
}

type keyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Rerun key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Rerun, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	Prev:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
	Rerun: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run again")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// refreshMsg asks the view to re-read the playground panes.
type refreshMsg struct{}

type evaluatedMsg struct {
	res *playground.Result
}

type interactiveModel struct {
	pg      *playground.Playground
	status  string
	last    playground.SourcePair
	help    help.Model
	watEd   textarea.Model
	hostEd  textarea.Model
	astView viewport.Model
	conView viewport.Model
	focus   pane
	width   int
	height  int
	// ready is set once every pane has a size; the first evaluation waits
	// for it.
	ready bool
}

func newEditor(value string) textarea.Model {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.SetValue(value)
	return ta
}

func newInteractiveModel(pg *playground.Playground, src playground.SourcePair) *interactiveModel {
	m := &interactiveModel{
		pg:      pg,
		help:    help.New(),
		watEd:   newEditor(src.WAT),
		hostEd:  newEditor(src.Host),
		astView: viewport.New(0, 0),
		conView: viewport.New(0, 0),
		focus:   paneWAT,
	}
	m.watEd.Focus()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *interactiveModel) sources() playground.SourcePair {
	return playground.SourcePair{WAT: m.watEd.Value(), Host: m.hostEd.Value()}
}

// evaluate runs the pipeline off the UI goroutine. Pane updates arrive as
// refreshMsg through the playground's change callback.
func (m *interactiveModel) evaluate() tea.Cmd {
	src := m.sources()
	m.last = src
	pg := m.pg
	return func() tea.Msg {
		return evaluatedMsg{res: pg.Trigger(context.Background(), src)}
	}
}

func (m *interactiveModel) setFocus(p pane) {
	m.watEd.Blur()
	m.hostEd.Blur()
	m.focus = (p + paneCount) % paneCount
	switch m.focus {
	case paneWAT:
		m.watEd.Focus()
	case paneHost:
		m.hostEd.Focus()
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if !m.ready {
			m.ready = true
			return m, m.evaluate()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(msg, keys.Prev):
			m.setFocus(m.focus - 1)
			return m, nil
		case key.Matches(msg, keys.Rerun):
			return m, m.evaluate()
		}

	case refreshMsg:
		m.refresh()
		return m, nil

	case evaluatedMsg:
		// a superseded run finishing late must not touch the panes
		if msg.res.Token == m.pg.Transcript().Current() {
			m.status = msg.res.State.String()
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case paneWAT:
		m.watEd, cmd = m.watEd.Update(msg)
	case paneHost:
		m.hostEd, cmd = m.hostEd.Update(msg)
	case paneAST:
		m.astView, cmd = m.astView.Update(msg)
	case paneConsole:
		m.conView, cmd = m.conView.Update(msg)
	}

	if m.ready && m.sources() != m.last {
		return m, tea.Batch(cmd, m.evaluate())
	}
	return m, cmd
}

func (m *interactiveModel) refresh() {
	m.astView.SetContent(m.pg.AST())
	m.conView.SetContent(strings.Join(m.pg.Console(), "\n"))
	m.conView.GotoBottom()
}

// layout sizes the 2x2 grid. Each pane loses two rows and columns to its
// border and one row to its title.
func (m *interactiveModel) layout() {
	helpHeight := 1
	paneW := m.width / 2
	paneH := (m.height - helpHeight) / 2
	innerW := max(paneW-2, 1)
	innerH := max(paneH-3, 1)

	m.watEd.SetWidth(innerW)
	m.watEd.SetHeight(innerH)
	m.hostEd.SetWidth(innerW)
	m.hostEd.SetHeight(innerH)
	m.astView.Width, m.astView.Height = innerW, innerH
	m.conView.Width, m.conView.Height = innerW, innerH
	m.help.Width = m.width
}

func (m *interactiveModel) renderPane(p pane, body string) string {
	name := paneTitles[p]
	if p == paneConsole && m.status != "" {
		name += " [" + m.status + "]"
	}
	style, title := paneStyle, dimTitleStyle.Render(name)
	if p == m.focus {
		style, title = focusedPaneStyle, titleStyle.Render(name)
	}
	innerW := max(m.width/2-2, 1)
	innerH := max((m.height-1)/2-3, 1)
	body = lipgloss.NewStyle().Width(innerW).Height(innerH).MaxHeight(innerH).MaxWidth(innerW).Render(body)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

func (m *interactiveModel) watBody() string {
	if m.focus == paneWAT {
		return m.watEd.View()
	}
	return highlight.WAT.Render(m.watEd.Value(), highlight.DefaultTheme)
}

func (m *interactiveModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(paneWAT, m.watBody()),
		m.renderPane(paneAST, m.astView.View()))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(paneHost, m.hostEd.View()),
		m.renderPane(paneConsole, m.conView.View()))

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, m.help.View(keys))
}

func runInteractive(cfg playground.Config, src playground.SourcePair) error {
	ctx := context.Background()

	var p *tea.Program
	pg, err := playground.New(ctx, cfg, playground.WithOnChange(func() {
		if p != nil {
			p.Send(refreshMsg{})
		}
	}))
	if err != nil {
		return err
	}
	defer pg.Close(ctx)

	p = tea.NewProgram(newInteractiveModel(pg, src), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
