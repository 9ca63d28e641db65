package face

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tactical-os/tos/pkg/models"
	"github.com/tactical-os/tos/tui/keymap"
	"github.com/tactical-os/tos/tui/theme"
)

// Backend is the brain as seen by the interactive face.
type Backend interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Dispatch(ctx context.Context, request string) (string, error)
}

type snapshotMsg struct {
	snap *models.Snapshot
	err  error
}

type responseMsg struct {
	request  string
	response string
	err      error
}

type tickMsg time.Time

// Model is the bubbletea model for `tos face --tui`.
type Model struct {
	backend  Backend
	theme    *theme.Theme
	interval time.Duration
	timeout  time.Duration

	keys     keymap.Face
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	snap    *models.Snapshot
	status  string
	failed  bool
	history []string
}

// NewModel creates the interactive face. interval is the refresh cadence.
func NewModel(backend Backend, interval time.Duration, th *theme.Theme) Model {
	if th == nil {
		th = theme.DefaultTheme
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	ti := textinput.New()
	ti.Placeholder = "command (help for list)"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Focus()

	return Model{
		backend:  backend,
		theme:    th,
		interval: interval,
		timeout:  5 * time.Second,
		keys:     keymap.DefaultFace(),
		help:     help.New(),
		input:    ti,
		viewport: viewport.New(80, 20),
	}
}

// WithKeys replaces the key bindings.
func (m Model) WithKeys(km keymap.Face) Model {
	m.keys = km
	return m
}

// Init starts the first refresh and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refresh(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refresh() tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := backend.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) dispatch(request string) tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := backend.Dispatch(ctx, request)
		return responseMsg{request: request, response: resp, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// header, status and input lines
		m.viewport.Width = msg.Width - 1
		m.viewport.Height = max(1, msg.Height-4)
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-4)
		m.ready = true
		m.setContent()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ZoomIn):
			return m, m.dispatch("zoom in")
		case key.Matches(msg, m.keys.ZoomOut):
			return m, m.dispatch("zoom out")
		case key.Matches(msg, m.keys.Bezel):
			return m, m.dispatch("bezel")
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			request := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if request == "" {
				return m, nil
			}
			if request == "quit" || request == "exit" {
				return m, tea.Quit
			}
			m.history = append(m.history, request)
			return m, m.dispatch(request)
		case key.Matches(msg, m.keys.ScrollUp):
			m.viewport.HalfPageUp()
			return m, nil
		case key.Matches(msg, m.keys.ScrollDown):
			m.viewport.HalfPageDown()
			return m, nil
		}

	case snapshotMsg:
		if msg.err != nil {
			m.status, m.failed = fmt.Sprintf("brain unavailable: %v", msg.err), true
		} else {
			m.snap = msg.snap
			m.setContent()
		}
		return m, nil

	case responseMsg:
		switch {
		case msg.err != nil:
			m.status, m.failed = msg.err.Error(), true
		default:
			m.status = msg.response
			m.failed = strings.HasPrefix(msg.response, "Error: ")
		}
		return m, m.refresh()

	case tickMsg:
		return m, tea.Batch(m.refresh(), m.tick())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) setContent() {
	if m.snap == nil {
		m.viewport.SetContent(m.theme.Muted.Render("waiting for brain..."))
		return
	}
	m.viewport.SetContent(View(*m.snap, m.theme, m.viewport.Width))
}

// View renders the face, status line and prompt.
func (m Model) View() string {
	header := m.theme.Header.Render("TACTICAL OS // FACE")
	if m.snap != nil {
		header += m.theme.Muted.Render(fmt.Sprintf("  viewport %d  uptime %d", m.snap.ActiveViewport, m.snap.Uptime))
	}

	body := m.viewport.View()
	if m.ready {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, strings.Join(m.scrollbar(), "\n"))
	}

	status := m.theme.Muted.Render(m.status)
	if m.failed {
		status = m.theme.Error.Render(m.status)
	} else if m.status != "" {
		status = m.theme.Success.Render(m.status)
	}

	return strings.Join([]string{header, body, status, m.input.View(), m.help.View(m.keys)}, "\n")
}

// scrollbar draws a thumb proportional to the visible share of the content.
func (m Model) scrollbar() []string {
	height := m.viewport.Height
	bar := make([]string, height)
	total := m.viewport.TotalLineCount()
	if total <= height {
		for i := range bar {
			bar[i] = " "
		}
		return bar
	}

	thumb := max(1, height*height/total)
	start := int(float64(height-thumb)*m.viewport.ScrollPercent() + 0.5)
	for i := range bar {
		if i >= start && i < start+thumb {
			bar[i] = m.theme.Muted.Render("█")
		} else {
			bar[i] = m.theme.Muted.Render("░")
		}
	}
	return bar
}

// History returns the requests entered this session.
func (m Model) History() []string {
	return m.history
}
