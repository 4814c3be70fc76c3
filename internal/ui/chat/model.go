// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/events"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/storage"
	"github.com/jeranaias/zen-tui/internal/ui/components"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// followThreshold is how close to the bottom (in lines) the viewport must be
// to keep following new output.
const followThreshold = 2

// =============================================================================
// COLLABORATORS
// =============================================================================

// Publisher receives the dock's preview document.
type Publisher interface {
	Publish(doc string)
	URL() string
}

// HistoryStore lists and loads saved chats.
type HistoryStore interface {
	List() ([]storage.ConversationMeta, error)
	Load(id string) (*storage.StoredConversation, error)
}

// Options configures the chat model.
type Options struct {
	Manager *session.Manager
	Dock    *artifact.Dock
	Theme   *styles.Theme
	Toasts  *components.ToastManager

	// Channel streams answers. Nil reports an error on submit.
	Channel session.Channel
	// Timeout bounds one answer; zero means no limit.
	Timeout time.Duration

	// Preview, when set, receives every new dock document.
	Preview Publisher
	// OpenBrowser opens the preview when the dock opens.
	OpenBrowser bool

	History       HistoryStore
	HistoryEvents <-chan events.HistoryEvent

	// Open hands a URL to the system browser.
	Open func(target string) error

	ExportDir   string
	ShowMetrics bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen. It is used through a pointer so the stream runner
// and the program share one instance.
type Model struct {
	opts  Options
	mgr   *session.Manager
	dock  *artifact.Dock
	theme *styles.Theme

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	palette  *components.Palette
	md       *components.MarkdownRenderer
	toasts   *components.ToastManager
	runner   *StreamRunner

	width  int
	height int
	ready  bool

	// follow keeps the viewport pinned to the bottom.
	follow bool
	// offsets maps message IDs to their first line in the viewport content.
	offsets map[string]int

	// chip is the highlighted suggestion, -1 for none.
	chip int

	// Message selection mode.
	selecting bool
	cursor    int
	editingID string

	// buildHint is the dock hint for the reply being streamed.
	buildHint bool
	// publishedRevision is the last dock revision sent to the preview.
	publishedRevision int
	dockOffset        int

	showHelp    bool
	toastTicker bool
	quitting    bool
}

// New creates the chat model.
func New(opts Options) *Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Toasts == nil {
		opts.Toasts = components.NewToastManager()
	}
	if opts.Dock == nil {
		opts.Dock = artifact.NewDock()
	}
	if opts.Manager == nil {
		opts.Manager = session.NewManager(session.Options{Notifier: opts.Toasts})
	}
	if opts.Open == nil {
		opts.Open = func(string) error { return nil }
	}

	ti := textinput.New()
	ti.Placeholder = "Ask anything, or describe something to build..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	h := help.New()
	h.ShowAll = true

	return &Model{
		opts:     opts,
		mgr:      opts.Manager,
		dock:     opts.Dock,
		theme:    opts.Theme,
		keys:     DefaultKeyMap(),
		help:     h,
		input:    ti,
		spinner:  sp,
		palette:  components.NewPalette(opts.Theme),
		md:       components.NewMarkdownRenderer(opts.Theme.GlamourStyle()),
		toasts:   opts.Toasts,
		runner:   NewStreamRunner(opts.Channel, opts.Timeout),
		follow:   true,
		chip:     -1,
		offsets:  make(map[string]int),
		viewport: viewport.New(80, 20),
	}
}

// SetProgram attaches the running program so streams can post messages.
func (m *Model) SetProgram(s Sender) {
	m.runner.SetSender(s)
}

// Manager returns the session manager.
func (m *Model) Manager() *session.Manager { return m.mgr }

// Dock returns the artifact dock.
func (m *Model) Dock() *artifact.Dock { return m.dock }

// Input returns the current input text.
func (m *Model) Input() string { return m.input.Value() }

// SetInput replaces the input text.
func (m *Model) SetInput(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}

// Init starts the spinner and the history subscription.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if cmd := m.waitForHistory(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.mgr.Conversation().Len() > 0 {
		m.refresh()
	}
	return tea.Batch(cmds...)
}

// waitForHistory turns the next history event into a message.
func (m *Model) waitForHistory() tea.Cmd {
	ch := m.opts.HistoryEvents
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return HistoryUpdatedMsg{ChatID: evt.ChatID}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// dockBeside reports whether the dock shares the row with the conversation.
func (m *Model) dockBeside() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

// conversationWidth is the width available to messages.
func (m *Model) conversationWidth() int {
	if m.dock.IsOpen() && m.dockBeside() {
		return m.width * 55 / 100
	}
	return m.width
}

// bodyHeight is the height shared by the conversation and the dock.
func (m *Model) bodyHeight() int {
	used := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	if chips := m.renderChips(); chips != "" {
		used += lipgloss.Height(chips)
	}
	if m.opts.ShowMetrics {
		used++
	}
	h := m.height - used
	if h < 3 {
		h = 3
	}
	return h
}

// dockHeight is the dock height in the stacked layout.
func (m *Model) dockHeight() int {
	if m.dockBeside() {
		return m.bodyHeight()
	}
	return m.bodyHeight() / 2
}

// layout sizes the viewport and input for the current state.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	body := m.bodyHeight()
	vpHeight := body
	if m.dock.IsOpen() && !m.dockBeside() {
		vpHeight = body - m.dockHeight()
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.conversationWidth()
	m.viewport.Height = vpHeight
	m.input.Width = m.width - 8
	m.palette.SetWidth(m.width * 2 / 3)
	m.help.Width = m.width
}

// refresh re-renders the conversation into the viewport and applies the
// scroll rules: a new user section scrolls into view, otherwise the view
// follows the bottom while it is near it.
func (m *Model) refresh() {
	m.layout()
	atBottom := m.nearBottom()
	m.viewport.SetContent(m.renderConversation())

	if id, ok := m.mgr.TakeScrollTarget(); ok {
		if off, found := m.offsets[id]; found {
			m.viewport.SetYOffset(off)
			m.follow = true
			return
		}
	}
	if m.selecting {
		if msgs := m.mgr.Messages(); m.cursor < len(msgs) {
			m.scrollToMessage(msgs[m.cursor].ID)
		}
		return
	}
	if m.follow || atBottom {
		m.viewport.GotoBottom()
		m.follow = true
	}
}

// nearBottom reports whether the viewport is within followThreshold lines of
// the end of its content.
func (m *Model) nearBottom() bool {
	below := m.viewport.TotalLineCount() - (m.viewport.YOffset + m.viewport.Height)
	return below <= followThreshold
}

// scrollToMessage keeps message id in view.
func (m *Model) scrollToMessage(id string) {
	off, ok := m.offsets[id]
	if !ok {
		return
	}
	if off < m.viewport.YOffset || off >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off)
	}
}
