package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firstdraft-cli/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusChat
	focusSidebar
)

type chatKeys struct {
	Quit    key.Binding
	Send    key.Binding
	Focus   key.Binding
	NewChat key.Binding
	Delete  key.Binding
	Logout  key.Binding
}

func newChatKeys() chatKeys {
	return chatKeys{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
		Send:    key.NewBinding(key.WithKeys("enter")),
		Focus:   key.NewBinding(key.WithKeys("tab")),
		NewChat: key.NewBinding(key.WithKeys("ctrl+n")),
		Delete:  key.NewBinding(key.WithKeys("ctrl+x")),
		Logout:  key.NewBinding(key.WithKeys("ctrl+o")),
	}
}

type sessionsSyncedMsg struct{}
type historyLoadedMsg struct{ sessionID string }
type sendDoneMsg struct{ result app.SendResult }
type uiTickMsg struct{}

// ChatModel is the main screen: session sidebar, chat pane, input box and
// the generation progress block.
type ChatModel struct {
	app   *app.Application
	theme Theme
	keys  chatKeys

	width  int
	height int
	ready  bool

	focus      focusArea
	input      textarea.Model
	chatVP     viewport.Model
	bar        progress.Model
	renderer   *ScriptRenderer
	sidebarSel int
	sidebarOff int

	history    []string
	historyIdx int

	warning   string
	statusMsg string
	loggedOut bool
}

func NewChatModel(application *app.Application) *ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Describe your cinematic vision..."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	t := NewTheme()
	bar := progress.New(progress.WithDefaultGradient())

	m := &ChatModel{
		app:       application,
		theme:     t,
		keys:      newChatKeys(),
		width:     100,
		height:    30,
		focus:     focusInput,
		input:     ta,
		bar:       bar,
		renderer:  NewScriptRenderer(t),
		statusMsg: "Loading your chats...",
	}
	if entries, err := application.Local.LoadPromptHistory(); err == nil {
		m.history = entries
	}
	m.historyIdx = len(m.history)
	return m
}

// LoggedOut reports whether the user chose to sign out before quitting.
func (m *ChatModel) LoggedOut() bool { return m.loggedOut }

func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.syncSessionsCmd())
}

func (m *ChatModel) syncSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		m.app.SyncSessions(context.Background())
		return sessionsSyncedMsg{}
	}
}

func (m *ChatModel) loadHistoryCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		m.app.FetchMessages(context.Background(), sessionID)
		return historyLoadedMsg{sessionID: sessionID}
	}
}

func (m *ChatModel) sendCmd(input string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{result: m.app.Send(context.Background(), input)}
	}
}

func (m *ChatModel) uiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return uiTickMsg{} })
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.ChatW, layout.ChatH)
			m.ready = true
		} else {
			m.chatVP.Width = layout.ChatW
			m.chatVP.Height = layout.ChatH
		}
		m.input.SetWidth(maxInt(10, layout.InputW))
		m.bar.Width = maxInt(10, layout.ChatW-10)
		m.refreshChat()
		return m, nil

	case sessionsSyncedMsg:
		m.statusMsg = "Ready"
		m.refreshChat()
		if id := m.app.Pipeline.Sessions.Current(); id != "" {
			m.app.Pipeline.Messages.SetActive(id)
			return m, m.loadHistoryCmd(id)
		}
		return m, nil

	case historyLoadedMsg:
		m.refreshChat()
		m.chatVP.GotoBottom()
		return m, nil

	case sendDoneMsg:
		m.statusMsg = "Ready"
		m.refreshChat()
		m.chatVP.GotoBottom()
		return m, nil

	case uiTickMsg:
		m.refreshChat()
		if m.app.Pipeline.Busy() {
			return m, m.uiTick()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.teardown()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Logout):
			m.teardown()
			m.app.Logout()
			m.loggedOut = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Focus):
			m.cycleFocus()
			return m, nil

		case key.Matches(msg, m.keys.NewChat):
			m.app.NewChat()
			m.sidebarSel = 0
			m.sidebarOff = 0
			m.warning = ""
			m.refreshChat()
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if m.focus == focusSidebar {
				return m, m.deleteSelected()
			}

		case key.Matches(msg, m.keys.Send):
			if m.focus == focusSidebar {
				return m, m.openSelected()
			}
			if m.focus == focusInput {
				return m, m.onEnter()
			}

		case msg.Type == tea.KeyUp:
			switch m.focus {
			case focusChat:
				m.chatVP.LineUp(1)
			case focusSidebar:
				m.moveSidebar(-1)
			case focusInput:
				m.recallHistory(-1)
			}
			return m, nil
		case msg.Type == tea.KeyDown:
			switch m.focus {
			case focusChat:
				m.chatVP.LineDown(1)
			case focusSidebar:
				m.moveSidebar(1)
			case focusInput:
				m.recallHistory(1)
			}
			return m, nil
		case msg.Type == tea.KeyPgUp:
			m.chatVP.ViewUp()
			return m, nil
		case msg.Type == tea.KeyPgDown:
			m.chatVP.ViewDown()
			return m, nil
		}
	}

	// Keystrokes only reach the pane that has focus; the viewport's own
	// keymap would otherwise scroll while the user types.
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); !isKey || m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if _, isKey := msg.(tea.KeyMsg); !isKey || m.focus == focusChat {
		m.chatVP, cmd = m.chatVP.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *ChatModel) onEnter() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())
	if val == "" {
		return nil
	}

	if rest, ok := strings.CutPrefix(val, "/attach"); ok {
		m.input.Reset()
		m.handleAttach(rest)
		return nil
	}
	if val == "/clear-images" {
		m.input.Reset()
		m.app.Pipeline.Batch.Clear()
		m.warning = ""
		return nil
	}

	if m.app.Pipeline.Busy() {
		// Send stays disabled while a turn is in flight.
		m.warning = "Still writing your script — one moment."
		return nil
	}

	if m.app.Pipeline.Sessions.Current() == "" {
		m.app.NewChat()
	}

	m.input.Reset()
	m.warning = ""
	m.statusMsg = "Generating..."
	m.history = append(m.history, val)
	m.historyIdx = len(m.history)
	_ = m.app.Local.SavePromptHistory(m.history)

	m.refreshChat()
	m.chatVP.GotoBottom()
	return tea.Batch(m.sendCmd(val), m.uiTick())
}

func (m *ChatModel) handleAttach(args string) {
	atts, bad := parseAttachArgs(args)
	if len(bad) > 0 {
		m.warning = "Not an image file: " + strings.Join(bad, ", ")
		return
	}
	if len(atts) == 0 {
		m.warning = "Usage: /attach <image> [image]"
		return
	}
	if err := m.app.Pipeline.Batch.AddAll(atts); err != nil {
		m.warning = err.Error()
		return
	}
	m.warning = ""
}

func (m *ChatModel) openSelected() tea.Cmd {
	sessions := m.app.Pipeline.Sessions.List()
	if m.sidebarSel < 0 || m.sidebarSel >= len(sessions) {
		return nil
	}
	id := sessions[m.sidebarSel].SessionID
	// Move the live pointer synchronously so a slower fetch for the previous
	// selection resolves against the new pointer and gets discarded.
	m.app.Pipeline.Sessions.Select(id)
	m.app.Pipeline.Messages.SetActive(id)
	m.refreshChat()
	return m.loadHistoryCmd(id)
}

func (m *ChatModel) deleteSelected() tea.Cmd {
	sessions := m.app.Pipeline.Sessions.List()
	if m.sidebarSel < 0 || m.sidebarSel >= len(sessions) {
		return nil
	}
	deleted := sessions[m.sidebarSel].SessionID
	wasCurrent := deleted == m.app.Pipeline.Sessions.Current()
	m.app.Pipeline.Sessions.Delete(deleted)
	if m.sidebarSel > 0 {
		m.sidebarSel--
	}

	if !wasCurrent {
		return nil
	}
	next := m.app.Pipeline.Sessions.Current()
	m.app.Pipeline.Messages.SetActive(next)
	m.refreshChat()
	if next == "" {
		return nil
	}
	return m.loadHistoryCmd(next)
}

func (m *ChatModel) moveSidebar(delta int) {
	n := m.app.Pipeline.Sessions.Len()
	if n == 0 {
		return
	}
	m.sidebarSel += delta
	if m.sidebarSel < 0 {
		m.sidebarSel = 0
	}
	if m.sidebarSel >= n {
		m.sidebarSel = n - 1
	}
	visible := m.computeLayout().SidebarListH
	if m.sidebarSel < m.sidebarOff {
		m.sidebarOff = m.sidebarSel
	}
	if m.sidebarSel >= m.sidebarOff+visible {
		m.sidebarOff = m.sidebarSel - visible + 1
	}
}

func (m *ChatModel) recallHistory(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.historyIdx += delta
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx >= len(m.history) {
		m.historyIdx = len(m.history)
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[m.historyIdx])
	m.input.CursorEnd()
}

func (m *ChatModel) cycleFocus() {
	m.focus++
	if m.focus > focusSidebar {
		m.focus = focusInput
	}
	if m.focus == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *ChatModel) teardown() {
	m.app.Pipeline.Batch.Clear()
	m.app.Pipeline.Progress.Idle()
	_ = m.app.Local.SavePromptHistory(m.history)
}

type chatLayout struct {
	SidebarW     int
	SidebarListH int
	ChatW        int
	ChatH        int
	InputW       int
}

func (m *ChatModel) computeLayout() chatLayout {
	top, foot, inputH := 1, 1, 3
	mainH := m.height - top - foot - inputH
	if mainH < 3 {
		mainH = 3
	}

	sidebarW := 0
	chatW := m.width
	if m.width >= 80 {
		sidebarW = m.width / 4
		if sidebarW < 24 {
			sidebarW = 24
		}
		chatW = m.width - sidebarW - 1
	}
	return chatLayout{
		SidebarW:     sidebarW,
		SidebarListH: maxInt(1, mainH-3),
		ChatW:        chatW,
		ChatH:        mainH,
		InputW:       chatW - 4,
	}
}

func (m *ChatModel) View() string {
	if !m.ready {
		return "…"
	}
	layout := m.computeLayout()
	top := m.renderTopBar()
	main := m.renderMain(layout)
	input := m.renderInputArea(layout)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, main, input, footer)
}

func (m *ChatModel) renderTopBar() string {
	left := m.theme.TopBarTitle.Render("FirstDraft") + " " + m.theme.TopBarBadge.Render("CHAT")
	status := m.theme.TopBarMeta.Render(m.statusMsg)
	right := m.theme.TopBarMeta.Render(m.app.Credentials().User.Email)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	a := gap / 2
	b := gap - a
	return m.theme.TopBar.Render(left + strings.Repeat(" ", a) + status + strings.Repeat(" ", b) + right)
}

func (m *ChatModel) renderFooter() string {
	hints := "Enter send  Tab focus  Ctrl+N new chat  Ctrl+X delete  /attach image  Ctrl+O logout  Ctrl+C quit"
	if m.width < 100 {
		hints = "Enter send  Tab focus  Ctrl+N new  Ctrl+C quit"
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

func (m *ChatModel) renderMain(l chatLayout) string {
	chat := m.renderChatPane(l)
	if l.SidebarW == 0 {
		return chat
	}
	sidebar := m.renderSidebar(l)
	sep := m.theme.PaneDivider.Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, sep, chat)
}

func (m *ChatModel) renderSidebar(l chatLayout) string {
	title := m.theme.PaneTitle.Render(fmt.Sprintf("Chats (%d)", m.app.Pipeline.Sessions.Len()))
	box := m.theme.Pane
	if m.focus == focusSidebar {
		box = m.theme.PaneFocused
		title = m.theme.PaneTitleF.Render(fmt.Sprintf("Chats (%d)", m.app.Pipeline.Sessions.Len()))
	}

	sessions := m.app.Pipeline.Sessions.List()
	var b strings.Builder
	b.WriteString(title + "\n")
	if len(sessions) == 0 {
		b.WriteString(m.theme.SidebarHint.Render("No chats yet.\nCtrl+N starts one."))
	} else {
		current := m.app.Pipeline.Sessions.Current()
		end := m.sidebarOff + l.SidebarListH
		if end > len(sessions) {
			end = len(sessions)
		}
		for i := m.sidebarOff; i < end; i++ {
			sess := sessions[i]
			label := truncateRunes(sess.DisplayTitle(), maxInt(8, l.SidebarW-6))
			prefix := "  "
			style := m.theme.SidebarItem
			if sess.SessionID == current {
				prefix = "* "
			}
			if i == m.sidebarSel && m.focus == focusSidebar {
				prefix = "> "
				style = m.theme.SidebarSel
			}
			b.WriteString(style.Render(prefix + label))
			if i != end-1 {
				b.WriteString("\n")
			}
		}
	}
	return box.Width(l.SidebarW).Height(l.ChatH).Render(b.String())
}

func (m *ChatModel) renderChatPane(l chatLayout) string {
	title := "Chat"
	if m.focus == focusChat {
		title = m.theme.PaneTitleF.Render(title)
	} else {
		title = m.theme.PaneTitle.Render(title)
	}
	box := m.theme.Pane
	if m.focus == focusChat {
		box = m.theme.PaneFocused
	}
	return box.Width(l.ChatW).Height(l.ChatH).Render(title + "\n" + m.chatVP.View())
}

func (m *ChatModel) renderInputArea(l chatLayout) string {
	box := m.theme.InputBox
	if m.focus == focusInput {
		box = m.theme.InputBoxF
	}

	inner := m.input.View()
	if n := m.app.Pipeline.Batch.Len(); n > 0 {
		chips := make([]string, 0, n)
		for i, att := range m.app.Pipeline.Batch.Items() {
			chips = append(chips, fmt.Sprintf("[Image %d: %s]", i+1, att.Name))
		}
		inner += "\n" + m.theme.SidebarHint.Render(strings.Join(chips, " "))
	}
	if m.warning != "" {
		inner += "\n" + m.theme.Warning.Render(m.warning)
	}
	return box.Width(maxInt(10, m.width-2)).Render(inner)
}

func (m *ChatModel) refreshChat() {
	if !m.ready {
		return
	}
	width := m.computeLayout().ChatW - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	msgs := m.app.Pipeline.Messages.Messages()
	if len(msgs) == 0 && !m.app.Pipeline.Progress.Snapshot().Generating {
		b.WriteString(m.renderWelcome(width))
	}
	for _, msg := range msgs {
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n\n")
	}
	if block := m.renderProgress(width); block != "" {
		b.WriteString(block)
	}
	m.chatVP.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *ChatModel) renderWelcome(width int) string {
	head := m.theme.TopBarTitle.Render("Welcome to FirstDraft")
	body := lipgloss.NewStyle().Foreground(m.theme.TextMuted).Width(width).
		Render("Generate cinematic scripts with AI. Describe your vision, and let FirstDraft bring it to life.")
	return head + "\n" + body + "\n\n"
}

func (m *ChatModel) renderMessage(msg app.ChatMessage, width int) string {
	var roleStyle lipgloss.Style
	var roleLabel string
	switch msg.Role {
	case app.RoleUser:
		roleStyle = m.theme.RoleYou
		roleLabel = "YOU"
	case app.RoleAssistant:
		roleStyle = m.theme.RoleAI
		roleLabel = "FIRSTDRAFT"
	default:
		roleStyle = m.theme.RoleSys
		roleLabel = "SYS"
	}

	header := roleStyle.Render(roleLabel)
	if !msg.Timestamp.IsZero() {
		header += " " + m.theme.TopBarMeta.Render(msg.Timestamp.Format("15:04"))
	}

	var body string
	if msg.Role == app.RoleAssistant {
		body = m.renderer.Render(msg.Content, width)
	} else {
		body = lipgloss.NewStyle().Foreground(m.theme.TextPrimary).Width(width).Render(msg.Content)
	}
	return header + "\n" + body
}

func (m *ChatModel) renderProgress(width int) string {
	st := m.app.Pipeline.Progress.Snapshot()
	if !st.Generating {
		return ""
	}

	head := m.theme.RoleAI.Render("FIRSTDRAFT")
	line := "Generating your script..."
	if st.Staged {
		line = m.theme.StageLabel.Render(st.StageLabel)
	}
	hint := m.theme.SidebarHint.Render("This may take a moment.")
	bar := m.bar.ViewAs(float64(st.Percent) / 100)
	pct := m.theme.TopBarMeta.Render(fmt.Sprintf("%d%%", st.Percent))
	return head + "\n" + line + "\n" + hint + "\n" + bar + " " + pct
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(r[:maxRunes])
	}
	return string(r[:maxRunes-1]) + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
