package tui

import (
	"context"
	"errors"
	"strings"

	"firstdraft-cli/internal/app"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

type authDoneMsg struct{ err error }

// AuthModel is the sign-in screen. It validates locally first and renders
// both validation and backend failures inline under the form.
type AuthModel struct {
	app   *app.Application
	theme Theme
	mode  authMode

	inputs  []textinput.Model
	labels  []string
	focused int

	formErr string
	busy    bool
	done    bool

	width  int
	height int
}

func NewAuthModel(application *app.Application) *AuthModel {
	m := &AuthModel{
		app:    application,
		theme:  NewTheme(),
		mode:   modeLogin,
		width:  80,
		height: 24,
	}
	m.buildInputs()
	return m
}

// Authenticated reports whether sign-in completed before the model quit.
func (m *AuthModel) Authenticated() bool { return m.done }

func (m *AuthModel) buildInputs() {
	mk := func(placeholder string, secret bool) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		in.Width = 36
		in.Prompt = "> "
		if secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		return in
	}

	if m.mode == modeLogin {
		m.labels = []string{"Email", "Password"}
		m.inputs = []textinput.Model{
			mk("you@example.com", false),
			mk("password", true),
		}
	} else {
		m.labels = []string{"Name", "Email", "Password", "Confirm password"}
		m.inputs = []textinput.Model{
			mk("Ada Lovelace", false),
			mk("you@example.com", false),
			mk("password", true),
			mk("repeat password", true),
		}
	}
	m.focused = 0
	m.inputs[0].Focus()
	m.formErr = ""
}

func (m *AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *AuthModel) submitCmd() tea.Cmd {
	vals := make([]string, len(m.inputs))
	for i := range m.inputs {
		vals[i] = strings.TrimSpace(m.inputs[i].Value())
	}
	mode := m.mode
	return func() tea.Msg {
		var err error
		if mode == modeLogin {
			err = m.app.Login(context.Background(), vals[0], vals[1])
		} else {
			err = m.app.Signup(context.Background(), vals[0], vals[1], vals[2])
		}
		return authDoneMsg{err: err}
	}
}

func (m *AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.formErr = authErrorText(m.mode, msg.err)
			return m, nil
		}
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.busy {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			if m.mode == modeLogin {
				m.mode = modeSignup
			} else {
				m.mode = modeLogin
			}
			m.buildInputs()
			return m, textinput.Blink
		case tea.KeyTab, tea.KeyDown:
			m.moveFocus(1)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.moveFocus(-1)
			return m, nil
		case tea.KeyEnter:
			if m.focused < len(m.inputs)-1 {
				m.moveFocus(1)
				return m, nil
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *AuthModel) submit() tea.Cmd {
	vals := make([]string, len(m.inputs))
	for i := range m.inputs {
		vals[i] = strings.TrimSpace(m.inputs[i].Value())
	}

	var verr string
	if m.mode == modeLogin {
		verr = validateLogin(vals[0], vals[1])
	} else {
		verr = validateSignup(vals[0], vals[1], vals[2], vals[3])
	}
	if verr != "" {
		m.formErr = verr
		return nil
	}

	m.formErr = ""
	m.busy = true
	return m.submitCmd()
}

func (m *AuthModel) moveFocus(delta int) {
	m.inputs[m.focused].Blur()
	m.focused += delta
	if m.focused < 0 {
		m.focused = len(m.inputs) - 1
	}
	if m.focused >= len(m.inputs) {
		m.focused = 0
	}
	m.inputs[m.focused].Focus()
}

func (m *AuthModel) View() string {
	var b strings.Builder

	title := "Sign in to FirstDraft"
	toggleHint := "Ctrl+S sign up instead"
	if m.mode == modeSignup {
		title = "Create your FirstDraft account"
		toggleHint = "Ctrl+S sign in instead"
	}
	b.WriteString(m.theme.TopBarTitle.Render(title) + "\n\n")

	for i := range m.inputs {
		b.WriteString(m.theme.FormLabel.Render(m.labels[i]) + "\n")
		b.WriteString(m.inputs[i].View() + "\n\n")
	}

	if m.busy {
		b.WriteString(m.theme.SidebarHint.Render("Signing in...") + "\n")
	} else if m.formErr != "" {
		b.WriteString(m.theme.FormError.Render(m.formErr) + "\n")
	}

	b.WriteString("\n" + m.theme.Footer.Render("Enter submit  Tab next field  "+toggleHint+"  Esc quit"))

	card := m.theme.Pane.Padding(1, 3).Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
	}
	return card
}

// authErrorText prefers the backend's own message and falls back to a
// generic line when the failure was transport-level.
func authErrorText(mode authMode, err error) string {
	var apiErr *app.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if mode == modeLogin {
		return "Login failed"
	}
	return "Signup failed"
}
