package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/sockshim/shim"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	recvStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type consoleState int

const (
	stateDial consoleState = iota
	stateConsole
)

type consoleModel struct {
	shim       *shim.Shim
	err        error
	input      textinput.Model
	transcript []string
	target     string
	fd         int32
	state      consoleState
}

type dialDoneMsg struct {
	err    error
	target string
	fd     int32
}

type exchangeDoneMsg struct {
	err   error
	sent  string
	reply string
}

func newConsoleModel(s *shim.Shim) *consoleModel {
	input := textinput.New()
	input.Placeholder = "host:port"
	input.Focus()

	return &consoleModel{
		shim:  s,
		input: input,
		state: stateDial,
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *consoleModel) dialCmd(target string) tea.Cmd {
	return func() tea.Msg {
		hostName, portStr, err := net.SplitHostPort(target)
		if err != nil {
			return dialDoneMsg{err: fmt.Errorf("expected host:port: %w", err)}
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return dialDoneMsg{err: fmt.Errorf("invalid port %q", portStr)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fd, err := shim.DialStream(ctx, m.shim, hostName, uint16(port))
		if err != nil {
			return dialDoneMsg{err: err}
		}
		return dialDoneMsg{fd: fd, target: target}
	}
}

func (m *consoleModel) exchangeCmd(line string) tea.Cmd {
	fd := m.fd
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		payload := unescape(line)
		if err := shim.SendAll(ctx, m.shim, fd, []byte(payload)); err != nil {
			return exchangeDoneMsg{sent: line, err: err}
		}
		data, err := m.shim.Recv(ctx, fd, 4096)
		if err != nil {
			return exchangeDoneMsg{sent: line, err: err}
		}
		return exchangeDoneMsg{sent: line, reply: string(data)}
	}
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.fd != 0 {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				_ = m.shim.Close(ctx, m.fd)
				cancel()
			}
			return m, tea.Quit

		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.err = nil

			if m.state == stateDial {
				return m, m.dialCmd(value)
			}
			return m, m.exchangeCmd(value)
		}

	case dialDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.fd = msg.fd
		m.target = msg.target
		m.state = stateConsole
		m.input.Placeholder = "data to send"
		return m, nil

	case exchangeDoneMsg:
		m.transcript = append(m.transcript, sentStyle.Render("> "+msg.sent))
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("! "+msg.err.Error()))
		} else {
			m.transcript = append(m.transcript, recvStyle.Render("< "+msg.reply))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sockcall console"))
	b.WriteString("\n\n")

	if m.state == stateConsole {
		b.WriteString(fmt.Sprintf("connected to %s (fd %d)\n\n", m.target, m.fd))
	}

	for _, line := range m.transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.transcript) > 0 {
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: send • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func runInteractive(s *shim.Shim) error {
	p := tea.NewProgram(newConsoleModel(s))
	_, err := p.Run()
	return err
}
