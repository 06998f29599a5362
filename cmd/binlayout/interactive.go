package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/binlayout/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	schemaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateInputHex modelState = iota
	stateShowResult
)

type interactiveModel struct {
	err        error
	layout     *layout.Layout
	schemaFile string
	schemaDesc string
	result     string
	input      textinput.Model
	state      modelState
}

type decodeResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(schemaFile string, l *layout.Layout) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "hex bytes, e.g. cafef00d 02"
	ti.Prompt = "bytes: "
	ti.Width = 64
	ti.Focus()

	return &interactiveModel{
		layout:     l,
		schemaFile: schemaFile,
		schemaDesc: describeLayout(l, 1),
		input:      ti,
		state:      stateInputHex,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateShowResult {
				return m, tea.Quit
			}

		case "enter":
			switch m.state {
			case stateInputHex:
				return m, m.decodeInput
			case stateShowResult:
				m.state = stateInputHex
				m.result = ""
				m.err = nil
				m.input.Focus()
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateInputHex
				m.result = ""
				m.err = nil
				m.input.Focus()
			}
		}

	case decodeResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		m.input.Blur()
	}

	if m.state == stateInputHex {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) decodeInput() tea.Msg {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, m.input.Value())

	data, err := hex.DecodeString(s)
	if err != nil {
		return decodeResultMsg{err: fmt.Errorf("hex: %w", err)}
	}

	v, err := layout.Deserialize(m.layout, data)
	if err != nil {
		return decodeResultMsg{err: err}
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return decodeResultMsg{err: err}
	}
	return decodeResultMsg{result: string(out)}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Inspector"))
	b.WriteString(" ")
	b.WriteString(m.schemaFile)
	b.WriteString("\n\n")

	b.WriteString("Schema:\n")
	b.WriteString(schemaStyle.Render(m.schemaDesc))
	b.WriteString("\n")

	switch m.state {
	case stateInputHex:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode • ctrl+c quit"))

	case stateShowResult:
		b.WriteString("Decoded:\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter decode another • q quit"))
	}

	return b.String()
}

func runInteractive(schemaFile string, l *layout.Layout) error {
	p := tea.NewProgram(newInteractiveModel(schemaFile, l), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
