package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/anycodec"
	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/typecode"
	"github.com/wippyai/anycodec/witimport"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// NewReplCommand creates the interactive shell command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	var witFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Pack and extract values interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.InvalidInput(errors.PhaseLoad, "repl requires a terminal")
			}
			s, err := rootOpts.session()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := replEntries(s, witFile)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newReplModel(s, entries), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&witFile, "wit", "w", "", "also offer the named types of a WIT JSON file")
	return cmd
}

type typeEntry struct {
	name string
	tc   *typecode.TypeCode
}

// replEntries lists the configured types, then the types of witFile. The
// last entry takes a descriptor typed by the user.
func replEntries(s *anycodec.Session, witFile string) ([]typeEntry, error) {
	var entries []typeEntry
	for _, name := range s.Config().TypeNames() {
		tc, err := s.Config().Descriptor(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, typeEntry{name: name, tc: tc})
	}

	if witFile != "" {
		types, err := witimport.LoadFile(witFile)
		if err != nil {
			return nil, err
		}
		var wit []typeEntry
		for name, tc := range types {
			wit = append(wit, typeEntry{name: name, tc: tc})
		}
		sort.Slice(wit, func(i, j int) bool { return wit[i].name < wit[j].name })
		entries = append(entries, wit...)
	}

	return append(entries, typeEntry{name: "(descriptor)"}), nil
}

type replState int

const (
	stateSelectType replState = iota
	stateInput
	stateShowResult
)

type replModel struct {
	s        *anycodec.Session
	entries  []typeEntry
	inputs   []textinput.Model
	result   string
	printed  string
	err      error
	selected int
	focusIdx int
	state    replState
}

type packResultMsg struct {
	err     error
	printed string
	result  string
}

func newReplModel(s *anycodec.Session, entries []typeEntry) *replModel {
	return &replModel{s: s, entries: entries, state: stateSelectType}
}

func (m *replModel) Init() tea.Cmd {
	return nil
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}

		case "up":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateSelectType && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				m.prepareInputs()
				m.state = stateInput
				return m, textinput.Blink

			case stateInput:
				return m, m.pack

			case stateShowResult:
				m.state = stateInput
				m.result, m.printed, m.err = "", "", nil
				return m, nil
			}

		case "tab":
			if m.state == stateInput && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInput:
				m.state = stateSelectType
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectType
				m.inputs = nil
				m.result, m.printed, m.err = "", "", nil
			}
		}

	case packResultMsg:
		m.result = msg.result
		m.printed = msg.printed
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInput {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *replModel) prepareInputs() {
	e := m.entries[m.selected]
	var prompts []string
	if e.tc == nil {
		prompts = append(prompts, "type: ")
	}
	prompts = append(prompts, "value: ")

	m.inputs = make([]textinput.Model, len(prompts))
	for i, prompt := range prompts {
		ti := textinput.New()
		ti.Prompt = prompt
		ti.Width = 60
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *replModel) pack() tea.Msg {
	e := m.entries[m.selected]
	tc := e.tc
	value := m.inputs[len(m.inputs)-1].Value()
	if tc == nil {
		var err error
		tc, err = m.s.Type(m.inputs[0].Value())
		if err != nil {
			return packResultMsg{err: err}
		}
	}
	return packAndShow(m.s, value, tc)
}

func packAndShow(s *anycodec.Session, value string, tc *typecode.TypeCode) packResultMsg {
	v, err := s.Codec().Pack(external.Scalar(value), tc)
	if err != nil {
		return packResultMsg{err: err}
	}
	text, err := s.ExtractText(v)
	if err != nil {
		return packResultMsg{err: err}
	}
	return packResultMsg{printed: typecode.Describe(v.Type), result: text}
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("anycodec"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type:\n\n")
		for i, e := range m.entries {
			line := m.formatEntry(e)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInput:
		e := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Packing %s\n\n", nameStyle.Render(e.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter pack • esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(typeStyle.Render(m.printed))
			b.WriteString("\n")
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter edit • esc types • q quit"))
	}

	return b.String()
}

func (m *replModel) formatEntry(e typeEntry) string {
	if e.tc == nil {
		return nameStyle.Render(e.name)
	}
	return nameStyle.Render(e.name) + " " + typeStyle.Render(typecode.Describe(e.tc))
}
