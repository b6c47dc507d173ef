package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/snapscout/core/events"
	"github.com/muesli/reflow/wordwrap"
)

const maxLines = 200

// eventMsg wraps dispatcher events for bubbletea.
type eventMsg struct{ event events.Event }

// spokenMsg carries text handed to the console speaker.
type spokenMsg string

// Model is the console UI: a transcript of utterances and replies, a status
// line with the active agent and an input for typed utterances.
type Model struct {
	input    textinput.Model
	viewport viewport.Model
	styles   styles

	lines   []string
	interim string
	agent   string
	voice   bool

	events <-chan events.Event
	spoken <-chan string
	submit func(text string)

	width    int
	height   int
	quitting bool
}

// NewModel creates a model that hands typed utterances to submit and renders
// the events received on eventsCh and the text received on spokenCh.
func NewModel(submit func(text string), eventsCh <-chan events.Event, spokenCh <-chan string, voice bool) Model {
	input := textinput.New()
	input.Placeholder = "launch magenta, ask genie to tell me a joke, ..."
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	return Model{
		input:    input,
		viewport: viewport.New(80, 20),
		styles:   newStyles(),
		voice:    voice,
		events:   eventsCh,
		spoken:   spokenCh,
		submit:   submit,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenEvents(), m.listenSpoken())
}

func (m Model) listenSpoken() tea.Cmd {
	if m.spoken == nil {
		return nil
	}
	return func() tea.Msg {
		text, ok := <-m.spoken
		if !ok {
			return nil
		}
		return spokenMsg(text)
	}
}

func (m Model) listenEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg{event: event}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text != "" && m.submit != nil {
				m.submit(text)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 10)
		m.refresh()

	case eventMsg:
		m.handleEvent(msg.event)
		cmds = append(cmds, m.listenEvents())

	case spokenMsg:
		m.addLine(m.styles.system.Render("speaking: " + string(msg)))
		m.refresh()
		cmds = append(cmds, m.listenSpoken())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(event events.Event) {
	switch event := event.(type) {
	case events.SegmentInterim:
		m.interim = event.Text
	case events.SegmentFinal:
		m.interim = ""
		m.addLine(m.styles.user.Render("you: " + event.Text))
	case events.SegmentRejected:
		m.addLine(m.styles.errorLine.Render("ignored segment: " + event.Err.Error()))
	case events.AgentActivated:
		m.agent = event.Agent
	case events.AgentTerminated:
		m.agent = ""
	case events.AgentRequestFailed:
		m.addLine(m.styles.errorLine.Render(fmt.Sprintf("%s failed: %v", agentLabel(event.Agent), event.Err)))
	case events.AgentReplied:
		m.addLine(m.styles.reply.Render(event.Agent + ": " + event.Text))
	case events.SpeechFailed:
		m.addLine(m.styles.errorLine.Render("speech failed: " + event.Err.Error()))
	}
	m.refresh()
}

func agentLabel(agent string) string {
	if agent == "" {
		return "agent"
	}
	return agent
}

func (m *Model) addLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m *Model) refresh() {
	content := strings.Join(m.lines, "\n")
	if m.interim != "" {
		if content != "" {
			content += "\n"
		}
		content += m.styles.interim.Render(m.interim + "...")
	}
	if m.width > 0 {
		content = wordwrap.String(content, m.width)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	agent := "none"
	if m.agent != "" {
		agent = m.styles.agent.Render(m.agent)
	}
	mode := "text"
	if m.voice {
		mode = "voice"
	}
	status := m.styles.title.Render("SnapScout") + m.styles.status.Render(fmt.Sprintf("  agent: %s  mode: %s", agent, mode))

	return strings.Join([]string{
		status,
		m.viewport.View(),
		m.input.View(),
		m.styles.help.Render("enter to send, esc to quit"),
	}, "\n")
}
