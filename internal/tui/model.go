package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paperqa/internal/models"
	"paperqa/internal/util"
)

// Answerer is the TUI-facing subset of the answer engine.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question string, topK int) models.Answer
}

type answerMsg struct {
	answer models.Answer
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx      context.Context
	engine   Answerer
	topK     int
	input    textinput.Model
	viewport viewport.Model
	answer   *models.Answer
	summary  string
	status   string
	busy     bool
	ready    bool
}

func New(ctx context.Context, engine Answerer, topK int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your papers and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, engine: engine, topK: topK, input: ti, viewport: vp, summary: summary, status: "Ready."}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.busy = false
		a := msg.answer
		m.answer = &a
		m.status = fmt.Sprintf("%d source(s) for %q", len(a.Sources), a.Question)
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, m.ask(q)
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	ctx, engine, topK := m.ctx, m.engine, m.topK
	return func() tea.Msg {
		return answerMsg{answer: engine.AnswerQuestion(ctx, q, topK)}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Paper Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	body := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answers yet."
	}
	var b strings.Builder
	b.WriteString(m.answer.Answer)
	if len(m.answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceHeaderStyle.Render("Sources"))
	}
	for i, src := range m.answer.Sources {
		title := src.Metadata.Title
		if title == "" {
			title = "Unknown"
		}
		fmt.Fprintf(&b, "\n[%d] %s  score=%.3f\n    %s", i+1, title, src.Score,
			evidenceStyle.Render(util.DisplayEvidenceSnippet(src.Document, m.answer.Question, 240)))
	}
	return b.String()
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	evidenceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
