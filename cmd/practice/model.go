package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jusunglee/typetoreveal/internal/answer"
)

const maxProgressDots = 20

type Checker interface {
	Check(word, answer string) answer.Result
	Reveal(word string) answer.Result
}

type outcome int

const (
	outcomePending outcome = iota
	outcomeCorrect
	outcomeRevealed
	outcomeSkipped
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")).
			MarginBottom(1)

	wordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	revealedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	wrongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

type model struct {
	words     []string
	outcomes  []outcome
	index     int
	attempts  int
	checker   Checker
	textInput textinput.Model
	last      *answer.Result
	revealed  bool
	quit      bool
	started   time.Time
	finished  time.Time
	now       func() time.Time
}

func newModel(words []string, checker Checker, now func() time.Time) model {
	ti := textinput.New()
	ti.Placeholder = "type the word in Latin letters"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	return model{
		words:     words,
		outcomes:  make([]outcome, len(words)),
		checker:   checker,
		textInput: ti,
		started:   now(),
		now:       now,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) done() bool {
	return m.index >= len(m.words)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			m.finish()
			return m, tea.Quit
		case tea.KeyEnter:
			if m.done() {
				return m, tea.Quit
			}
			return m.submit()
		case tea.KeyTab:
			if !m.done() {
				m.reveal()
			}
			return m, nil
		case tea.KeyCtrlN:
			if !m.done() {
				m.advance(outcomeSkipped)
			}
			return m, nil
		}
	}

	if m.done() {
		return m, nil
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	typed := m.textInput.Value()
	if strings.TrimSpace(typed) == "" {
		if m.revealed {
			m.advance(outcomeRevealed)
		}
		return m, nil
	}

	res := m.checker.Check(m.words[m.index], typed)
	m.attempts++
	m.last = &res
	if res.Verdict != answer.VerdictCorrect {
		return m, nil
	}
	if m.revealed {
		m.advance(outcomeRevealed)
	} else {
		m.advance(outcomeCorrect)
	}
	m.last = &res
	return m, nil
}

func (m *model) reveal() {
	res := m.checker.Reveal(m.words[m.index])
	m.revealed = true
	m.last = &res
}

func (m *model) advance(o outcome) {
	m.outcomes[m.index] = o
	m.index++
	m.revealed = false
	m.last = nil
	m.textInput.Reset()
	if m.done() {
		m.finish()
	}
}

func (m *model) finish() {
	if m.finished.IsZero() {
		m.finished = m.now()
	}
}

// practiced counts words that were answered or revealed; skipped words and
// the word on screen at quit are left out.
func (m model) practiced() int {
	n := 0
	for _, o := range m.outcomes {
		if o == outcomeCorrect || o == outcomeRevealed {
			n++
		}
	}
	return n
}

func (m model) correct() int {
	n := 0
	for _, o := range m.outcomes {
		if o == outcomeCorrect {
			n++
		}
	}
	return n
}

func (m model) elapsed() time.Duration {
	end := m.finished
	if end.IsZero() {
		end = m.now()
	}
	return end.Sub(m.started)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Type to Reveal - Practice"))
	s.WriteString("\n\n")

	s.WriteString(m.renderProgress())
	s.WriteString("\n\n")

	if m.done() {
		s.WriteString(m.renderSummary())
		s.WriteString("\n\n")
		s.WriteString(subtleStyle.Render("enter=quit"))
		return boxStyle.Render(s.String())
	}

	s.WriteString(wordStyle.Render(m.words[m.index]))
	s.WriteString("\n\n")
	s.WriteString(m.textInput.View())
	s.WriteString("\n\n")
	if fb := m.renderFeedback(); fb != "" {
		s.WriteString(fb)
		s.WriteString("\n\n")
	}
	s.WriteString(m.renderStats())
	s.WriteString("\n\n")
	s.WriteString(subtleStyle.Render("enter=check • tab=reveal • ctrl+n=skip • esc=quit"))

	return boxStyle.Render(s.String())
}

func (m model) renderProgress() string {
	label := fmt.Sprintf("Word %d of %d", min(m.index+1, len(m.words)), len(m.words))
	if m.done() {
		label = "Complete"
	}
	if len(m.words) > maxProgressDots {
		return activeStyle.Render(label)
	}

	var dots []string
	for i := range m.words {
		switch {
		case i == m.index:
			dots = append(dots, activeStyle.Render("●"))
		case m.outcomes[i] == outcomeCorrect:
			dots = append(dots, correctStyle.Render("●"))
		case m.outcomes[i] == outcomeRevealed:
			dots = append(dots, revealedStyle.Render("●"))
		case m.outcomes[i] == outcomeSkipped:
			dots = append(dots, wrongStyle.Render("○"))
		default:
			dots = append(dots, pendingStyle.Render("○"))
		}
	}
	return fmt.Sprintf("[%s]  %s", strings.Join(dots, " "), activeStyle.Render(label))
}

func (m model) renderFeedback() string {
	if m.last == nil {
		return ""
	}
	res := m.last
	meaning := ""
	if res.Meaning != "" {
		meaning = subtleStyle.Render("  (" + res.Meaning + ")")
	}

	switch {
	case m.revealed:
		if res.Expected == "" {
			return revealedStyle.Render("No spelling known for this word") + "\nenter=next"
		}
		return revealedStyle.Render("Spelling: "+res.Expected) + meaning + "\n" +
			subtleStyle.Render("type it to continue, or enter=next")
	case res.Verdict == answer.VerdictCorrect:
		return correctStyle.Render("✓ "+res.Expected) + meaning
	case res.NearMiss:
		return revealedStyle.Render("Close! Try again")
	default:
		return wrongStyle.Render("Not quite. Try again or press tab")
	}
}

func (m model) renderStats() string {
	answered := m.practiced()
	accuracy := 0
	if answered > 0 {
		accuracy = m.correct() * 100 / answered
	}
	return subtleStyle.Render(fmt.Sprintf("Correct %d/%d (%d%%) • %d attempts", m.correct(), answered, accuracy, m.attempts))
}

func (m model) renderSummary() string {
	var s strings.Builder
	s.WriteString(correctStyle.Render("Session complete"))
	s.WriteString("\n\n")
	s.WriteString(m.renderStats())
	s.WriteString("\n")
	s.WriteString(subtleStyle.Render("Time " + m.elapsed().Round(time.Second).String()))
	return s.String()
}
