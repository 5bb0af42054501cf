package main

import (
	"fmt"
	"strings"

	"darkops-lab/pkg/quiz"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a94a6"))
)

// optionItem adapts one answer option to list.Item.
type optionItem struct {
	index int
	text  string
}

func (o optionItem) Title() string       { return fmt.Sprintf("%d) %s", o.index+1, o.text) }
func (o optionItem) Description() string { return "" }
func (o optionItem) FilterValue() string { return o.text }

type quizKeyMap struct {
	Choose key.Binding
	Next   key.Binding
	Finish key.Binding
	Quit   key.Binding
}

func newQuizKeyMap() quizKeyMap {
	return quizKeyMap{
		Choose: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
		Next:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next question")),
		Finish: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "abandon")),
	}
}

// quizModel drives a quiz.Attempt. Choosing an option (enter or its number)
// answers the question and moves on as soon as Next or Finish is allowed.
type quizModel struct {
	attempt *quiz.Attempt
	list    list.Model
	keys    quizKeyMap
	status  string

	result    *quiz.Result
	abandoned bool
}

func newQuizModel(attempt *quiz.Attempt) quizModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 72, 12)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	m := quizModel{attempt: attempt, list: l, keys: newQuizKeyMap()}
	m.loadQuestion()
	return m
}

func (m *quizModel) loadQuestion() {
	q := m.attempt.Current()
	items := make([]list.Item, 0, len(q.Options))
	for i, o := range q.Options {
		items = append(items, optionItem{index: i, text: o})
	}
	m.list.SetItems(items)
	m.list.Select(0)
	m.list.Title = fmt.Sprintf("Question %d of %d: %s", m.attempt.Cursor()+1, m.attempt.Total(), q.Question)
	m.syncKeys()
}

// syncKeys enables Next and Finish only when the attempt allows them.
func (m *quizModel) syncKeys() {
	m.keys.Next.SetEnabled(m.attempt.CanAdvance())
	m.keys.Finish.SetEnabled(m.attempt.CanFinish())
}

func (m quizModel) Init() tea.Cmd {
	return nil
}

func (m quizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	// Typed-ahead input can arrive as one message carrying several runes.
	if keyMsg.Type == tea.KeyRunes && len(keyMsg.Runes) > 1 {
		var model tea.Model = m
		var cmd tea.Cmd
		for _, r := range keyMsg.Runes {
			model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
			if done := model.(quizModel); done.result != nil || done.abandoned {
				break
			}
		}
		return model, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.abandoned = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Choose):
		return m.choose(m.list.Index())
	case key.Matches(keyMsg, m.keys.Next):
		return m.advance()
	case key.Matches(keyMsg, m.keys.Finish):
		return m.finish()
	}

	if keyMsg.Type == tea.KeyRunes && len(keyMsg.Runes) == 1 {
		if r := keyMsg.Runes[0]; r >= '1' && r <= '9' {
			return m.choose(int(r - '1'))
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m quizModel) choose(option int) (tea.Model, tea.Cmd) {
	if err := m.attempt.Select(option); err != nil {
		m.status = fmt.Sprintf("Pick a number from 1 to %d.", len(m.attempt.Current().Options))
		return m, nil
	}
	m.status = ""
	m.syncKeys()
	if m.keys.Finish.Enabled() {
		return m.finish()
	}
	return m.advance()
}

func (m quizModel) advance() (tea.Model, tea.Cmd) {
	if !m.keys.Next.Enabled() {
		return m, nil
	}
	if err := m.attempt.Next(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.loadQuestion()
	return m, nil
}

func (m quizModel) finish() (tea.Model, tea.Cmd) {
	if !m.keys.Finish.Enabled() {
		return m, nil
	}
	result, err := m.attempt.Finish()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.result = &result
	return m, tea.Quit
}

func (m quizModel) View() string {
	if m.result != nil || m.abandoned {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(wrongStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("↑/↓ move • enter or 1-9 choose • q abandon"))
	b.WriteString("\n")
	return b.String()
}
