package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chojs23/twoway/internal/merge"
)

type choiceItem struct {
	choice merge.Choice
	label  string
	key    string
}

func (c choiceItem) Title() string       { return c.label }
func (c choiceItem) Description() string { return "" }
func (c choiceItem) FilterValue() string { return c.label }

var choices = []list.Item{
	choiceItem{choice: merge.ChoiceTheirs, label: "theirs (-)", key: "t"},
	choiceItem{choice: merge.ChoiceMine, label: "mine (+)", key: "m"},
	choiceItem{choice: merge.ChoiceBoth, label: "both", key: "b"},
	choiceItem{choice: merge.ChoiceUser, label: "user input", key: "u"},
}

type choiceDelegate struct {
	cursor lipgloss.Style
}

func (d choiceDelegate) Height() int {
	return 1
}

func (d choiceDelegate) Spacing() int {
	return 0
}

func (d choiceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(choiceItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = d.cursor.Render("> ")
	}
	fmt.Fprintf(w, "%s[%s] %s", cursor, strings.ToUpper(c.key), c.label)
}

// conflictModel shows both sides of one conflict and asks for a choice.
type conflictModel struct {
	title  string
	theirs []string
	mine   []string
	// caret is the display column of a character conflict, -1 otherwise.
	caret int

	list    list.Model
	editor  textarea.Model
	editing bool
	theme   Theme
	width   int

	choice merge.Choice
	manual string
	err    error
}

func newConflictModel(title string, theirs, mine []string, caret int, theme Theme) conflictModel {
	l := list.New(choices, choiceDelegate{cursor: theme.Cursor}, 30, len(choices))
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	editor := textarea.New()
	editor.Placeholder = "replacement text"
	editor.ShowLineNumbers = false
	if caret >= 0 {
		editor.SetHeight(1)
	}

	return conflictModel{
		title:  title,
		theirs: theirs,
		mine:   mine,
		caret:  caret,
		list:   l,
		editor: editor,
		theme:  theme,
	}
}

func (m conflictModel) Init() tea.Cmd {
	return nil
}

func (m conflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.err = merge.ErrAborted
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				return m.choose(item.choice)
			}
		default:
			if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
				break
			}
			if choice, ok := merge.ParseChoice(string(msg.Runes)); ok {
				return m.choose(choice)
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.SetWidth(max(msg.Width-4, 10))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m conflictModel) choose(choice merge.Choice) (tea.Model, tea.Cmd) {
	if choice == merge.ChoiceUser {
		m.editing = true
		return m, m.editor.Focus()
	}
	m.choice = choice
	return m, tea.Quit
}

func (m conflictModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.err = merge.ErrAborted
		return m, tea.Quit
	case "esc":
		m.editing = false
		m.editor.Blur()
		return m, nil
	case "ctrl+d":
		m.choice = merge.ChoiceUser
		m.manual = m.editor.Value()
		return m, tea.Quit
	case "enter":
		if m.caret >= 0 {
			m.choice = merge.ChoiceUser
			m.manual = m.editor.Value()
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m conflictModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.panes())
	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		if m.caret >= 0 {
			b.WriteString(m.theme.Help.Render("enter: accept, esc: back"))
		} else {
			b.WriteString(m.theme.Help.Render("ctrl+d: accept, esc: back"))
		}
		return b.String()
	}
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("up/down: move, enter: select, t/m/b/u: pick, q: abort"))
	return b.String()
}

func (m conflictModel) panes() string {
	var theirs, mine []string
	for _, line := range m.theirs {
		theirs = append(theirs, m.theme.OtherLine.Render("- "+line))
	}
	for _, line := range m.mine {
		mine = append(mine, m.theme.CurrentLine.Render("+ "+line))
	}
	if m.caret >= 0 {
		caret := "  " + strings.Repeat(" ", m.caret) + m.theme.Caret.Render("^")
		return lipgloss.JoinVertical(lipgloss.Left, strings.Join(theirs, "\n"), caret, strings.Join(mine, "\n"))
	}

	left := m.theme.OtherPane.Render(strings.Join(theirs, "\n"))
	right := m.theme.CurrentPane.Render(strings.Join(mine, "\n"))
	if m.width > 0 && lipgloss.Width(left)+lipgloss.Width(right) > m.width {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// Resolver answers merge conflicts with a full-screen picker.
type Resolver struct {
	ctx     context.Context
	theme   Theme
	options []tea.ProgramOption
}

func NewResolver(ctx context.Context, theme Theme, options ...tea.ProgramOption) *Resolver {
	return &Resolver{ctx: ctx, theme: theme, options: options}
}

func (r *Resolver) ResolveLines(c merge.LineConflict) ([]string, error) {
	title := fmt.Sprintf("Line replacement at line %d", c.Line+1)
	result, err := r.run(newConflictModel(title, c.Theirs, c.Mine, -1, r.theme))
	if err != nil {
		return nil, err
	}
	if result.choice == merge.ChoiceUser {
		if result.manual == "" {
			return nil, nil
		}
		return strings.Split(result.manual, "\n"), nil
	}
	return c.Pick(result.choice), nil
}

func (r *Resolver) ResolveChars(c merge.CharConflict) (string, error) {
	result, err := r.run(newConflictModel("Character replacement", []string{c.Other}, []string{c.Current}, c.Column, r.theme))
	if err != nil {
		return "", err
	}
	if result.choice == merge.ChoiceUser {
		return result.manual, nil
	}
	return c.Pick(result.choice), nil
}

func (r *Resolver) run(model conflictModel) (conflictModel, error) {
	if err := r.ctx.Err(); err != nil {
		return conflictModel{}, err
	}
	options := append([]tea.ProgramOption{tea.WithContext(r.ctx)}, r.options...)
	final, err := tea.NewProgram(model, options...).Run()
	if err != nil {
		return conflictModel{}, fmt.Errorf("conflict resolver TUI error: %w", err)
	}
	result, ok := final.(conflictModel)
	if !ok {
		return conflictModel{}, fmt.Errorf("conflict resolver returned unexpected model")
	}
	if result.err != nil {
		return conflictModel{}, result.err
	}
	return result, nil
}
