package merge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
)

const (
	linePrompt      = " Line replacement: M[I]ne (+), [T]heirs (-), [B]oth, [U]ser input: "
	charPrompt      = " Character replacement: M[I]ne (+), [T]heirs (-), [B]oth, [U]ser input: "
	endMarkerPrompt = "Enter end-of-text marker (default: <empty line>): "
	userLinePrompt  = "> "
)

// Prompter is the terminal seen by PromptResolver.
type Prompter interface {
	Show(lines ...string)
	ReadLine(prompt string) (string, error)
}

// PromptStyles colours the two sides of a conflict.
type PromptStyles struct {
	Theirs lipgloss.Style
	Mine   lipgloss.Style
	Caret  lipgloss.Style
}

func DefaultPromptStyles() PromptStyles {
	return PromptStyles{
		Theirs: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Mine:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Caret:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	}
}

// PromptResolver asks on a Prompter until it gets a recognised answer.
type PromptResolver struct {
	prompter Prompter
	styles   PromptStyles
}

func NewPromptResolver(p Prompter, styles PromptStyles) *PromptResolver {
	return &PromptResolver{prompter: p, styles: styles}
}

func (r *PromptResolver) ResolveLines(c LineConflict) ([]string, error) {
	shown := make([]string, 0, len(c.Theirs)+len(c.Mine))
	for _, line := range c.Theirs {
		shown = append(shown, r.styles.Theirs.Render("- "+line))
	}
	for _, line := range c.Mine {
		shown = append(shown, r.styles.Mine.Render("+ "+line))
	}
	r.prompter.Show(shown...)

	choice, err := r.ask(linePrompt)
	if err != nil {
		return nil, err
	}
	if choice == ChoiceUser {
		return r.readBlock()
	}
	return c.Pick(choice), nil
}

func (r *PromptResolver) ResolveChars(c CharConflict) (string, error) {
	r.prompter.Show(
		r.styles.Theirs.Render("- "+c.Other),
		"  "+strings.Repeat(" ", c.Column)+r.styles.Caret.Render("^"),
		r.styles.Mine.Render("+ "+c.Current),
	)

	choice, err := r.ask(charPrompt)
	if err != nil {
		return "", err
	}
	if choice == ChoiceUser {
		return r.prompter.ReadLine(userLinePrompt)
	}
	return c.Pick(choice), nil
}

func (r *PromptResolver) ask(prompt string) (Choice, error) {
	for {
		answer, err := r.prompter.ReadLine(prompt)
		if err != nil {
			return 0, err
		}
		if choice, ok := ParseChoice(answer); ok {
			return choice, nil
		}
	}
}

// readBlock collects free-form lines until the user repeats the end marker
// chosen first.
func (r *PromptResolver) readBlock() ([]string, error) {
	marker, err := r.prompter.ReadLine(endMarkerPrompt)
	if err != nil {
		return nil, err
	}
	var lines []string
	for {
		line, err := r.prompter.ReadLine(userLinePrompt)
		if err != nil {
			return nil, err
		}
		if line == marker {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// StreamPrompter reads answers line by line from any reader.
type StreamPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStreamPrompter(in io.Reader, out io.Writer) *StreamPrompter {
	return &StreamPrompter{in: bufio.NewReader(in), out: out}
}

func (p *StreamPrompter) Show(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(p.out, line)
	}
}

func (p *StreamPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// LinerPrompter edits answers with line editing and history on a terminal.
type LinerPrompter struct {
	state *liner.State
	out   io.Writer
}

func NewLinerPrompter(out io.Writer) *LinerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerPrompter{state: state, out: out}
}

func (p *LinerPrompter) Show(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(p.out, line)
	}
}

func (p *LinerPrompter) ReadLine(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	if line != "" {
		p.state.AppendHistory(line)
	}
	return line, nil
}

// Close restores the terminal mode.
func (p *LinerPrompter) Close() error {
	return p.state.Close()
}
