package merge

import (
	"errors"
	"strings"
)

var (
	ErrNoResolver = errors.New("ask mode needs a resolver")
	ErrAborted    = errors.New("resolution aborted")
)

// Choice is a user's answer to a conflict prompt.
type Choice int

const (
	ChoiceTheirs Choice = iota + 1
	ChoiceMine
	ChoiceBoth
	ChoiceUser
)

func (c Choice) String() string {
	switch c {
	case ChoiceTheirs:
		return "theirs"
	case ChoiceMine:
		return "mine"
	case ChoiceBoth:
		return "both"
	case ChoiceUser:
		return "user input"
	}
	return "unknown"
}

// ParseChoice reads the first letter of an answer: t(heirs), m(ine) or i,
// b(oth), u(ser input). Anything else is rejected.
func ParseChoice(answer string) (Choice, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return 0, false
	}
	switch answer[0] {
	case 't':
		return ChoiceTheirs, true
	case 'm', 'i':
		return ChoiceMine, true
	case 'b':
		return ChoiceBoth, true
	case 'u':
		return ChoiceUser, true
	}
	return 0, false
}

// LineConflict is a multi-line replacement waiting for a decision.
// Theirs holds the block's own lines, Mine the lines it replaces.
type LineConflict struct {
	Line   int
	Theirs []string
	Mine   []string
}

// Pick returns the lines for a non-interactive choice.
// ChoiceBoth yields the same lines as ChoiceTheirs. Known quirk, kept until
// the intended semantics are settled.
func (c LineConflict) Pick(choice Choice) []string {
	switch choice {
	case ChoiceMine:
		return c.Mine
	default:
		return c.Theirs
	}
}

// CharConflict is a replaced character run inside a single line.
// Column is the display column of the run within Other.
type CharConflict struct {
	Other   string
	Current string
	Column  int
	Theirs  string
	Mine    string
}

// Pick mirrors LineConflict.Pick for character runs.
func (c CharConflict) Pick(choice Choice) string {
	if choice == ChoiceMine {
		return c.Mine
	}
	return c.Theirs
}

// Resolver decides conflicts in ask mode. Implementations block until the
// user answers.
type Resolver interface {
	ResolveLines(c LineConflict) ([]string, error)
	ResolveChars(c CharConflict) (string, error)
}
