// Package glob tokenizes shell-style rename patterns and carries wildcard
// captures from an old filename into a new one.
package glob

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

var (
	ErrMalformedPattern     = errors.New("malformed glob pattern")
	ErrIncompatiblePatterns = errors.New("incompatible rename patterns")
	ErrNoMatch              = errors.New("filename does not match pattern")
)

// escapes are bracket classes holding a single special character.
var escapes = []string{"[?]", "[*]", "[[]", "[]]"}

// Token is one piece of a tokenized pattern. Index is the rune offset of
// the token in the pattern.
type Token struct {
	Literal bool
	Content string
	Index   int
}

func (t Token) kind() string {
	switch {
	case t.Literal:
		return "literal"
	case t.Content == "*":
		return "star"
	case strings.HasPrefix(t.Content, "?"):
		return "any"
	}
	return "class"
}

// width is the number of filename runes a fixed-size wildcard consumes.
func (t Token) width() int {
	switch t.kind() {
	case "any":
		return utf8.RuneCountInString(t.Content)
	case "class":
		return 1
	}
	return 0
}

// Binding is a token bound to the part of a filename it matched.
type Binding struct {
	Literal bool
	Content string
	Matches string
}

// Tokenize splits pattern into literal runs and wildcards: escaped classes
// like "[?]", runs of '?', a lone '*', and negated classes "[!...]".
func Tokenize(pattern string) ([]Token, error) {
	runes := []rune(pattern)
	var tokens []Token
	for i := 0; i < len(runes); {
		start := i
		switch {
		case escapeAt(runes, i):
			i += 3
		case runes[i] == '?':
			for i < len(runes) && runes[i] == '?' {
				i++
			}
		case runes[i] == '*':
			i++
		case runes[i] == '[' && i+1 < len(runes) && runes[i+1] == '!':
			end := classEnd(runes, i+2)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated class at offset %d in %q", ErrMalformedPattern, i, pattern)
			}
			i = end + 1
		default:
			i++
			for i < len(runes) && !strings.ContainsRune("*?[", runes[i]) {
				i++
			}
			tokens = append(tokens, Token{Literal: true, Content: string(runes[start:i]), Index: start})
			continue
		}
		tokens = append(tokens, Token{Content: string(runes[start:i]), Index: start})
	}
	return tokens, nil
}

func escapeAt(runes []rune, i int) bool {
	if i+3 > len(runes) {
		return false
	}
	return lo.Contains(escapes, string(runes[i:i+3]))
}

// classEnd finds the ']' closing a class whose members start at from. A ']'
// directly at from is a member, as in fnmatch.
func classEnd(runes []rune, from int) int {
	if from < len(runes) && runes[from] == ']' {
		from++
	}
	for j := from; j < len(runes); j++ {
		if runes[j] == ']' {
			return j
		}
	}
	return -1
}

func wildcards(tokens []Token) []Token {
	return lo.Reject(tokens, func(t Token, _ int) bool { return t.Literal })
}

// Align tokenizes both patterns and checks that every wildcard the new
// pattern uses has the same syntax as the old wildcard at that position.
// All mismatches are reported together.
func Align(oldPattern, newPattern string) ([]Token, []Token, error) {
	oldTokens, err := Tokenize(oldPattern)
	if err != nil {
		return nil, nil, fmt.Errorf("old pattern: %w", err)
	}
	newTokens, err := Tokenize(newPattern)
	if err != nil {
		return nil, nil, fmt.Errorf("new pattern: %w", err)
	}

	var errs *multierror.Error
	oldWild, newWild := wildcards(oldTokens), wildcards(newTokens)
	if len(newWild) > len(oldWild) {
		errs = multierror.Append(errs, fmt.Errorf("%w: %q has %d wildcards but %q only %d",
			ErrIncompatiblePatterns, newPattern, len(newWild), oldPattern, len(oldWild)))
	}
	for i := 0; i < len(oldWild) && i < len(newWild); i++ {
		if oldWild[i].Content != newWild[i].Content {
			errs = multierror.Append(errs, fmt.Errorf("%w: wildcard %d is %q in old pattern but %q in new pattern",
				ErrIncompatiblePatterns, i+1, oldWild[i].Content, newWild[i].Content))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, nil, err
	}
	return oldTokens, newTokens, nil
}

// Bind walks tokens over filename and records what each token matched.
//
// Literal tokens are trusted and skipped by length without comparing them
// to the filename, so filename must already match the pattern (see Match).
// A '*' extends to the first occurrence of the next literal token, or when
// no literal follows, to the end minus whatever fixed-width wildcards come
// after it.
func Bind(filename string, tokens []Token) ([]Binding, error) {
	runes := []rune(filename)
	bindings := make([]Binding, 0, len(tokens))
	pos := 0
	for i, t := range tokens {
		var n int
		switch t.kind() {
		case "literal", "any":
			n = utf8.RuneCountInString(t.Content)
		case "class":
			n = 1
		case "star":
			n = starLength(runes[pos:], tokens[i+1:])
			if n < 0 {
				return nil, fmt.Errorf("%w: %q after offset %d in %q", ErrNoMatch, nextLiteral(tokens[i+1:]).Content, pos, filename)
			}
		}
		if pos+n > len(runes) {
			return nil, fmt.Errorf("%w: %q is too short", ErrNoMatch, filename)
		}
		bindings = append(bindings, Binding{Literal: t.Literal, Content: t.Content, Matches: string(runes[pos : pos+n])})
		pos += n
	}
	return bindings, nil
}

func starLength(rest []rune, following []Token) int {
	next := nextLiteral(following)
	if next.Literal {
		return runeIndex(rest, []rune(next.Content))
	}
	fixed := lo.SumBy(following, Token.width)
	return max(len(rest)-fixed, 0)
}

func nextLiteral(tokens []Token) Token {
	t, _ := lo.Find(tokens, func(t Token) bool { return t.Literal })
	return t
}

func runeIndex(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if string(s[i:i+len(sub)]) == string(sub) {
			return i
		}
	}
	return -1
}

// Rename builds a filename from newTokens, filling the Nth wildcard with the
// Nth wildcard capture in bindings.
func Rename(bindings []Binding, newTokens []Token) string {
	captures := lo.FilterMap(bindings, func(b Binding, _ int) (string, bool) {
		return b.Matches, !b.Literal
	})
	var out strings.Builder
	n := 0
	for _, t := range newTokens {
		if t.Literal {
			out.WriteString(t.Content)
			continue
		}
		if n < len(captures) {
			out.WriteString(captures[n])
		}
		n++
	}
	return out.String()
}

// BindAndRename maps filename, which must match the old pattern, to its new
// name.
func BindAndRename(filename string, oldTokens, newTokens []Token) (string, error) {
	bindings, err := Bind(filename, oldTokens)
	if err != nil {
		return "", err
	}
	return Rename(bindings, newTokens), nil
}

// Match reports whether name matches pattern with the same reading as
// Tokenize: "[!...]" negates a class, "[?]"-style escapes match one
// character, a backslash is an ordinary character, and any other '[' is
// literal, so "[ab]" only matches the text "[ab]".
func Match(pattern, name string) (bool, error) {
	tokens, err := Tokenize(pattern)
	if err != nil {
		return false, err
	}
	ok, err := path.Match(translate(tokens), name)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrMalformedPattern, pattern, err)
	}
	return ok, nil
}

func translate(tokens []Token) string {
	var out strings.Builder
	for _, t := range tokens {
		switch {
		case t.Content == "[]]":
			out.WriteString(`\]`)
		case t.Literal:
			out.WriteString(translateLiteral(t.Content))
		case strings.HasPrefix(t.Content, "[!"):
			out.WriteString("[^" + strings.ReplaceAll(t.Content[2:], `\`, `\\`))
		default:
			out.WriteString(t.Content)
		}
	}
	return out.String()
}

// translateLiteral escapes backslashes and every '['. Tokenize never lets a
// class start inside a literal run.
func translateLiteral(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			out.WriteString(`\\`)
		case '[':
			out.WriteString(`\[`)
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
