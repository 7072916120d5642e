package linediff

import (
	"errors"
	"fmt"
	"strings"
)

// Marker classifies one line of an annotated diff stream.
type Marker byte

const (
	Keep      Marker = ' '
	Insert    Marker = '+'
	Remove    Marker = '-'
	Intraline Marker = '?'
)

var ErrMalformedLine = errors.New("malformed diff line")

// Valid reports whether m is one of the four known markers.
func (m Marker) Valid() bool {
	switch m {
	case Keep, Insert, Remove, Intraline:
		return true
	}
	return false
}

func (m Marker) String() string {
	switch m {
	case Keep:
		return "keep"
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Intraline:
		return "intraline"
	}
	return fmt.Sprintf("marker(%q)", byte(m))
}

// Line is one annotated line. For Intraline lines Text holds the hint
// columns (' ', '^', '+', '-') of the line right above it.
type Line struct {
	Marker Marker
	Text   string
}

// String renders the line in ndiff notation.
func (l Line) String() string {
	return string(l.Marker) + " " + l.Text
}

// ParseLine reads a line in ndiff notation: a marker character, a space,
// then the text.
func ParseLine(s string) (Line, error) {
	if len(s) < 2 || s[1] != ' ' {
		return Line{}, fmt.Errorf("%w: %q", ErrMalformedLine, s)
	}
	m := Marker(s[0])
	if !m.Valid() {
		return Line{}, fmt.Errorf("%w: unknown marker in %q", ErrMalformedLine, s)
	}
	return Line{Marker: m, Text: s[2:]}, nil
}

// Parse splits ndiff text into annotated lines. A trailing newline does not
// produce an extra line.
func Parse(text string) ([]Line, error) {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for i, s := range raw {
		line, err := ParseLine(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Format renders lines in ndiff notation, one per row.
func Format(lines []Line) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return b.String()
}
