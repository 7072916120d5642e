package markers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chojs23/twoway/internal/textio"
)

var ErrMalformedConflict = errors.New("malformed conflict markers")

const (
	markStart = "<<<<<<<"
	markBase  = "|||||||"
	markMid   = "======="
	markEnd   = ">>>>>>>"
)

type parseState int

const (
	inText parseState = iota
	inCurrent
	inOther
)

// Parse splits decoded content into text segments and conflict segments.
//
// It is strict: a start marker must be followed by a separator and an end
// marker. Base sections ("|||||||") belong to three-way merges and are
// rejected.
func Parse(content string) (Document, error) {
	eol, _ := textio.DetectEOL(content)
	if eol == "" {
		eol = "\n"
	}
	doc := Document{EOL: eol}

	lines := strings.Split(content, eol)

	var (
		state    parseState
		text     []string
		conflict ConflictSegment
		startAt  int
	)
	for i, line := range lines {
		switch state {
		case inText:
			if !strings.HasPrefix(line, markStart) {
				text = append(text, line)
				continue
			}
			if len(text) > 0 {
				doc.Segments = append(doc.Segments, TextSegment{Lines: text})
				text = nil
			}
			conflict = ConflictSegment{CurrentLabel: label(line, markStart)}
			startAt = i + 1
			state = inCurrent
		case inCurrent:
			switch {
			case strings.HasPrefix(line, markBase):
				return Document{}, fmt.Errorf("%w: base section at line %d (three-way markers)", ErrMalformedConflict, i+1)
			case strings.HasPrefix(line, markMid):
				state = inOther
			case strings.HasPrefix(line, markStart), strings.HasPrefix(line, markEnd):
				return Document{}, fmt.Errorf("%w: expected ======= before line %d", ErrMalformedConflict, i+1)
			default:
				conflict.Current = append(conflict.Current, line)
			}
		case inOther:
			switch {
			case strings.HasPrefix(line, markEnd):
				conflict.OtherLabel = label(line, markEnd)
				doc.Conflicts = append(doc.Conflicts, ConflictRef{SegmentIndex: len(doc.Segments)})
				doc.Segments = append(doc.Segments, conflict)
				state = inText
			case strings.HasPrefix(line, markStart), strings.HasPrefix(line, markMid):
				return Document{}, fmt.Errorf("%w: expected >>>>>>> before line %d", ErrMalformedConflict, i+1)
			default:
				conflict.Other = append(conflict.Other, line)
			}
		}
	}
	if state != inText {
		return Document{}, fmt.Errorf("%w: conflict opened at line %d is not closed", ErrMalformedConflict, startAt)
	}
	if len(text) > 0 {
		doc.Segments = append(doc.Segments, TextSegment{Lines: text})
	}
	return doc, nil
}

func label(line, mark string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, mark))
}

// IsResolved reports whether content holds no conflict. Malformed markers
// count as unresolved.
func IsResolved(content string) bool {
	doc, err := Parse(content)
	return err == nil && len(doc.Conflicts) == 0
}
