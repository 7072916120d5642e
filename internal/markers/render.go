package markers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chojs23/twoway/internal/merge"
)

var ErrUnresolved = errors.New("unresolved")

// FromBlocks turns a merge preview into a document where every block that
// is not Keep becomes a conflict. Insert blocks only exist in the current
// file, Remove blocks only in the other one.
func FromBlocks(blocks []merge.Block, labels Labels, eol string) Document {
	if labels.Current == "" {
		labels.Current = DefaultCurrentLabel
	}
	if labels.Other == "" {
		labels.Other = DefaultOtherLabel
	}
	doc := Document{EOL: eol}
	for _, b := range blocks {
		c := ConflictSegment{CurrentLabel: labels.Current, OtherLabel: labels.Other}
		switch b.Type {
		case merge.Keep:
			doc.Segments = append(doc.Segments, TextSegment{Lines: b.Lines})
			continue
		case merge.Insert:
			c.Current = b.Lines
		case merge.Remove:
			c.Other = b.Lines
		case merge.Replace:
			c.Current = b.Lines
			if b.Replaces != nil {
				c.Other = b.Replaces.Lines
			}
		default:
			continue
		}
		doc.Conflicts = append(doc.Conflicts, ConflictRef{SegmentIndex: len(doc.Segments)})
		doc.Segments = append(doc.Segments, c)
	}
	return doc
}

// Render writes the document with conflict markers around every conflict.
// Lines are joined with doc.EOL, so a trailing empty line yields a trailing
// line break.
func Render(doc Document) []byte {
	var lines []string
	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case TextSegment:
			lines = append(lines, s.Lines...)
		case ConflictSegment:
			lines = append(lines, strings.TrimSpace(markStart+" "+s.CurrentLabel))
			lines = append(lines, s.Current...)
			lines = append(lines, markMid)
			lines = append(lines, s.Other...)
			lines = append(lines, strings.TrimSpace(markEnd+" "+s.OtherLabel))
		}
	}
	return []byte(strings.Join(lines, eolOf(doc)))
}

// RenderResolved writes the document with every conflict replaced by its
// chosen side.
func RenderResolved(doc Document) ([]byte, error) {
	var lines []string
	for i, seg := range doc.Segments {
		switch s := seg.(type) {
		case TextSegment:
			lines = append(lines, s.Lines...)
		case ConflictSegment:
			switch s.Resolution {
			case ResolutionCurrent:
				lines = append(lines, s.Current...)
			case ResolutionOther:
				lines = append(lines, s.Other...)
			case ResolutionBoth:
				lines = append(lines, s.Current...)
				lines = append(lines, s.Other...)
			case ResolutionNone:
			default:
				return nil, fmt.Errorf("%w: conflict in segment %d has no resolution", ErrUnresolved, i)
			}
		default:
			return nil, fmt.Errorf("unknown segment type %T", seg)
		}
	}
	return []byte(strings.Join(lines, eolOf(doc))), nil
}

// ResolveAll sets every conflict of doc to res.
func ResolveAll(doc Document, res Resolution) Document {
	for _, ref := range doc.Conflicts {
		c, ok := doc.Segments[ref.SegmentIndex].(ConflictSegment)
		if !ok {
			continue
		}
		c.Resolution = res
		doc.Segments[ref.SegmentIndex] = c
	}
	return doc
}

func eolOf(doc Document) string {
	if doc.EOL == "" {
		return "\n"
	}
	return doc.EOL
}
