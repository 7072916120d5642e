package merge

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"
)

func newCharDiffer() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return dmp
}

// LineBlocks splits a character diff of other against current into blocks
// holding one string each. Characters only in other form Remove blocks,
// characters only in current form Insert blocks. A Remove run directly
// followed by an Insert run becomes a Replace carrying the removed run and
// pointing at the inserted one.
func LineBlocks(other, current string) []Block {
	var blocks []Block
	pos := 0
	for _, d := range newCharDiffer().DiffMain(other, current, false) {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			blocks = append(blocks, Block{Type: Keep, Lines: []string{d.Text}, Line: pos})
		case diffmatchpatch.DiffDelete:
			blocks = append(blocks, Block{Type: Remove, Lines: []string{d.Text}, Line: pos})
		case diffmatchpatch.DiffInsert:
			inserted := Block{Type: Insert, Lines: []string{d.Text}, Line: pos}
			if n := len(blocks); n > 0 && blocks[n-1].Type == Remove {
				blocks[n-1] = Block{Type: Replace, Lines: blocks[n-1].Lines, Line: blocks[n-1].Line, Replaces: &inserted}
				break
			}
			blocks = append(blocks, inserted)
		}
		pos += utf8.RuneCountInString(d.Text)
	}
	return blocks
}

// MergeLine merges two versions of a single line character by character,
// using the same rules as Reassemble with op applied to character runs.
func MergeLine(other, current string, op Operation, r Resolver) (string, error) {
	if err := op.validate(); err != nil {
		return "", err
	}
	if op.IsAsk() && r == nil {
		return "", ErrNoResolver
	}

	blocks := LineBlocks(other, current)
	var out strings.Builder
	for i, b := range blocks {
		switch b.Type {
		case Keep:
			out.WriteString(b.Lines[0])
		case Insert:
			if !op.Removes() {
				out.WriteString(b.Lines[0])
			}
		case Remove:
			if op.Inserts() {
				out.WriteString(b.Lines[0])
			}
		case Replace:
			switch op {
			case OpAsk:
				s, err := r.ResolveChars(CharConflict{
					Other:   other,
					Current: current,
					Column:  displayColumn(blocks[:i]),
					Theirs:  b.Lines[0],
					Mine:    b.Replaces.Lines[0],
				})
				if err != nil {
					return "", err
				}
				out.WriteString(s)
			case OpRemove:
			case OpBoth:
				out.WriteString(b.Lines[0])
			case OpInsert:
				out.WriteString(b.Replaces.Lines[0])
				out.WriteString(b.Lines[0])
			}
		}
	}
	return out.String(), nil
}

// displayColumn is the terminal width of the part of "other" covered by
// blocks.
func displayColumn(blocks []Block) int {
	width := 0
	for _, b := range blocks {
		if b.Type == Insert {
			continue
		}
		width += runewidth.StringWidth(b.Lines[0])
	}
	return width
}
