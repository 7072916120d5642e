package merge

import (
	"errors"
	"fmt"

	"github.com/chojs23/twoway/internal/linediff"
)

var ErrMalformedDiff = errors.New("malformed diff line")

// BuildBlocks groups an annotated line stream into blocks.
//
// Consecutive lines with the same marker form one block. A Remove block
// directly followed by an Insert block becomes a single Replace block that
// carries the inserted lines and points at the removed block. Intraline
// hints never become blocks; they are classified and attached to the block
// emitted last, and they do not count toward line offsets.
func BuildBlocks(lines []linediff.Line) ([]Block, error) {
	var (
		blocks  []Block
		pending []string
		last    = linediff.Keep
		offset  int
	)

	flush := func(no int) {
		start := no - offset - len(pending)
		switch last {
		case linediff.Keep:
			if len(pending) > 0 {
				blocks = append(blocks, Block{Type: Keep, Lines: pending, Line: start})
			}
		case linediff.Remove:
			blocks = append(blocks, Block{Type: Remove, Lines: pending, Line: start})
		case linediff.Insert:
			inserted := Block{Type: Insert, Lines: pending, Line: start}
			if n := len(blocks); n > 0 && blocks[n-1].Type == Remove {
				removed := blocks[n-1]
				blocks[n-1] = Block{Type: Replace, Lines: inserted.Lines, Line: start, Replaces: &removed}
				return
			}
			blocks = append(blocks, inserted)
		case linediff.Intraline:
			r := Classify(pending[0])
			if n := len(blocks); n > 0 {
				blocks[n-1].Changes = &r
			}
			offset++
		}
	}

	for no, line := range lines {
		if !line.Marker.Valid() {
			return nil, fmt.Errorf("%w: line %d has marker %q", ErrMalformedDiff, no+1, byte(line.Marker))
		}
		if line.Marker == last {
			pending = append(pending, line.Text)
			continue
		}
		flush(no)
		last = line.Marker
		pending = []string{line.Text}
	}
	if len(pending) > 0 {
		flush(len(lines))
	}
	return blocks, nil
}
