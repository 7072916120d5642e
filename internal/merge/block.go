package merge

import (
	"fmt"
	"strings"
)

// BlockType classifies a Block or a Range.
type BlockType int

const (
	Keep BlockType = iota
	Insert
	Remove
	Replace
	// Move is reserved for moved blocks and never produced.
	Move
)

func (t BlockType) String() string {
	switch t {
	case Keep:
		return "KEEP"
	case Insert:
		return "INSERT"
	case Remove:
		return "REMOVE"
	case Replace:
		return "REPLACE"
	case Move:
		return "MOVE"
	}
	return fmt.Sprintf("BlockType(%d)", int(t))
}

// Range lists the rune columns flagged by an intraline hint.
type Range struct {
	Type    BlockType
	Indexes []int
}

// Block is a run of lines (or, for character merges, a single run of
// characters) sharing one classification.
//
// Replaces is only set on Replace blocks and points to the superseded side.
// It is owned by the block and never nested further. Changes is only set
// when an intraline hint followed the block.
type Block struct {
	Type     BlockType
	Lines    []string
	Line     int
	Replaces *Block
	Changes  *Range
}

func (b Block) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "%s@%d%q", b.Type, b.Line, b.Lines)
	if b.Replaces != nil {
		fmt.Fprintf(&s, " replaces %q", b.Replaces.Lines)
	}
	if b.Changes != nil {
		fmt.Fprintf(&s, " changes %s%v", b.Changes.Type, b.Changes.Indexes)
	}
	return s.String()
}

// Classify turns an intraline hint row (prefix already stripped) into a
// Range. '^' wins over '+', which wins over '-'; a row without any of them
// is a Keep range with no indexes.
func Classify(hint string) Range {
	for _, c := range []struct {
		mark rune
		typ  BlockType
	}{
		{'^', Replace},
		{'+', Insert},
		{'-', Remove},
	} {
		if !strings.ContainsRune(hint, c.mark) {
			continue
		}
		var indexes []int
		col := 0
		for _, r := range hint {
			if r == c.mark {
				indexes = append(indexes, col)
			}
			col++
		}
		return Range{Type: c.typ, Indexes: indexes}
	}
	return Range{Type: Keep}
}
