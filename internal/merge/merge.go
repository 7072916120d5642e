package merge

import (
	"fmt"

	"github.com/chojs23/twoway/internal/linediff"
	"github.com/chojs23/twoway/internal/textio"
)

// Result is the merged content encoded like the current file.
type Result struct {
	Content  []byte
	Lines    []string
	EOL      string
	Encoding string
}

// Preview is the block model of a merge before reassembly.
type Preview struct {
	Blocks   []Block
	EOL      string
	Encoding string
}

// Merge combines other into current.
func Merge(other, current []byte, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	preview, err := Diff(other, current, opts)
	if err != nil {
		return Result{}, err
	}

	lines, err := Reassemble(preview.Blocks, opts)
	if err != nil {
		return Result{}, err
	}
	content, err := textio.Encode(lines, preview.EOL, preview.Encoding)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: content, Lines: lines, EOL: preview.EOL, Encoding: preview.Encoding}, nil
}

// Diff decodes both inputs and returns their block model without
// resolving anything.
func Diff(other, current []byte, opts Options) (Preview, error) {
	otherText, err := textio.Decode(other)
	if err != nil {
		return Preview{}, fmt.Errorf("other: %w", err)
	}
	currentText, err := textio.Decode(current)
	if err != nil {
		return Preview{}, fmt.Errorf("current: %w", err)
	}

	log := opts.Logger
	if otherText.EOL != "" && currentText.EOL != "" && otherText.EOL != currentText.EOL {
		log.Warn().
			Str("other", eolName(otherText.EOL)).
			Str("current", eolName(currentText.EOL)).
			Msg("differing end-of-line styles")
	}
	if otherText.MixedEOL || currentText.MixedEOL {
		log.Warn().Msg("mixed end-of-line styles in input")
	}

	blocks, err := BuildBlocks(linediff.New().Compare(otherText.Lines, currentText.Lines))
	if err != nil {
		return Preview{}, err
	}
	log.Debug().Int("blocks", len(blocks)).Msg("built merge blocks")

	return Preview{
		Blocks:   blocks,
		EOL:      chooseEOL(otherText.EOL, currentText.EOL, opts.PreferOtherEOL),
		Encoding: currentText.Encoding,
	}, nil
}

func chooseEOL(other, current string, preferOther bool) string {
	if preferOther && other != "" {
		return other
	}
	if current != "" {
		return current
	}
	if other != "" {
		return other
	}
	return "\n"
}

func eolName(eol string) string {
	switch eol {
	case "\r\n":
		return "CRLF"
	case "\r":
		return "CR"
	case "\n":
		return "LF"
	}
	return "none"
}
