package merge

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Options controls a merge.
type Options struct {
	// Operation applies to whole lines, CharOperation to characters of
	// single-line replacements.
	Operation     Operation
	CharOperation Operation
	// PreferOtherEOL joins the output with the other file's line ending
	// instead of the current file's.
	PreferOtherEOL bool
	// Resolver answers conflicts when either operation is OpAsk.
	Resolver Resolver
	Logger   zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Operation:     OpBoth,
		CharOperation: OpBoth,
		Logger:        zerolog.Nop(),
	}
}

func (o Options) validate() error {
	if err := o.Operation.validate(); err != nil {
		return fmt.Errorf("line operation: %w", err)
	}
	if err := o.CharOperation.validate(); err != nil {
		return fmt.Errorf("character operation: %w", err)
	}
	if (o.Operation.IsAsk() || o.CharOperation.IsAsk()) && o.Resolver == nil {
		return ErrNoResolver
	}
	return nil
}

// Reassemble linearizes blocks into output lines.
//
//	Keep                      always emitted
//	Insert                    emitted unless the operation removes
//	Remove                    emitted if the operation inserts
//	Replace, one line a side  character merge under CharOperation
//	Replace, otherwise        ask: resolver; remove: nothing;
//	                          both: own lines; insert: replaced lines then own lines
func Reassemble(blocks []Block, opts Options) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	op := opts.Operation

	var out []string
	for _, b := range blocks {
		switch b.Type {
		case Keep:
			out = append(out, b.Lines...)
		case Insert:
			if !op.Removes() {
				out = append(out, b.Lines...)
			}
		case Remove:
			if op.Inserts() {
				out = append(out, b.Lines...)
			}
		case Replace:
			if b.Replaces == nil {
				return nil, fmt.Errorf("internal: replace block at line %d has nothing to replace", b.Line)
			}
			if len(b.Lines) == 1 && len(b.Replaces.Lines) == 1 {
				merged, err := MergeLine(b.Lines[0], b.Replaces.Lines[0], opts.CharOperation, opts.Resolver)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", b.Line+1, err)
				}
				out = append(out, merged)
				continue
			}
			switch op {
			case OpAsk:
				lines, err := opts.Resolver.ResolveLines(LineConflict{
					Line:   b.Line,
					Theirs: b.Lines,
					Mine:   b.Replaces.Lines,
				})
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", b.Line+1, err)
				}
				out = append(out, lines...)
			case OpRemove:
			case OpBoth:
				out = append(out, b.Lines...)
			case OpInsert:
				out = append(out, b.Replaces.Lines...)
				out = append(out, b.Lines...)
			}
		}
	}
	return out, nil
}
