// Package rename plans and applies batch renames described by a pair of
// glob patterns.
package rename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/chojs23/twoway/internal/glob"
)

var (
	ErrRenameCycle     = errors.New("rename cycle")
	ErrDuplicateTarget = errors.New("several files would be renamed to the same name")
	ErrTargetExists    = errors.New("target already exists")
)

// Action renames Source to Target.
type Action struct {
	Source string
	Target string
}

func (a Action) String() string {
	return a.Source + " -> " + a.Target
}

// Reorder sorts actions so that no action overwrites a file that a later
// action still has to move away. Each pass visits every action and moves it
// in front of the first earlier action targeting its source; there are at
// most len-1 passes and they stop once nothing moves. With exitOnConflict, an order that still clobbers a source (a
// cycle such as a->b, b->a) is an error.
func Reorder(actions []Action, exitOnConflict bool) ([]Action, error) {
	out := slices.Clone(actions)
	for pass := 1; pass < len(out); pass++ {
		moved := false
		for i := 1; i < len(out); i++ {
			j := clobbers(out, i)
			if j < 0 {
				continue
			}
			a := out[i]
			out = slices.Insert(slices.Delete(out, i, i+1), j, a)
			moved = true
		}
		if !moved {
			break
		}
	}

	if exitOnConflict {
		for i := 1; i < len(out); i++ {
			if clobbers(out, i) >= 0 {
				return nil, fmt.Errorf("%w: %q would be overwritten before it is renamed to %q",
					ErrRenameCycle, out[i].Source, out[i].Target)
			}
		}
	}
	return out, nil
}

// clobbers returns the index of the first action before i whose target is
// the source of action i, or -1.
func clobbers(actions []Action, i int) int {
	_, j, ok := lo.FindIndexOf(actions[:i], func(a Action) bool {
		return a.Target == actions[i].Source
	})
	if !ok {
		return -1
	}
	return j
}

// PlanOptions tunes Plan.
type PlanOptions struct {
	// Force allows targets that exist and are not renamed themselves.
	Force bool
	// Exists reports whether a target is already taken. Nil skips the check.
	Exists func(name string) bool
}

// Plan maps every filename matching oldPattern to its name under
// newPattern and orders the resulting actions. Names that map to
// themselves are dropped.
func Plan(filenames []string, oldPattern, newPattern string, opts PlanOptions) ([]Action, error) {
	oldTokens, newTokens, err := glob.Align(oldPattern, newPattern)
	if err != nil {
		return nil, err
	}

	var actions []Action
	for _, name := range filenames {
		ok, err := glob.Match(oldPattern, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		target, err := glob.BindAndRename(name, oldTokens, newTokens)
		if err != nil {
			return nil, fmt.Errorf("rename %q: %w", name, err)
		}
		if target == name {
			continue
		}
		actions = append(actions, Action{Source: name, Target: target})
	}
	if len(actions) == 0 {
		return nil, nil
	}

	targets := lo.Map(actions, func(a Action, _ int) string { return a.Target })
	if dups := lo.FindDuplicates(targets); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTarget, dups)
	}

	if opts.Exists != nil && !opts.Force {
		sources := lo.Map(actions, func(a Action, _ int) string { return a.Source })
		for _, target := range targets {
			if !lo.Contains(sources, target) && opts.Exists(target) {
				return nil, fmt.Errorf("%w: %q (use --force to overwrite)", ErrTargetExists, target)
			}
		}
	}

	return Reorder(actions, true)
}

// Candidates lists the regular files directly inside dir.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), e.Type().IsRegular()
	}), nil
}

// Exists returns a PlanOptions.Exists for names relative to dir.
func Exists(dir string) func(string) bool {
	return func(name string) bool {
		_, err := os.Lstat(filepath.Join(dir, name))
		return err == nil
	}
}

// Apply performs actions in order below dir, creating target directories
// as needed. It stops at the first failure; earlier renames stay done.
func Apply(ctx context.Context, dir string, actions []Action, log zerolog.Logger) error {
	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		source := filepath.Join(dir, a.Source)
		target := filepath.Join(dir, a.Target)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", a.Target, err)
		}
		if err := os.Rename(source, target); err != nil {
			return fmt.Errorf("rename %d/%d: %w", i+1, len(actions), err)
		}
		log.Info().Str("from", a.Source).Str("to", a.Target).Msg("renamed")
	}
	return nil
}
