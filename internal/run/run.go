package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/chojs23/twoway/internal/changeset"
	"github.com/chojs23/twoway/internal/cli"
	"github.com/chojs23/twoway/internal/config"
	"github.com/chojs23/twoway/internal/engine"
	"github.com/chojs23/twoway/internal/logger"
	"github.com/chojs23/twoway/internal/markers"
	"github.com/chojs23/twoway/internal/merge"
	"github.com/chojs23/twoway/internal/rename"
	"github.com/chojs23/twoway/internal/snapshot"
	"github.com/chojs23/twoway/internal/tui"
)

// Exit codes returned by Run.
const (
	ExitOK         = 0
	ExitUnresolved = 1
	ExitError      = 2
)

// Streams are the standard streams of one invocation.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (s Streams) interactive() bool {
	return isTerminal(s.In) && isTerminal(s.Out)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type session struct {
	opts    cli.Options
	cfg     config.Config
	log     zerolog.Logger
	theme   tui.Theme
	streams Streams
}

func Run(ctx context.Context, opts cli.Options) int {
	return RunWith(ctx, opts, Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

func RunWith(ctx context.Context, opts cli.Options, streams Streams) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(streams.Err, err)
		return ExitError
	}
	applyOverrides(&cfg, opts)

	log, err := logger.New(cfg.Log, streams.Err)
	if err != nil {
		fmt.Fprintln(streams.Err, err)
		return ExitError
	}
	log.Debug().Str("command", string(opts.Command)).Msg("starting")

	s := &session{opts: opts, cfg: cfg, log: log, theme: tui.NewTheme(cfg.Theme), streams: streams}

	var code int
	switch opts.Command {
	case cli.CommandMerge:
		code, err = s.merge(ctx)
	case cli.CommandCheck:
		code, err = s.check()
	case cli.CommandResolve:
		code, err = s.resolve(ctx)
	case cli.CommandMove:
		code, err = s.move(ctx)
	case cli.CommandStatus:
		code, err = s.status(ctx)
	case cli.CommandSnapshot:
		code, err = s.snapshot(ctx)
	default:
		err = fmt.Errorf("unknown command %q", opts.Command)
	}
	if err != nil {
		if errors.Is(err, merge.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(streams.Err, "Aborted.")
		} else {
			fmt.Fprintln(streams.Err, err)
		}
		return ExitError
	}
	return code
}

func applyOverrides(cfg *config.Config, opts cli.Options) {
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if opts.Operation != "" {
		cfg.Merge.Operation = opts.Operation
	}
	if opts.CharOperation != "" {
		cfg.Merge.CharOperation = opts.CharOperation
	}
	if opts.PreferOtherEOL != nil {
		cfg.Merge.PreferOtherEOL = *opts.PreferOtherEOL
	}
	if opts.Backup != nil {
		cfg.Merge.Backup = *opts.Backup
	}
	if opts.Force != nil {
		cfg.Rename.Force = *opts.Force
	}
}

func (s *session) merge(ctx context.Context) (int, error) {
	op, charOp, err := s.cfg.Merge.Operations()
	if err != nil {
		return ExitError, err
	}
	mopts := merge.Options{
		Operation:      op,
		CharOperation:  charOp,
		PreferOtherEOL: s.cfg.Merge.PreferOtherEOL,
		Logger:         logger.Component(s.log, "merge"),
	}

	if s.opts.DiffOnly {
		preview, err := engine.Preview(ctx, s.opts.OtherPath, s.opts.CurrentPath, mopts)
		if err != nil {
			return ExitError, err
		}
		printPreview(s.streams.Out, preview.Blocks, s.theme)
		return ExitOK, nil
	}

	if !s.opts.Markers && (op.IsAsk() || charOp.IsAsk()) {
		resolver, closeFn := s.resolver(ctx)
		defer closeFn()
		mopts.Resolver = resolver
	}

	out, err := engine.MergeFiles(ctx, engine.MergeRequest{
		OtherPath:   s.opts.OtherPath,
		CurrentPath: s.opts.CurrentPath,
		OutputPath:  s.opts.OutputPath,
		Options:     mopts,
		Markers:     s.opts.Markers,
		Backup:      s.cfg.Merge.Backup,
	})
	if err != nil {
		return ExitError, err
	}

	switch {
	case s.opts.Markers && out.Conflicts > 0:
		fmt.Fprintf(s.streams.Out, "Wrote %d conflict block(s) to %s.\n", out.Conflicts, out.Path)
	case out.Changed:
		fmt.Fprintf(s.streams.Out, "Merged into %s.\n", out.Path)
	default:
		fmt.Fprintf(s.streams.Out, "%s is up to date.\n", out.Path)
	}
	if out.BackupPath != "" {
		fmt.Fprintf(s.streams.Out, "Previous content kept in %s.\n", out.BackupPath)
	}
	return ExitOK, nil
}

// resolver picks how ask mode talks to the user: the full-screen picker
// when asked for, a line editor on a terminal, plain reads otherwise.
func (s *session) resolver(ctx context.Context) (merge.Resolver, func()) {
	if s.opts.TUI {
		return tui.NewResolver(ctx, s.theme), func() {}
	}
	if s.streams.interactive() {
		p := merge.NewLinerPrompter(s.streams.Out)
		return merge.NewPromptResolver(p, s.theme.PromptStyles()), func() { _ = p.Close() }
	}
	p := merge.NewStreamPrompter(s.streams.In, s.streams.Out)
	return merge.NewPromptResolver(p, s.theme.PromptStyles()), func() {}
}

func (s *session) check() (int, error) {
	resolved, err := engine.CheckResolvedFile(s.opts.Path)
	if err != nil {
		return ExitError, err
	}
	if resolved {
		return ExitOK, nil
	}
	return ExitUnresolved, nil
}

func (s *session) resolve(ctx context.Context) (int, error) {
	res, ok := markers.ParseResolution(s.opts.Take)
	if !ok {
		return ExitError, fmt.Errorf("invalid resolution %q", s.opts.Take)
	}
	if err := engine.ResolveFile(ctx, s.opts.Path, res, s.cfg.Merge.Backup); err != nil {
		return ExitError, err
	}
	fmt.Fprintf(s.streams.Out, "Resolved %s with %s.\n", s.opts.Path, res)
	return ExitOK, nil
}

func (s *session) move(ctx context.Context) (int, error) {
	dir := s.opts.Dir
	names, err := rename.Candidates(dir)
	if err != nil {
		return ExitError, err
	}
	actions, err := rename.Plan(names, s.opts.OldPattern, s.opts.NewPattern, rename.PlanOptions{
		Force:  s.cfg.Rename.Force,
		Exists: rename.Exists(dir),
	})
	if err != nil {
		return ExitError, err
	}
	if len(actions) == 0 {
		fmt.Fprintf(s.streams.Out, "No file in %s matches %s.\n", dir, s.opts.OldPattern)
		return ExitOK, nil
	}

	printActions(s.streams.Out, actions, s.theme)
	if s.opts.DryRun {
		return ExitOK, nil
	}
	if !s.opts.Yes {
		ok, err := s.confirm(fmt.Sprintf("Rename %d file(s)?", len(actions)))
		if err != nil {
			return ExitError, err
		}
		if !ok {
			fmt.Fprintln(s.streams.Out, "Nothing renamed.")
			return ExitOK, nil
		}
	}

	if err := rename.Apply(ctx, dir, actions, logger.Component(s.log, "rename")); err != nil {
		return ExitError, err
	}
	fmt.Fprintf(s.streams.Out, "Renamed %d file(s).\n", len(actions))
	return ExitOK, nil
}

func (s *session) status(ctx context.Context) (int, error) {
	previous, err := snapshot.Load(s.opts.Previous)
	if err != nil {
		return ExitError, err
	}

	var current map[string]changeset.PathInfo
	if s.opts.Current != "" {
		snap, err := snapshot.Load(s.opts.Current)
		if err != nil {
			return ExitError, err
		}
		current = snap.Paths
	} else {
		scanned, err := snapshot.Scan(ctx, s.opts.Dir, s.snapshotOptions())
		if err != nil {
			return ExitError, err
		}
		current = snapshot.MarkMissing(previous.Paths, scanned)
	}

	cs := changeset.Diff(previous.Paths, current)
	s.log.Debug().Str("changes", cs.String()).Msg("compared snapshots")
	printChangeSet(s.streams.Out, previous, cs, time.Now())
	return ExitOK, nil
}

func (s *session) snapshot(ctx context.Context) (int, error) {
	root, err := filepath.Abs(s.opts.Dir)
	if err != nil {
		return ExitError, err
	}
	paths, err := snapshot.Scan(ctx, root, s.snapshotOptions())
	if err != nil {
		return ExitError, err
	}
	snap := snapshot.Snapshot{Root: root, Created: time.Now().UTC(), Paths: paths}
	if err := snapshot.Save(s.opts.Output, snap); err != nil {
		return ExitError, err
	}
	fmt.Fprintf(s.streams.Out, "Recorded %d path(s) of %s in %s.\n", len(paths), root, s.opts.Output)
	return ExitOK, nil
}

func (s *session) snapshotOptions() snapshot.Options {
	exclude := s.cfg.Snapshot.Exclude
	if s.opts.Output != "" {
		// Never record the snapshot file itself.
		exclude = append(append([]string(nil), exclude...), filepath.Base(s.opts.Output))
	}
	return snapshot.Options{Exclude: exclude, SkipContent: s.cfg.Snapshot.SkipContent}
}
