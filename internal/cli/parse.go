package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chojs23/twoway/internal/markers"
	"github.com/chojs23/twoway/internal/merge"
)

var ErrHelp = errors.New("help requested")
var ErrVersion = errors.New("version requested")

func Parse(args []string) (Options, error) {
	var opts Options
	var help *cobra.Command

	root := newRootCommand(&opts)
	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		help = c
	})
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	cmd, err := root.ExecuteC()
	if help != nil {
		return Options{Usage: help.UsageString()}, ErrHelp
	}
	if errors.Is(err, ErrVersion) {
		return Options{}, ErrVersion
	}
	if err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	}
	return opts, nil
}

// Usage returns the top-level help text.
func Usage() string {
	return strings.TrimSpace(newRootCommand(&Options{}).UsageString())
}

func newRootCommand(opts *Options) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "twoway",
		Short: "Two-way text merge, glob batch rename and directory change sets",
		Long: strings.TrimSpace(`
twoway merges an OTHER file into a CURRENT file block by block, renames
batches of files with shell-style patterns (IMG_*.jpg -> photo_*.jpg) and
reports what changed in a directory since a snapshot.`),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(c *cobra.Command, _ []string) error {
			if showVersion {
				return ErrVersion
			}
			return c.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVar(&showVersion, "version", false, "Show version")
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default $TWOWAY_CONFIG or the user config dir)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose logging to stderr")

	root.AddCommand(
		newMergeCommand(opts),
		newCheckCommand(opts),
		newResolveCommand(opts),
		newMoveCommand(opts),
		newStatusCommand(opts),
		newSnapshotCommand(opts),
	)
	return root
}

func newMergeCommand(opts *Options) *cobra.Command {
	var eol, backup bool

	cmd := &cobra.Command{
		Use:   "merge OTHER CURRENT",
		Short: "Merge OTHER into CURRENT",
		Long: strings.TrimSpace(`
Merge OTHER into CURRENT and write the result back into CURRENT, or into
the file given with -o.

Operations decide what happens to lines found in only one file:
  insert  keep lines only found in OTHER
  remove  drop lines only found in CURRENT
  both    keep lines only found in OTHER, drop lines only found in CURRENT
  ask     prompt for every replacement`),
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			opts.Command = CommandMerge
			opts.OtherPath = args[0]
			opts.CurrentPath = args[1]
			if err := normalizeOperation(&opts.Operation, "--op"); err != nil {
				return err
			}
			if err := normalizeOperation(&opts.CharOperation, "--char-op"); err != nil {
				return err
			}
			if opts.DiffOnly && opts.Markers {
				return errors.New("--diff-only and --markers are mutually exclusive")
			}
			opts.PreferOtherEOL = boolOverride(c.Flags(), "eol", eol)
			opts.Backup = boolOverride(c.Flags(), "backup", backup)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.OutputPath, "output", "o", "", "Write the result to this file instead of CURRENT")
	fs.StringVar(&opts.Operation, "op", "", "Line operation: insert|remove|both|ask")
	fs.StringVar(&opts.CharOperation, "char-op", "", "Character operation for single-line replacements: insert|remove|both|ask")
	fs.BoolVar(&eol, "eol", false, "Use the line ending of OTHER")
	fs.BoolVar(&opts.DiffOnly, "diff-only", false, "Print the merge blocks without writing")
	fs.BoolVar(&opts.Markers, "markers", false, "Write every difference as a conflict block")
	fs.BoolVar(&backup, "backup", false, "Keep the previous output as $OUTPUT.twoway.bak")
	fs.BoolVar(&opts.TUI, "tui", false, "Answer ask prompts in a full-screen picker")
	return cmd
}

func newCheckCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Exit 0 if FILE has no conflict markers, else 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts.Command = CommandCheck
			opts.Path = args[0]
			return nil
		},
	}
}

func newResolveCommand(opts *Options) *cobra.Command {
	var backup bool

	cmd := &cobra.Command{
		Use:   "resolve FILE --take current|other|both|none",
		Short: "Settle every conflict block of FILE non-interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts.Command = CommandResolve
			opts.Path = args[0]
			res, ok := markers.ParseResolution(opts.Take)
			if !ok || res == markers.ResolutionUnset {
				return fmt.Errorf("invalid --take: %q (expected current|other|both|none)", opts.Take)
			}
			opts.Take = string(res)
			opts.Backup = boolOverride(c.Flags(), "backup", backup)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Take, "take", "", "Side to keep: current|other|both|none")
	cmd.Flags().BoolVar(&backup, "backup", false, "Keep the previous content as $FILE.twoway.bak")
	_ = cmd.MarkFlagRequired("take")
	return cmd
}

func newMoveCommand(opts *Options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "move OLD NEW",
		Short: "Rename every file matching OLD to NEW",
		Long: strings.TrimSpace(`
Rename every file of --dir matching the pattern OLD to the pattern NEW.
Both patterns need the same wildcards in the same order:
  *      any run of characters
  ?      one character
  [...]  one character of a class, [!...] negates
Example: twoway move 'IMG_*.jpg' 'photo_*.jpg'`),
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			opts.Command = CommandMove
			opts.OldPattern = args[0]
			opts.NewPattern = args[1]
			opts.Force = boolOverride(c.Flags(), "force", force)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.Dir, "dir", ".", "Directory holding the files")
	fs.BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print the renames without performing them")
	fs.BoolVarP(&force, "force", "f", false, "Overwrite files outside the batch")
	fs.BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newStatusCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status PREVIOUS [CURRENT]",
		Short: "Show what changed since the snapshot PREVIOUS",
		Long: strings.TrimSpace(`
Compare the snapshot PREVIOUS with the snapshot CURRENT, or with a fresh
scan of --dir when CURRENT is omitted.`),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			opts.Command = CommandStatus
			opts.Previous = args[0]
			if len(args) == 2 {
				opts.Current = args[1]
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "Directory to scan when CURRENT is omitted")
	return cmd
}

func newSnapshotCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot -o FILE",
		Short: "Record sizes, times and hashes of --dir into FILE",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts.Command = CommandSnapshot
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "Directory to scan")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Snapshot file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func normalizeOperation(value *string, flag string) error {
	if *value == "" {
		return nil
	}
	op, err := merge.ParseOperation(*value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", flag, err)
	}
	*value = op.String()
	return nil
}

func boolOverride(fs *pflag.FlagSet, name string, value bool) *bool {
	if !fs.Changed(name) {
		return nil
	}
	return lo.ToPtr(value)
}
