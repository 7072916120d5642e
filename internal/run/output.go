package run

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chojs23/twoway/internal/changeset"
	"github.com/chojs23/twoway/internal/merge"
	"github.com/chojs23/twoway/internal/rename"
	"github.com/chojs23/twoway/internal/snapshot"
	"github.com/chojs23/twoway/internal/tui"
)

// printPreview writes blocks as a unified listing: "  " kept, "+ " only in
// the current file, "- " only in the other file.
func printPreview(w io.Writer, blocks []merge.Block, theme tui.Theme) {
	for _, b := range blocks {
		if b.Type != merge.Keep {
			fmt.Fprintln(w, theme.Help.Render(fmt.Sprintf("@@ %s at line %d", b.Type, b.Line+1)))
		}
		switch b.Type {
		case merge.Keep:
			for _, line := range b.Lines {
				fmt.Fprintln(w, "  "+line)
			}
		case merge.Insert:
			printSide(w, "+ ", b.Lines, theme.CurrentLine.Render)
		case merge.Remove:
			printSide(w, "- ", b.Lines, theme.OtherLine.Render)
		case merge.Replace:
			if b.Replaces != nil {
				printSide(w, "- ", b.Replaces.Lines, theme.OtherLine.Render)
			}
			printSide(w, "+ ", b.Lines, theme.CurrentLine.Render)
		}
	}
}

func printSide(w io.Writer, prefix string, lines []string, render func(...string) string) {
	for _, line := range lines {
		fmt.Fprintln(w, render(prefix+line))
	}
}

func printActions(w io.Writer, actions []rename.Action, theme tui.Theme) {
	for _, a := range actions {
		fmt.Fprintf(w, "%s -> %s\n", theme.OtherLine.Render(a.Source), theme.CurrentLine.Render(a.Target))
	}
}

func printChangeSet(w io.Writer, previous snapshot.Snapshot, cs changeset.ChangeSet, now time.Time) {
	fmt.Fprintf(w, "Changes since snapshot of %s (%s):\n", previous.Root,
		humanize.RelTime(previous.Created, now, "ago", "from now"))
	if cs.Empty() {
		fmt.Fprintln(w, "  no changes")
		return
	}

	additions, deletions, modifications := cs.Paths()
	for _, path := range additions {
		fmt.Fprintf(w, "  A %s (%s)\n", path, size(cs.Additions[path]))
	}
	for _, path := range modifications {
		fmt.Fprintf(w, "  M %s (%s -> %s)\n", path, size(previous.Paths[path]), size(cs.Modifications[path]))
	}
	for _, path := range deletions {
		fmt.Fprintf(w, "  D %s\n", path)
	}
	fmt.Fprintf(w, "%d added, %d modified, %d deleted\n", len(additions), len(modifications), len(deletions))
}

func size(info changeset.PathInfo) string {
	if info.Size == nil {
		return "-"
	}
	return humanize.Bytes(uint64(*info.Size))
}
