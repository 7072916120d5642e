package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chojs23/twoway/internal/cli"
)

type harness struct {
	t      *testing.T
	dir    string
	config string
	out    bytes.Buffer
	err    bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, dir: t.TempDir()}
	h.config = h.write("config.yaml", "log:\n  level: error\n")
	return h
}

func (h *harness) write(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (h *harness) read(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(h.t, err)
	return string(data)
}

func (h *harness) run(opts cli.Options, input string) int {
	h.out.Reset()
	h.err.Reset()
	opts.ConfigPath = h.config
	return RunWith(context.Background(), opts, Streams{In: strings.NewReader(input), Out: &h.out, Err: &h.err})
}

func TestRunCheckResolvedExitCodes(t *testing.T) {
	h := newHarness(t)
	resolved := h.write("resolved.txt", "ok\n")
	unresolved := h.write("unresolved.txt", "<<<<<<< current\nours\n=======\ntheirs\n>>>>>>> other\n")
	malformed := h.write("malformed.txt", "<<<<<<< current\nours\n")

	assert.Equal(t, ExitOK, h.run(cli.Options{Command: cli.CommandCheck, Path: resolved}, ""))
	assert.Equal(t, ExitUnresolved, h.run(cli.Options{Command: cli.CommandCheck, Path: unresolved}, ""))
	assert.Equal(t, ExitError, h.run(cli.Options{Command: cli.CommandCheck, Path: malformed}, ""))
	assert.Contains(t, h.err.String(), "malformed")
}

func TestRunMergeWithConfigOperation(t *testing.T) {
	h := newHarness(t)
	h.config = h.write("config.yaml", "merge:\n  operation: remove\nlog:\n  level: error\n")
	other := h.write("other.txt", "a\nonly other\nb\n")
	current := h.write("current.txt", "a\nb\nonly current\n")

	code := h.run(cli.Options{Command: cli.CommandMerge, OtherPath: other, CurrentPath: current}, "")
	require.Equal(t, ExitOK, code, h.err.String())

	// remove drops current-only lines and never adds other-only ones.
	assert.Equal(t, "a\nb\n", h.read("current.txt"))
	assert.Contains(t, h.out.String(), "Merged into")
}

func TestRunMergeAskReadsAnswers(t *testing.T) {
	h := newHarness(t)
	other := h.write("other.txt", "keep\nalpha one\nbeta two\nend\n")
	current := h.write("current.txt", "keep\nXYZ\nQRS\nend\n")
	output := filepath.Join(h.dir, "merged.txt")

	// An unknown answer is asked again, then a user block ended by an
	// empty line.
	input := "?\nu\n\nreplacement\n\n"
	code := h.run(cli.Options{
		Command:     cli.CommandMerge,
		OtherPath:   other,
		CurrentPath: current,
		OutputPath:  output,
		Operation:   "ask",
	}, input)
	require.Equal(t, ExitOK, code, h.err.String())

	assert.Equal(t, "keep\nreplacement\nend\n", h.read("merged.txt"))
	assert.Contains(t, h.out.String(), "Line replacement")
	assert.Contains(t, h.out.String(), "alpha one")
	assert.Contains(t, h.out.String(), "XYZ")
	assert.Equal(t, "keep\nXYZ\nQRS\nend\n", h.read("current.txt"))
}

func TestRunMergeAskEndOfInput(t *testing.T) {
	h := newHarness(t)
	other := h.write("other.txt", "keep\nalpha one\nbeta two\n")
	current := h.write("current.txt", "keep\nXYZ\nQRS\n")

	code := h.run(cli.Options{Command: cli.CommandMerge, OtherPath: other, CurrentPath: current, Operation: "ask"}, "")
	assert.Equal(t, ExitError, code)
	assert.Equal(t, "keep\nXYZ\nQRS\n", h.read("current.txt"))
}

func TestRunMergeDiffOnlyAndMarkers(t *testing.T) {
	h := newHarness(t)
	other := h.write("other.txt", "a\nextra\n")
	current := h.write("current.txt", "a\n")

	code := h.run(cli.Options{Command: cli.CommandMerge, OtherPath: other, CurrentPath: current, DiffOnly: true}, "")
	require.Equal(t, ExitOK, code, h.err.String())
	assert.Contains(t, h.out.String(), "@@ REMOVE at line")
	assert.Contains(t, h.out.String(), "- extra")
	assert.Equal(t, "a\n", h.read("current.txt"))

	code = h.run(cli.Options{Command: cli.CommandMerge, OtherPath: other, CurrentPath: current, Markers: true}, "")
	require.Equal(t, ExitOK, code, h.err.String())
	assert.Contains(t, h.out.String(), "1 conflict block(s)")
	assert.Equal(t, ExitUnresolved, h.run(cli.Options{Command: cli.CommandCheck, Path: current}, ""))

	backup := true
	code = h.run(cli.Options{Command: cli.CommandResolve, Path: current, Take: "other", Backup: &backup}, "")
	require.Equal(t, ExitOK, code, h.err.String())
	assert.Equal(t, "a\nextra\n", h.read("current.txt"))
	assert.Contains(t, h.read("current.txt.twoway.bak"), "<<<<<<< current.txt")
}

func TestRunMoveConfirms(t *testing.T) {
	h := newHarness(t)
	h.write("pics/IMG_001.jpg", "1")
	h.write("pics/IMG_002.jpg", "2")
	h.write("pics/notes.txt", "n")
	dir := filepath.Join(h.dir, "pics")
	opts := cli.Options{Command: cli.CommandMove, OldPattern: "IMG_*.jpg", NewPattern: "photo_*.jpg", Dir: dir}

	require.Equal(t, ExitOK, h.run(opts, "n\n"))
	assert.Contains(t, h.out.String(), "Nothing renamed.")
	assert.FileExists(t, filepath.Join(dir, "IMG_001.jpg"))

	dry := opts
	dry.DryRun = true
	require.Equal(t, ExitOK, h.run(dry, ""))
	assert.Contains(t, h.out.String(), "IMG_002.jpg -> photo_002.jpg")
	assert.FileExists(t, filepath.Join(dir, "IMG_002.jpg"))

	require.Equal(t, ExitOK, h.run(opts, "maybe\ny\n"), h.err.String())
	assert.Equal(t, "1", h.read("pics/photo_001.jpg"))
	assert.Equal(t, "2", h.read("pics/photo_002.jpg"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	opts.Yes = true
	require.Equal(t, ExitOK, h.run(opts, ""))
	assert.Contains(t, h.out.String(), "No file in")
}

func TestRunMoveRefusesExistingTarget(t *testing.T) {
	h := newHarness(t)
	h.write("d/a.txt", "a")
	h.write("d/a.md", "taken")
	dir := filepath.Join(h.dir, "d")
	opts := cli.Options{Command: cli.CommandMove, OldPattern: "*.txt", NewPattern: "*.md", Dir: dir, Yes: true}

	assert.Equal(t, ExitError, h.run(opts, ""))
	assert.Contains(t, h.err.String(), "--force")

	force := true
	opts.Force = &force
	require.Equal(t, ExitOK, h.run(opts, ""), h.err.String())
	assert.Equal(t, "a", h.read("d/a.md"))
}

func TestRunSnapshotAndStatus(t *testing.T) {
	h := newHarness(t)
	h.write("tree/keep.txt", "same")
	h.write("tree/change.txt", "before")
	h.write("tree/gone.txt", "bye")
	h.write("tree/.git/HEAD", "ref")
	tree := filepath.Join(h.dir, "tree")
	snap := filepath.Join(h.dir, "snap.yaml")

	code := h.run(cli.Options{Command: cli.CommandSnapshot, Dir: tree, Output: snap}, "")
	require.Equal(t, ExitOK, code, h.err.String())
	assert.Contains(t, h.out.String(), "Recorded 3 path(s)")

	require.NoError(t, os.WriteFile(filepath.Join(tree, "change.txt"), []byte("after, longer"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(tree, "gone.txt")))
	h.write("tree/new.txt", "hello")

	code = h.run(cli.Options{Command: cli.CommandStatus, Previous: snap, Dir: tree}, "")
	require.Equal(t, ExitOK, code, h.err.String())
	out := h.out.String()
	assert.Contains(t, out, "A new.txt (5 B)")
	assert.Contains(t, out, "M change.txt (6 B -> 13 B)")
	assert.Contains(t, out, "D gone.txt")
	assert.NotContains(t, out, "keep.txt")
	assert.Contains(t, out, "1 added, 1 modified, 1 deleted")

	code = h.run(cli.Options{Command: cli.CommandStatus, Previous: snap, Current: snap}, "")
	require.Equal(t, ExitOK, code, h.err.String())
	assert.Contains(t, h.out.String(), "no changes")
}

func TestRunConfigErrors(t *testing.T) {
	h := newHarness(t)
	h.config = h.write("config.yaml", "merge:\n  operation: sideways\n")
	assert.Equal(t, ExitError, h.run(cli.Options{Command: cli.CommandCheck, Path: h.config}, ""))
	assert.Contains(t, h.err.String(), "invalid config")

	h.config = filepath.Join(h.dir, "missing.yaml")
	assert.Equal(t, ExitError, h.run(cli.Options{Command: cli.CommandCheck, Path: h.config}, ""))
}
