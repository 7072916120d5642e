package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chojs23/twoway/internal/markers"
	"github.com/chojs23/twoway/internal/merge"
	"github.com/chojs23/twoway/internal/textio"
)

// BackupSuffix is appended to a file name to keep its previous content.
const BackupSuffix = ".twoway.bak"

// MergeRequest merges OtherPath into CurrentPath and writes the result to
// OutputPath, or back into CurrentPath when OutputPath is empty.
type MergeRequest struct {
	OtherPath   string
	CurrentPath string
	OutputPath  string
	Options     merge.Options
	// Markers writes every difference as a conflict block instead of
	// resolving it.
	Markers bool
	Backup  bool
}

func (r MergeRequest) output() string {
	if r.OutputPath != "" {
		return r.OutputPath
	}
	return r.CurrentPath
}

// Outcome reports what MergeFiles did.
type Outcome struct {
	Path       string
	Changed    bool
	Conflicts  int
	BackupPath string
}

func MergeFiles(ctx context.Context, req MergeRequest) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	other, current, err := readPair(req.OtherPath, req.CurrentPath)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Path: req.output()}
	var content []byte
	if req.Markers {
		content, out.Conflicts, err = renderMarkers(other, current, req)
	} else {
		var res merge.Result
		res, err = merge.Merge(other, current, req.Options)
		content = res.Content
	}
	if err != nil {
		return Outcome{}, err
	}
	req.Options.Logger.Debug().Str("output", out.Path).Int("bytes", len(content)).Msg("merged")

	previous, err := os.ReadFile(out.Path)
	switch {
	case err == nil && bytes.Equal(previous, content):
		return out, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return Outcome{}, fmt.Errorf("read output: %w", err)
	}

	if req.Backup && err == nil {
		out.BackupPath, err = writeBackup(out.Path, previous)
		if err != nil {
			return Outcome{}, err
		}
	}
	if err := os.WriteFile(out.Path, content, 0o644); err != nil {
		return Outcome{}, fmt.Errorf("write %s: %w", filepath.Base(out.Path), err)
	}
	out.Changed = true
	return out, nil
}

func renderMarkers(other, current []byte, req MergeRequest) ([]byte, int, error) {
	preview, err := merge.Diff(other, current, req.Options)
	if err != nil {
		return nil, 0, err
	}
	labels := markers.Labels{
		Current: filepath.Base(req.CurrentPath),
		Other:   filepath.Base(req.OtherPath),
	}
	doc := markers.FromBlocks(preview.Blocks, labels, preview.EOL)
	content, err := textio.Encode([]string{string(markers.Render(doc))}, "", preview.Encoding)
	if err != nil {
		return nil, 0, err
	}
	return content, len(doc.Conflicts), nil
}

// Preview returns the block model of merging otherPath into currentPath.
func Preview(ctx context.Context, otherPath, currentPath string, opts merge.Options) (merge.Preview, error) {
	if err := ctx.Err(); err != nil {
		return merge.Preview{}, err
	}
	other, current, err := readPair(otherPath, currentPath)
	if err != nil {
		return merge.Preview{}, err
	}
	return merge.Diff(other, current, opts)
}

func readPair(otherPath, currentPath string) ([]byte, []byte, error) {
	other, err := os.ReadFile(otherPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read other: %w", err)
	}
	current, err := os.ReadFile(currentPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read current: %w", err)
	}
	return other, current, nil
}

// CheckResolvedFile reports whether path holds no conflict markers.
func CheckResolvedFile(path string) (bool, error) {
	doc, _, err := parseFile(path)
	if err != nil {
		return false, err
	}
	return len(doc.Conflicts) == 0, nil
}

// ResolveFile settles every conflict block of path with res and rewrites
// the file. A file without conflicts is left untouched.
func ResolveFile(ctx context.Context, path string, res markers.Resolution, backup bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if res == markers.ResolutionUnset {
		return errors.New("internal: ResolveFile called without a resolution")
	}

	doc, text, err := parseFile(path)
	if err != nil {
		return err
	}
	if len(doc.Conflicts) == 0 {
		return nil
	}

	resolved, err := markers.RenderResolved(markers.ResolveAll(doc, res))
	if err != nil {
		return err
	}
	// Verify no conflict markers remain.
	if !markers.IsResolved(string(resolved)) {
		return errors.New("resolution output still contains conflict markers")
	}
	content, err := textio.Encode([]string{string(resolved)}, "", text.Encoding)
	if err != nil {
		return err
	}

	if backup {
		original, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if _, err := writeBackup(path, original); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func parseFile(path string) (markers.Document, textio.Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return markers.Document{}, textio.Text{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	text, err := textio.Decode(data)
	if err != nil {
		return markers.Document{}, textio.Text{}, err
	}
	// Markers only ever appear in decoded text; the raw bytes may be UTF-16.
	eol := text.EOL
	if eol == "" {
		eol = "\n"
	}
	doc, err := markers.Parse(strings.Join(text.Lines, eol))
	if err != nil {
		return markers.Document{}, textio.Text{}, err
	}
	return doc, text, nil
}

func writeBackup(path string, content []byte) (string, error) {
	bak := path + BackupSuffix
	if err := os.WriteFile(bak, content, 0o644); err != nil {
		return "", fmt.Errorf("write backup %s: %w", filepath.Base(bak), err)
	}
	return bak, nil
}
