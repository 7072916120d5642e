// Package snapshot records path metadata of a directory tree so two points
// in time can be compared with changeset.Diff.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/chojs23/twoway/internal/changeset"
	"github.com/chojs23/twoway/internal/glob"
)

// Snapshot is the on-disk form of a scan.
type Snapshot struct {
	Root    string                        `yaml:"root"`
	Created time.Time                     `yaml:"created"`
	Paths   map[string]changeset.PathInfo `yaml:"paths"`
}

type Options struct {
	// Exclude holds glob patterns matched against both the slash separated
	// relative path and the base name. Matching directories are skipped.
	Exclude []string
	// SkipContent leaves Hash unset instead of reading every file.
	SkipContent bool
}

// Scan walks root and records every regular file under it, keyed by its
// slash separated path relative to root.
func Scan(ctx context.Context, root string, opts Options) (map[string]changeset.PathInfo, error) {
	paths := map[string]changeset.PathInfo{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		excluded, err := isExcluded(rel, d.Name(), opts.Exclude)
		if err != nil {
			return err
		}
		if excluded {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		entry := changeset.PathInfo{
			NameHash: digest([]byte(rel)),
			Size:     lo.ToPtr(info.Size()),
			MTime:    info.ModTime().UnixMilli(),
		}
		if !opts.SkipContent {
			sum, err := hashFile(p)
			if err != nil {
				return err
			}
			entry.Hash = &sum
		}
		paths[rel] = entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return paths, nil
}

func isExcluded(rel, base string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		for _, name := range []string{rel, base} {
			ok, err := glob.Match(pattern, name)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarkMissing adds a deletion marker to current for every live path of
// previous that current lacks, so changeset.Diff reports it as deleted.
func MarkMissing(previous, current map[string]changeset.PathInfo) map[string]changeset.PathInfo {
	out := lo.Assign(current)
	for path, prev := range previous {
		if _, ok := current[path]; ok || prev.Deleted() {
			continue
		}
		marker := prev
		marker.Size = nil
		marker.Hash = nil
		out[path] = marker
	}
	return out
}

func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.Paths == nil {
		snap.Paths = map[string]changeset.PathInfo{}
	}
	return snap, nil
}

func Save(path string, snap Snapshot) error {
	if snap.Paths == nil {
		return errors.New("snapshot has no paths map")
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
