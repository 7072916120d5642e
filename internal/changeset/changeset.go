// Package changeset compares two path snapshots.
package changeset

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// PathInfo is what a snapshot knows about one path. A nil Size marks a path
// recorded as deleted.
type PathInfo struct {
	NameHash string  `yaml:"name_hash"`
	Size     *int64  `yaml:"size"`
	MTime    int64   `yaml:"mtime"`
	Hash     *string `yaml:"hash,omitempty"`
}

func (p PathInfo) Deleted() bool { return p.Size == nil }

func (p PathInfo) differs(o PathInfo) bool {
	return *p.Size != *o.Size || p.MTime != o.MTime || !equalHash(p.Hash, o.Hash)
}

func equalHash(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ChangeSet groups paths by kind of change. The three maps never share a
// key.
type ChangeSet struct {
	Additions     map[string]PathInfo
	Deletions     map[string]PathInfo
	Modifications map[string]PathInfo
}

// Diff compares previous against current.
//
// A path missing from current is no longer tracked and is not reported.
// A current entry with a nil Size is a deletion (reported with the previous
// entry); a previous deletion marker followed by a real entry is an
// addition, as is any path only in current. Size, mtime or hash changes
// are modifications, reported with the current entry.
func Diff(previous, current map[string]PathInfo) ChangeSet {
	cs := ChangeSet{
		Additions:     map[string]PathInfo{},
		Deletions:     map[string]PathInfo{},
		Modifications: map[string]PathInfo{},
	}
	for path, prev := range previous {
		cur, ok := current[path]
		switch {
		case !ok:
		case cur.Deleted():
			cs.Deletions[path] = prev
		case prev.Deleted():
			cs.Additions[path] = cur
		case prev.differs(cur):
			cs.Modifications[path] = cur
		}
	}
	for path, cur := range current {
		if _, ok := previous[path]; !ok {
			cs.Additions[path] = cur
		}
	}

	if both := lo.Intersect(lo.Keys(cs.Additions), lo.Keys(cs.Deletions)); len(both) > 0 {
		panic(fmt.Sprintf("changeset: paths both added and deleted: %q", both))
	}
	return cs
}

// Paths returns the sorted paths of each kind.
func (cs ChangeSet) Paths() (additions, deletions, modifications []string) {
	return sortedKeys(cs.Additions), sortedKeys(cs.Deletions), sortedKeys(cs.Modifications)
}

func (cs ChangeSet) Len() int {
	return len(cs.Additions) + len(cs.Deletions) + len(cs.Modifications)
}

func (cs ChangeSet) Empty() bool { return cs.Len() == 0 }

func (cs ChangeSet) String() string {
	return fmt.Sprintf("%d added, %d deleted, %d modified", len(cs.Additions), len(cs.Deletions), len(cs.Modifications))
}

func sortedKeys(m map[string]PathInfo) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
