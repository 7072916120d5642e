package linediff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultCutoff is the similarity ratio above which a removed and an added
// line are reported as a changed pair with intraline hints.
const DefaultCutoff = 0.75

// Differ compares two line sequences and produces an annotated stream in
// the shape of Python's ndiff: unchanged lines, removed lines of "other",
// added lines of "current", and hint lines below similar changed pairs.
type Differ struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	cutoff float64
}

func New() *Differ {
	dmp := diffmatchpatch.New()
	// Exact results matter more than speed for merges.
	dmp.DiffTimeout = 0
	return &Differ{dmp: dmp, cutoff: DefaultCutoff}
}

// WithCutoff returns a copy of d using the given similarity cutoff.
func (d *Differ) WithCutoff(cutoff float64) *Differ {
	return &Differ{dmp: d.dmp, cutoff: cutoff}
}

// Compare annotates other against current. Removed lines come from other,
// inserted lines from current. Hint rows use '^' for replaced columns, '-'
// for columns only in the removed line and '+' for columns only in the
// added one.
func (d *Differ) Compare(other, current []string) []Line {
	a, b := encodeLines(other, current)
	diffs := d.dmp.DiffMainRunes(a, b, false)

	out := make([]Line, 0, len(other)+len(current))
	oi, ci := 0, 0
	for i := 0; i < len(diffs); i++ {
		n := utf8.RuneCountInString(diffs[i].Text)
		switch diffs[i].Type {
		case diffmatchpatch.DiffEqual:
			for _, text := range current[ci : ci+n] {
				out = append(out, Line{Marker: Keep, Text: text})
			}
			oi += n
			ci += n
		case diffmatchpatch.DiffDelete:
			removed := other[oi : oi+n]
			oi += n
			var added []string
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				m := utf8.RuneCountInString(diffs[i+1].Text)
				added = current[ci : ci+m]
				ci += m
				i++
			}
			out = append(out, d.replace(removed, added)...)
		case diffmatchpatch.DiffInsert:
			added := current[ci : ci+n]
			ci += n
			var removed []string
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffDelete {
				m := utf8.RuneCountInString(diffs[i+1].Text)
				removed = other[oi : oi+m]
				oi += m
				i++
			}
			out = append(out, d.replace(removed, added)...)
		}
	}
	return out
}

// replace annotates a region where removed lines were superseded by added
// lines. Equal sized regions of similar lines are interleaved with hints,
// anything else is dumped as all removals followed by all insertions.
func (d *Differ) replace(removed, added []string) []Line {
	out := make([]Line, 0, len(removed)+len(added))
	if len(removed) == len(added) && d.allSimilar(removed, added) {
		for i := range removed {
			aTags, bTags := d.hints(removed[i], added[i])
			out = append(out, Line{Marker: Remove, Text: removed[i]})
			if aTags != "" {
				out = append(out, Line{Marker: Intraline, Text: aTags})
			}
			out = append(out, Line{Marker: Insert, Text: added[i]})
			if bTags != "" {
				out = append(out, Line{Marker: Intraline, Text: bTags})
			}
		}
		return out
	}
	for _, text := range removed {
		out = append(out, Line{Marker: Remove, Text: text})
	}
	for _, text := range added {
		out = append(out, Line{Marker: Insert, Text: text})
	}
	return out
}

func (d *Differ) allSimilar(a, b []string) bool {
	for i := range a {
		if d.Ratio(a[i], b[i]) <= d.cutoff {
			return false
		}
	}
	return true
}

// Ratio returns 2*M/T where M counts runes common to both strings and T is
// the total rune count, 1 for two empty strings.
func (d *Differ) Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	common := 0
	for _, diff := range d.dmp.DiffMain(a, b, false) {
		if diff.Type == diffmatchpatch.DiffEqual {
			common += utf8.RuneCountInString(diff.Text)
		}
	}
	return 2 * float64(common) / float64(total)
}

// hints builds the two hint rows for a changed pair. Trailing blanks are
// trimmed; a row without marks comes back empty.
func (d *Differ) hints(a, b string) (string, string) {
	var aTags, bTags strings.Builder
	diffs := d.dmp.DiffMain(a, b, false)
	for i := 0; i < len(diffs); i++ {
		n := utf8.RuneCountInString(diffs[i].Text)
		switch diffs[i].Type {
		case diffmatchpatch.DiffEqual:
			aTags.WriteString(strings.Repeat(" ", n))
			bTags.WriteString(strings.Repeat(" ", n))
		case diffmatchpatch.DiffDelete:
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				aTags.WriteString(strings.Repeat("^", n))
				bTags.WriteString(strings.Repeat("^", utf8.RuneCountInString(diffs[i+1].Text)))
				i++
				continue
			}
			aTags.WriteString(strings.Repeat("-", n))
		case diffmatchpatch.DiffInsert:
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffDelete {
				bTags.WriteString(strings.Repeat("^", n))
				aTags.WriteString(strings.Repeat("^", utf8.RuneCountInString(diffs[i+1].Text)))
				i++
				continue
			}
			bTags.WriteString(strings.Repeat("+", n))
		}
	}
	return strings.TrimRight(aTags.String(), " "), strings.TrimRight(bTags.String(), " ")
}

// encodeLines maps every distinct line to one rune so the character differ
// can run on whole lines.
func encodeLines(other, current []string) ([]rune, []rune) {
	index := make(map[string]rune)
	encode := func(lines []string) []rune {
		out := make([]rune, len(lines))
		for i, line := range lines {
			r, ok := index[line]
			if !ok {
				r = lineRune(len(index))
				index[line] = r
			}
			out[i] = r
		}
		return out
	}
	return encode(other), encode(current)
}

// lineRune skips the surrogate block, which does not survive a round trip
// through string.
func lineRune(n int) rune {
	r := rune(n + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}
