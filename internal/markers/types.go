package markers

// Resolution picks the side of a conflict kept on rendering.
type Resolution string

const (
	ResolutionUnset   Resolution = ""
	ResolutionCurrent Resolution = "current"
	ResolutionOther   Resolution = "other"
	ResolutionBoth    Resolution = "both"
	ResolutionNone    Resolution = "none"
)

// ParseResolution accepts the names above plus the git spellings "ours"
// and "theirs".
func ParseResolution(s string) (Resolution, bool) {
	switch s {
	case "current", "ours":
		return ResolutionCurrent, true
	case "other", "theirs":
		return ResolutionOther, true
	case "both":
		return ResolutionBoth, true
	case "none":
		return ResolutionNone, true
	}
	return ResolutionUnset, false
}

const (
	DefaultCurrentLabel = "current"
	DefaultOtherLabel   = "other"
)

// Labels name the two sides on the marker lines.
type Labels struct {
	Current string
	Other   string
}

type Document struct {
	Segments  []Segment
	Conflicts []ConflictRef
	// EOL terminates every line written by Render.
	EOL string
}

type Segment interface{ isSegment() }

type TextSegment struct{ Lines []string }

func (TextSegment) isSegment() {}

// ConflictSegment holds lines that differ between the two files. Either
// side may be empty when one file simply lacks the lines.
type ConflictSegment struct {
	Current []string
	Other   []string

	CurrentLabel string
	OtherLabel   string

	Resolution Resolution
}

func (ConflictSegment) isSegment() {}

// ConflictRef points to a conflict segment inside Document.Segments.
type ConflictRef struct {
	SegmentIndex int
}
