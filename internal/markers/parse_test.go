package markers

import (
	"errors"
	"reflect"
	"testing"
)

const twoWay = "before text\n" +
	"<<<<<<< current\n" +
	"current content\n" +
	"=======\n" +
	"other content\n" +
	">>>>>>> other\n" +
	"after text\n"

func TestParseTwoWay(t *testing.T) {
	doc, err := Parse(twoWay)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(doc.Conflicts))
	}
	if len(doc.Segments) != 3 {
		t.Fatalf("expected 3 segments (text, conflict, text), got %d", len(doc.Segments))
	}

	conflict, ok := doc.Segments[1].(ConflictSegment)
	if !ok {
		t.Fatalf("segment 1 is not ConflictSegment")
	}
	if !reflect.DeepEqual(conflict.Current, []string{"current content"}) {
		t.Errorf("current mismatch: %q", conflict.Current)
	}
	if !reflect.DeepEqual(conflict.Other, []string{"other content"}) {
		t.Errorf("other mismatch: %q", conflict.Other)
	}
	if conflict.CurrentLabel != "current" || conflict.OtherLabel != "other" {
		t.Errorf("labels mismatch: %q / %q", conflict.CurrentLabel, conflict.OtherLabel)
	}

	after := doc.Segments[2].(TextSegment)
	if !reflect.DeepEqual(after.Lines, []string{"after text", ""}) {
		t.Errorf("trailing text mismatch: %q", after.Lines)
	}
}

func TestParseMultipleAndEmptySides(t *testing.T) {
	data := "<<<<<<<\n" +
		"=======\n" +
		"only other\n" +
		">>>>>>>\n" +
		"middle\n" +
		"<<<<<<< mine\n" +
		"only current\n" +
		"=======\n" +
		">>>>>>> theirs"

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(doc.Conflicts))
	}

	first := doc.Segments[doc.Conflicts[0].SegmentIndex].(ConflictSegment)
	if len(first.Current) != 0 || len(first.Other) != 1 {
		t.Errorf("first conflict sides: %q / %q", first.Current, first.Other)
	}
	second := doc.Segments[doc.Conflicts[1].SegmentIndex].(ConflictSegment)
	if second.CurrentLabel != "mine" || second.OtherLabel != "theirs" {
		t.Errorf("second labels: %q / %q", second.CurrentLabel, second.OtherLabel)
	}
}

func TestParseCRLF(t *testing.T) {
	doc, err := Parse("a\r\n<<<<<<<\r\nx\r\n=======\r\ny\r\n>>>>>>>\r\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.EOL != "\r\n" {
		t.Fatalf("expected CRLF, got %q", doc.EOL)
	}
	c := doc.Segments[1].(ConflictSegment)
	if !reflect.DeepEqual(c.Current, []string{"x"}) {
		t.Errorf("current mismatch: %q", c.Current)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing separator", "<<<<<<<\nx\n>>>>>>>\n"},
		{"missing end", "<<<<<<<\nx\n=======\ny\n"},
		{"nested start", "<<<<<<<\nx\n=======\n<<<<<<<\n"},
		{"base section", "<<<<<<<\nx\n|||||||\nb\n=======\ny\n>>>>>>>\n"},
		{"only start", "<<<<<<<"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrMalformedConflict) {
				t.Fatalf("expected ErrMalformedConflict, got %v", err)
			}
		})
	}
}

func TestIsResolved(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"plain text", "hello\nworld\n", true},
		{"empty", "", true},
		{"conflict", twoWay, false},
		{"malformed", "<<<<<<<\nx\n", false},
		{"marker not at line start", "text <<<<<<< here\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsResolved(tt.data); got != tt.want {
				t.Errorf("IsResolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseResolution(t *testing.T) {
	for in, want := range map[string]Resolution{
		"ours":    ResolutionCurrent,
		"current": ResolutionCurrent,
		"theirs":  ResolutionOther,
		"other":   ResolutionOther,
		"both":    ResolutionBoth,
		"none":    ResolutionNone,
	} {
		got, ok := ParseResolution(in)
		if !ok || got != want {
			t.Errorf("ParseResolution(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseResolution("all"); ok {
		t.Errorf("ParseResolution accepted %q", "all")
	}
}
