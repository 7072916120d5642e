package textio

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported by Decode.
const (
	UTF8        = "utf-8"
	UTF8BOM     = "utf-8-bom"
	UTF16LE     = "utf-16le"
	UTF16BE     = "utf-16be"
	Windows1252 = "windows-1252"
)

var ErrUnknownEncoding = errors.New("unknown encoding")

var encodings = map[string]encoding.Encoding{
	UTF8:        unicode.UTF8,
	UTF8BOM:     unicode.UTF8BOM,
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	Windows1252: charmap.Windows1252,
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Text is decoded file content split at its detected line ending.
type Text struct {
	Lines    []string
	EOL      string // empty when the content holds no line break
	Encoding string
	// MixedEOL is set when more than one line ending style was seen.
	MixedEOL bool
}

// Decode detects the encoding and end-of-line style of data and splits it
// into lines. A trailing line ending yields a final empty line, so Encode
// reproduces the input byte for byte.
func Decode(data []byte) (Text, error) {
	name := DetectEncoding(data)
	decoded, err := encodings[name].NewDecoder().Bytes(data)
	if err != nil {
		return Text{}, fmt.Errorf("decode %s: %w", name, err)
	}
	content := string(decoded)

	eol, mixed := DetectEOL(content)
	text := Text{EOL: eol, Encoding: name, MixedEOL: mixed}
	if eol == "" {
		text.Lines = []string{content}
	} else {
		text.Lines = strings.Split(content, eol)
	}
	return text, nil
}

// Encode joins lines with eol and converts the result to the named encoding.
func Encode(lines []string, eol string, name string) ([]byte, error) {
	enc, ok := encodings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	out, err := enc.NewEncoder().Bytes([]byte(strings.Join(lines, eol)))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

// DetectEncoding picks the encoding of data from its byte order mark, or
// UTF-8 when the bytes are valid UTF-8, or Windows-1252 otherwise.
func DetectEncoding(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(data):
		return UTF8
	}
	return Windows1252
}

// DetectEOL returns the dominant line ending of s: CRLF whenever present,
// else whichever of LF and CR occurs more often, LF on a tie. It returns ""
// only when s holds no line break.
func DetectEOL(s string) (eol string, mixed bool) {
	lf := strings.Count(s, "\n")
	cr := strings.Count(s, "\r")
	crlf := strings.Count(s, "\r\n")
	if crlf > 0 {
		return "\r\n", lf != crlf || cr != crlf
	}
	mixed = lf != 0 && cr != 0
	switch {
	case lf > 0 && lf >= cr:
		return "\n", mixed
	case cr > 0:
		return "\r", mixed
	}
	return "", mixed
}
