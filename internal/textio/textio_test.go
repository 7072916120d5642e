package textio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEOL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantEOL   string
		wantMixed bool
	}{
		{"unix", "a\nb\n", "\n", false},
		{"windows", "a\r\nb\r\n", "\r\n", false},
		{"old mac", "a\rb\r", "\r", false},
		{"none", "abc", "", false},
		{"crlf wins over lf", "a\r\nb\nc\r\n", "\r\n", true},
		{"lf majority", "a\nb\nc\r", "\n", true},
		{"lf cr tie falls back to lf", "a\nb\rc", "\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eol, mixed := DetectEOL(tt.input)
			assert.Equal(t, tt.wantEOL, eol)
			assert.Equal(t, tt.wantMixed, mixed)
		})
	}
}

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, UTF8, DetectEncoding([]byte("plain")))
	assert.Equal(t, UTF8BOM, DetectEncoding([]byte("\xEF\xBB\xBFbom")))
	assert.Equal(t, UTF16LE, DetectEncoding([]byte{0xFF, 0xFE, 'a', 0}))
	assert.Equal(t, UTF16BE, DetectEncoding([]byte{0xFE, 0xFF, 0, 'a'}))
	assert.Equal(t, Windows1252, DetectEncoding([]byte("caf\xE9")))
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"utf8 trailing newline": []byte("one\ntwo\n"),
		"utf8 no newline":       []byte("one\r\ntwo"),
		"utf8 bom":              []byte("\xEF\xBB\xBFone\ntwo\n"),
		"utf16le":               {0xFF, 0xFE, 'a', 0, '\n', 0, 'b', 0},
		"windows-1252":          []byte("caf\xE9\n"),
		"empty":                 {},
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			text, err := Decode(data)
			require.NoError(t, err)

			eol := text.EOL
			if eol == "" {
				eol = "\n"
			}
			out, err := Encode(text.Lines, eol, text.Encoding)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(out))
		})
	}
}

func TestDecodeSplitsLines(t *testing.T) {
	text, err := Decode([]byte("caf\xE9\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"café", "b", ""}, text.Lines)
	assert.Equal(t, "\n", text.EOL)
	assert.Equal(t, Windows1252, text.Encoding)
}

func TestDecodeTiedLineEndingsSplitsOnLF(t *testing.T) {
	text, err := Decode([]byte("a\nb\rc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b\rc"}, text.Lines)
	assert.Equal(t, "\n", text.EOL)
	assert.True(t, text.MixedEOL)
}

func TestEncodeUnknownEncoding(t *testing.T) {
	_, err := Encode([]string{"a"}, "\n", "ebcdic")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}
