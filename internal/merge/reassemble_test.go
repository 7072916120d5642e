package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted answers conflicts from fixed replies and records what it saw.
type scripted struct {
	lines     []string
	chars     string
	lineCalls []LineConflict
	charCalls []CharConflict
}

func (s *scripted) ResolveLines(c LineConflict) ([]string, error) {
	s.lineCalls = append(s.lineCalls, c)
	return s.lines, nil
}

func (s *scripted) ResolveChars(c CharConflict) (string, error) {
	s.charCalls = append(s.charCalls, c)
	return s.chars, nil
}

// unreachable fails the test when any conflict reaches it.
type unreachable struct{ t *testing.T }

func (u unreachable) ResolveLines(c LineConflict) ([]string, error) {
	u.t.Errorf("unexpected line conflict at %d", c.Line)
	return nil, nil
}

func (u unreachable) ResolveChars(c CharConflict) (string, error) {
	u.t.Errorf("unexpected char conflict in %q", c.Other)
	return "", nil
}

func opts(op, charOp Operation, r Resolver) Options {
	o := DefaultOptions()
	o.Operation = op
	o.CharOperation = charOp
	o.Resolver = r
	return o
}

func TestReassembleInsertRemoveRules(t *testing.T) {
	blocks := []Block{
		{Type: Keep, Lines: []string{"a"}},
		{Type: Insert, Lines: []string{"ins"}, Line: 1},
		{Type: Remove, Lines: []string{"rem"}, Line: 2},
		{Type: Keep, Lines: []string{"z"}, Line: 3},
	}
	tests := []struct {
		op   Operation
		want []string
	}{
		{OpBoth, []string{"a", "rem", "z"}},
		{OpInsert, []string{"a", "ins", "rem", "z"}},
		{OpRemove, []string{"a", "z"}},
		{OpAsk, []string{"a", "ins", "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := Reassemble(blocks, opts(tt.op, OpBoth, unreachable{t}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReassembleMultiLineReplace(t *testing.T) {
	blocks := []Block{
		{Type: Keep, Lines: []string{"top"}},
		{
			Type:     Replace,
			Lines:    []string{"x1", "x2"},
			Line:     3,
			Replaces: &Block{Type: Remove, Lines: []string{"b1", "b2"}, Line: 1},
		},
	}
	tests := []struct {
		op   Operation
		want []string
	}{
		{OpBoth, []string{"top", "x1", "x2"}},
		{OpRemove, []string{"top"}},
		{OpInsert, []string{"top", "b1", "b2", "x1", "x2"}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := Reassemble(blocks, opts(tt.op, OpBoth, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("ask", func(t *testing.T) {
		r := &scripted{lines: []string{"typed"}}
		got, err := Reassemble(blocks, opts(OpAsk, OpBoth, r))
		require.NoError(t, err)
		assert.Equal(t, []string{"top", "typed"}, got)
		require.Len(t, r.lineCalls, 1)
		assert.Equal(t, LineConflict{Line: 3, Theirs: []string{"x1", "x2"}, Mine: []string{"b1", "b2"}}, r.lineCalls[0])
	})
}

func TestReassembleKeepsEveryKeepLine(t *testing.T) {
	blocks := []Block{
		{Type: Keep, Lines: []string{"k1", "k2"}},
		{Type: Remove, Lines: []string{"r"}},
		{Type: Keep, Lines: []string{"k3"}},
	}
	for _, op := range []Operation{OpInsert, OpRemove, OpBoth} {
		got, err := Reassemble(blocks, opts(op, op, nil))
		require.NoError(t, err)
		assert.Subset(t, got, []string{"k1", "k2", "k3"}, op.String())
	}
}

func TestReassembleValidation(t *testing.T) {
	_, err := Reassemble(nil, opts(OpAsk, OpBoth, nil))
	assert.ErrorIs(t, err, ErrNoResolver)

	_, err = Reassemble(nil, opts(OpBoth, OpAsk, nil))
	assert.ErrorIs(t, err, ErrNoResolver)

	_, err = Reassemble(nil, opts(Operation(0), OpBoth, nil))
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = Reassemble([]Block{{Type: Replace, Lines: []string{"x"}}}, DefaultOptions())
	assert.Error(t, err)
}

func TestMergeCharacterTable(t *testing.T) {
	tests := []struct {
		other, current string
		want           map[Operation]string
	}{
		{"b", "x", map[Operation]string{OpBoth: "x", OpInsert: "bx", OpRemove: ""}},
		{"abc", "abXc", map[Operation]string{OpBoth: "abXc", OpInsert: "abXc", OpRemove: "abc", OpAsk: "abc"}},
		{"abXc", "abc", map[Operation]string{OpBoth: "abc", OpInsert: "abXc", OpRemove: "abc", OpAsk: "abXc"}},
	}
	for _, tt := range tests {
		for op, want := range tt.want {
			t.Run(tt.other+"/"+tt.current+"/"+op.String(), func(t *testing.T) {
				res, err := Merge([]byte(tt.other), []byte(tt.current), opts(OpBoth, op, unreachable{t}))
				require.NoError(t, err)
				assert.Equal(t, want, string(res.Content))
			})
		}
	}
}

func TestMergeCharacterAsk(t *testing.T) {
	r := &scripted{chars: "chosen"}
	res, err := Merge([]byte("b"), []byte("x"), opts(OpBoth, OpAsk, r))
	require.NoError(t, err)
	assert.Equal(t, "chosen", string(res.Content))

	require.Len(t, r.charCalls, 1)
	assert.Equal(t, CharConflict{Other: "x", Current: "b", Column: 0, Theirs: "x", Mine: "b"}, r.charCalls[0])
}

func TestMergeLineAsksEveryConflict(t *testing.T) {
	r := &scripted{chars: "_"}
	got, err := MergeLine("a1b2c", "a9b8c", OpAsk, r)
	require.NoError(t, err)
	assert.Equal(t, "a_b_c", got)

	require.Len(t, r.charCalls, 2)
	assert.Equal(t, 1, r.charCalls[0].Column)
	assert.Equal(t, 3, r.charCalls[1].Column)
}

func TestMergeLineWideColumn(t *testing.T) {
	r := &scripted{chars: "!"}
	_, err := MergeLine("日本x", "日本y", OpAsk, r)
	require.NoError(t, err)
	require.Len(t, r.charCalls, 1)
	assert.Equal(t, 4, r.charCalls[0].Column)
}

func TestLineBlocks(t *testing.T) {
	blocks := LineBlocks("abXc", "abYc")
	want := []Block{
		{Type: Keep, Lines: []string{"ab"}, Line: 0},
		{Type: Replace, Lines: []string{"X"}, Line: 2, Replaces: &Block{Type: Insert, Lines: []string{"Y"}, Line: 3}},
		{Type: Keep, Lines: []string{"c"}, Line: 4},
	}
	assert.Equal(t, want, blocks)
}

func TestMergeIdentical(t *testing.T) {
	content := []byte("one\ntwo\nthree\n")
	for _, op := range []Operation{OpInsert, OpRemove, OpBoth, OpAsk} {
		preview, err := Diff(content, content, DefaultOptions())
		require.NoError(t, err)
		for _, b := range preview.Blocks {
			assert.Equal(t, Keep, b.Type)
		}

		res, err := Merge(content, content, opts(op, op, unreachable{t}))
		require.NoError(t, err)
		assert.Equal(t, string(content), string(res.Content), op.String())
	}
}

func TestMergeLines(t *testing.T) {
	other := []byte("a\nb\nc\n")
	current := []byte("a\nx\nc\n")

	res, err := Merge(other, current, opts(OpBoth, OpBoth, nil))
	require.NoError(t, err)
	assert.Equal(t, "a\nx\nc\n", string(res.Content))

	res, err = Merge(other, current, opts(OpBoth, OpInsert, nil))
	require.NoError(t, err)
	assert.Equal(t, "a\nbx\nc\n", string(res.Content))
}

func TestMergeEOLChoice(t *testing.T) {
	other := []byte("a\r\nb\r\n")
	current := []byte("a\nb\n")

	res, err := Merge(other, current, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "\n", res.EOL)
	assert.Equal(t, "a\nb\n", string(res.Content))

	o := DefaultOptions()
	o.PreferOtherEOL = true
	res, err = Merge(other, current, o)
	require.NoError(t, err)
	assert.Equal(t, "\r\n", res.EOL)
	assert.Equal(t, "a\r\nb\r\n", string(res.Content))

	res, err = Merge([]byte("a"), []byte("b"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "\n", res.EOL)
}

func TestChooseEOL(t *testing.T) {
	assert.Equal(t, "\r", chooseEOL("", "\r", true))
	assert.Equal(t, "\r\n", chooseEOL("\r\n", "", false))
	assert.Equal(t, "\n", chooseEOL("", "", false))
}
