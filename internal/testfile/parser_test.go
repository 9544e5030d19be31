package testfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains a source and returns every record, failing the test on a
// parse error.
func collect(t *testing.T, s Source) []SimpleTest {
	t.Helper()
	var out []SimpleTest
	for s.Scan() {
		out = append(out, s.Test())
	}
	require.NoError(t, s.Err())
	return out
}

func TestParserPipedRecords(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []SimpleTest
	}{
		{
			name:  "single pair",
			input: "{1 2} -> {3}",
			want:  []SimpleTest{{Input: "1 2", ExpectedOutput: "3"}},
		},
		{
			name:  "two pairs on separate lines",
			input: "{1 2} -> {3}\n{4 5} -> {9}",
			want: []SimpleTest{
				{Input: "1 2", ExpectedOutput: "3"},
				{Input: "4 5", ExpectedOutput: "9"},
			},
		},
		{
			name:  "multi-line blocks are joined with newlines",
			input: "{\n  3\n  1 2 3\n} -> {\n  6\n}",
			want:  []SimpleTest{{Input: "3\n1 2 3", ExpectedOutput: "6"}},
		},
		{
			name:  "nested braces are counted but stripped",
			input: "{a {b} c} -> {d}",
			want:  []SimpleTest{{Input: "a b c", ExpectedOutput: "d"}},
		},
		{
			name:  "dash without arrow is content",
			input: "{a-b} -> {c-d}",
			want:  []SimpleTest{{Input: "a-b", ExpectedOutput: "c-d"}},
		},
		{
			name:  "empty input block is swallowed",
			input: "{} -> {x} -> {y}",
			want:  []SimpleTest{{Input: "x", ExpectedOutput: "y"}},
		},
		{
			name:  "text after a completed record is discarded to end of line",
			input: "{a} -> {b} junk {ignored\n{c} -> {d}",
			want: []SimpleTest{
				{Input: "a", ExpectedOutput: "b"},
				{Input: "c", ExpectedOutput: "d"},
			},
		},
		{
			name:  "unfinished trailing record is dropped at EOF",
			input: "{a} -> {b}\n{c} ->",
			want:  []SimpleTest{{Input: "a", ExpectedOutput: "b"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(t, NewParser(strings.NewReader(tc.input)))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParserDirectives(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []SimpleTest
	}{
		{
			name:  "standalone emits a record per block",
			input: "#standalone\n{hello}\n{world}",
			want: []SimpleTest{
				{Input: "hello"},
				{Input: "world"},
			},
		},
		{
			name:  "bare directive name enables",
			input: "#standalone\n{only}",
			want:  []SimpleTest{{Input: "only"}},
		},
		{
			name:  "disable modifier turns trim off",
			input: "#disable:trim\n{ a \nb } -> {c}",
			want:  []SimpleTest{{Input: " a \nb ", ExpectedOutput: "c"}},
		},
		{
			name:  "directive applies mid-file",
			input: "{ a } -> { b }\n#disable:trim\n{ c } -> { d }",
			want: []SimpleTest{
				{Input: "a", ExpectedOutput: "b"},
				{Input: " c ", ExpectedOutput: " d "},
			},
		},
		{
			name:  "explicit-newline activates backslash escapes",
			input: "#enable:explicit-newline\n{a\\nb} -> {c}",
			want:  []SimpleTest{{Input: "a\nb", ExpectedOutput: "c"}},
		},
		{
			name:  "explicit-newline drops the implicit line break",
			input: "#enable:explicit-newline\n{a\nb} -> {c}",
			want:  []SimpleTest{{Input: "ab", ExpectedOutput: "c"}},
		},
		{
			name:  "backslash is content without explicit-newline",
			input: "{a\\nb} -> {c}",
			want:  []SimpleTest{{Input: "a\\nb", ExpectedOutput: "c"}},
		},
		{
			name:  "unknown directive is ignored",
			input: "#frobnicate\n{a} -> {b}",
			want:  []SimpleTest{{Input: "a", ExpectedOutput: "b"}},
		},
		{
			name:  "unknown modifier leaves the flag alone",
			input: "#maybe:standalone\n{a} -> {b}",
			want:  []SimpleTest{{Input: "a", ExpectedOutput: "b"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(t, NewParser(strings.NewReader(tc.input)))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParserErrors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "unmatched closing bracket",
			input:   "{a} -> {b}\n}",
			wantMsg: "unmatched closing bracket",
		},
		{
			name:    "two blocks without an arrow",
			input:   "{a} {b}",
			wantMsg: "piped to output",
		},
		{
			name:    "two arrows between blocks",
			input:   "{a} -> -> {b}",
			wantMsg: "piped to output",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tc.input))
			for p.Scan() {
			}
			require.Error(t, p.Err())
			assert.Contains(t, p.Err().Error(), tc.wantMsg)
		})
	}
}

func TestParserErrorReportsLine(t *testing.T) {
	p := NewParser(strings.NewReader("{a} -> {b}\n\n}"))
	for p.Scan() {
	}

	var parseErr *ParseError
	require.ErrorAs(t, p.Err(), &parseErr)
	assert.Equal(t, 3, parseErr.Line)
}

func TestParserScanAfterErrorKeepsFailing(t *testing.T) {
	p := NewParser(strings.NewReader("}"))
	assert.False(t, p.Scan())
	assert.Error(t, p.Err())
	assert.False(t, p.Scan())
}

func TestParserSetFlagOverridesDefault(t *testing.T) {
	p := NewParser(strings.NewReader("{a}\n{b}"))
	p.SetFlag(FlagStandalone, true)

	got := collect(t, p)
	assert.Equal(t, []SimpleTest{{Input: "a"}, {Input: "b"}}, got)
}
