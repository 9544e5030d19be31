package testfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standalone(t *testing.T, content string) *Parser {
	t.Helper()
	p := NewParser(strings.NewReader(content))
	p.SetFlag(FlagStandalone, true)
	return p
}

func TestMergePairsRecordByRecord(t *testing.T) {
	inputs := standalone(t, "{1}\n{2}")
	outputs := standalone(t, "{one}\n{two}")

	got := collect(t, Merge(inputs, outputs))
	assert.Equal(t, []SimpleTest{
		{Input: "1", ExpectedOutput: "one"},
		{Input: "2", ExpectedOutput: "two"},
	}, got)
}

func TestMergeStopsAtShorterSide(t *testing.T) {
	inputs := standalone(t, "{1}\n{2}\n{3}")
	outputs := standalone(t, "{one}\n{two}")

	got := collect(t, Merge(inputs, outputs))
	require.Len(t, got, 2)
}

func TestMergePropagatesParseErrors(t *testing.T) {
	inputs := standalone(t, "{1}\n{2}")
	outputs := standalone(t, "{one}\n}")

	m := Merge(inputs, outputs)
	require.True(t, m.Scan())
	assert.False(t, m.Scan())
	assert.ErrorContains(t, m.Err(), "unmatched closing bracket")
	assert.False(t, m.Scan())
}

func TestOpenRecordsSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tests.txt")
	require.NoError(t, os.WriteFile(path, []byte("{1} -> {one}\n{2} -> {two}"), 0o644))

	source, closeAll, err := OpenRecords(path, "")
	require.NoError(t, err)
	defer closeAll()

	got := collect(t, source)
	assert.Equal(t, []SimpleTest{
		{Input: "1", ExpectedOutput: "one"},
		{Input: "2", ExpectedOutput: "two"},
	}, got)
}

func TestOpenRecordsMergedPair(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("{1}\n{2}"), 0o644))
	require.NoError(t, os.WriteFile(outPath, []byte("{one}\n{two}"), 0o644))

	source, closeAll, err := OpenRecords(inPath, outPath)
	require.NoError(t, err)
	defer closeAll()

	got := collect(t, source)
	assert.Equal(t, []SimpleTest{
		{Input: "1", ExpectedOutput: "one"},
		{Input: "2", ExpectedOutput: "two"},
	}, got)
}

func TestOpenRecordsMissingFile(t *testing.T) {
	_, _, err := OpenRecords(filepath.Join(t.TempDir(), "absent.txt"), "")
	assert.Error(t, err)
}
