package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func initialized(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	require.NoError(t, s.Init(Registry{
		BinaryDir: DefaultBinaryDir,
		Languages: DefaultLanguages(),
	}))
	return s
}

func TestStoreNotInitialized(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.Initialized())

	_, err := s.Config()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = s.Entry("a.cpp")
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = s.PutEntry("a.cpp", FileCache{SourceHash: "X"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestStoreInitRefusesOverwrite(t *testing.T) {
	s := initialized(t)
	err := s.Init(Registry{})
	assert.ErrorContains(t, err, "already exists")
}

func TestStoreEntryRoundTrip(t *testing.T) {
	s := initialized(t)

	entry, err := s.Entry("a.cpp")
	require.NoError(t, err)
	assert.Nil(t, entry)

	put := FileCache{
		SourceHash: "ABC123",
		Tests: TestList{
			StringTest{Input: "1 2", ExpectedOutput: "3"},
			RefTest{InputFile: "tests.txt"},
			RefTest{InputFile: "in.txt", ExpectedOutputFile: "out.txt"},
		},
	}
	require.NoError(t, s.PutEntry("a.cpp", put))

	got, err := s.Entry("a.cpp")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, put, *got)
}

func TestStorePutEntryPreservesOthers(t *testing.T) {
	s := initialized(t)
	require.NoError(t, s.PutEntry("a.cpp", FileCache{SourceHash: "A"}))
	require.NoError(t, s.PutEntry("b.cpp", FileCache{SourceHash: "B"}))

	reg, err := s.Config()
	require.NoError(t, err)
	assert.Len(t, reg.Files, 2)
	assert.Equal(t, "A", reg.Files["a.cpp"].SourceHash)
	assert.Equal(t, DefaultBinaryDir, reg.BinaryDir)
}

// The document layout is consumed by other tooling, so the exact field
// names and the tagged test encoding are part of the contract.
func TestStoreDocumentShape(t *testing.T) {
	s := initialized(t)
	require.NoError(t, s.PutEntry("a.cpp", FileCache{
		SourceHash: "ABC",
		Tests: TestList{
			StringTest{Input: "in", ExpectedOutput: "out"},
			RefTest{InputFile: "t.txt"},
		},
	}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "binary_dir_path")
	assert.Contains(t, doc, "files")
	assert.Contains(t, doc, "languages_config")

	files := doc["files"].(map[string]any)
	entry := files["a.cpp"].(map[string]any)
	assert.Equal(t, "ABC", entry["source_hash"])

	tests := entry["tests"].([]any)
	require.Len(t, tests, 2)

	literal := tests[0].(map[string]any)["StringTest"].(map[string]any)
	assert.Equal(t, "in", literal["input"])
	assert.Equal(t, "out", literal["expected_output"])

	linked := tests[1].(map[string]any)["RefTest"].(map[string]any)
	assert.Equal(t, "t.txt", linked["input"])
	assert.Nil(t, linked["expected_output"])
}

func TestStoreParsesExistingDocument(t *testing.T) {
	dir := t.TempDir()
	doc := `{
  "binary_dir_path": "bin",
  "files": {
    "sol.cpp": {
      "source_hash": "PENDING_RECOMPILATION",
      "tests": [
        {"StringTest": {"input": "1", "expected_output": "2"}},
        {"RefTest": {"input": "in.txt", "expected_output": "out.txt"}}
      ]
    }
  },
  "languages_config": {"cpp": "g++ $(FILE)"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentName), []byte(doc), 0o644))

	s := NewStore(dir)
	entry, err := s.Entry("sol.cpp")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, PendingRecompilation, entry.SourceHash)
	require.Len(t, entry.Tests, 2)
	assert.Equal(t, StringTest{Input: "1", ExpectedOutput: "2"}, entry.Tests[0])
	assert.Equal(t, RefTest{InputFile: "in.txt", ExpectedOutputFile: "out.txt"}, entry.Tests[1])
}

func TestStoreRejectsMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentName), []byte("{not json"), 0o644))

	_, err := NewStore(dir).Config()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotInitialized)
}
