// Package cache defines the persisted registry document and its store.
//
// One document per project maps source filenames to their content hash and
// registered tests, alongside the global config (binary directory,
// per-extension build commands). Filename keys are base names, not full
// paths; two files with the same name in different directories collide.
// This is an accepted limitation of the format.
package cache

import (
	"encoding/json"
	"fmt"
)

// PendingRecompilation is the sentinel stored in place of a source hash when
// the binary is known stale or missing. It forces a rebuild on the next
// decision pass regardless of the actual content hash.
const PendingRecompilation = "PENDING_RECOMPILATION"

// Registry is the whole persisted document.
type Registry struct {
	// BinaryDir is where compiled binaries are placed and looked up.
	BinaryDir string `json:"binary_dir_path"`

	// Files maps source base names to their cache entries.
	Files map[string]FileCache `json:"files"`

	// Languages maps source file extensions (without the dot) to build
	// command templates, see core.ExpandTemplate for the macro set.
	Languages map[string]string `json:"languages_config"`
}

// FileCache is the per-source entry: the content fingerprint the binary was
// built from, and the registered tests in insertion order. Test order is
// user-visible: it defines the 1-based indices selectors address.
type FileCache struct {
	SourceHash string   `json:"source_hash"`
	Tests      TestList `json:"tests"`
}

// Test is a registered test, either a literal pair stored inline or a
// pointer to external test-definition files. The two kinds are matched
// exhaustively at every consumption site.
type Test interface {
	isTest()
}

// StringTest is a literal input/expected-output pair.
type StringTest struct {
	Input          string
	ExpectedOutput string
}

func (StringTest) isTest() {}

// RefTest points at one or two external test-definition files. When
// ExpectedOutputFile is empty, InputFile itself encodes alternating
// input/output pairs; otherwise InputFile provides inputs and
// ExpectedOutputFile provides outputs, paired record by record.
type RefTest struct {
	InputFile          string
	ExpectedOutputFile string
}

func (RefTest) isTest() {}

// TestList serializes tests in the externally-tagged shape of the on-disk
// document:
//
//	{"StringTest": {"input": ..., "expected_output": ...}}
//	{"RefTest":    {"input": ..., "expected_output": <path or null>}}
type TestList []Test

type stringTestJSON struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

type refTestJSON struct {
	Input          string  `json:"input"`
	ExpectedOutput *string `json:"expected_output"`
}

type testEnvelope struct {
	StringTest *stringTestJSON `json:"StringTest,omitempty"`
	RefTest    *refTestJSON    `json:"RefTest,omitempty"`
}

// MarshalJSON implements the tagged representation.
func (l TestList) MarshalJSON() ([]byte, error) {
	envelopes := make([]testEnvelope, len(l))
	for i, t := range l {
		switch test := t.(type) {
		case StringTest:
			envelopes[i].StringTest = &stringTestJSON{
				Input:          test.Input,
				ExpectedOutput: test.ExpectedOutput,
			}
		case RefTest:
			ref := &refTestJSON{Input: test.InputFile}
			if test.ExpectedOutputFile != "" {
				out := test.ExpectedOutputFile
				ref.ExpectedOutput = &out
			}
			envelopes[i].RefTest = ref
		default:
			return nil, fmt.Errorf("unknown test kind %T", t)
		}
	}
	return json.Marshal(envelopes)
}

// UnmarshalJSON implements the tagged representation.
func (l *TestList) UnmarshalJSON(data []byte) error {
	var envelopes []testEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}

	out := make(TestList, 0, len(envelopes))
	for i, env := range envelopes {
		switch {
		case env.StringTest != nil:
			out = append(out, StringTest{
				Input:          env.StringTest.Input,
				ExpectedOutput: env.StringTest.ExpectedOutput,
			})
		case env.RefTest != nil:
			ref := RefTest{InputFile: env.RefTest.Input}
			if env.RefTest.ExpectedOutput != nil {
				ref.ExpectedOutputFile = *env.RefTest.ExpectedOutput
			}
			out = append(out, ref)
		default:
			return fmt.Errorf("test %d: unknown test kind", i)
		}
	}
	*l = out
	return nil
}
