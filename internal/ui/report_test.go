package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"erunner/internal/core"
)

func TestClip(t *testing.T) {
	assert.Equal(t, "short", Clip("short", 10))
	assert.Equal(t, "abc...", Clip("abcdef", 3))
	assert.Equal(t, "abc", Clip("abc", 3))
}

func TestReportRenderCounts(t *testing.T) {
	results := []core.TestResult{
		core.LiteralResult{Index: 1, Passed: true},
		core.LiteralResult{Index: 2, Passed: false, Input: "in", Expected: "want", Output: "got"},
		core.LinkedResult{
			Index: 3, Passed: 2, Total: 3,
			Records: []core.SubResult{
				{Index: 1, Passed: true},
				{Index: 2, Passed: false, Input: "x", Expected: "y", Output: "z"},
				{Index: 3, Passed: true},
			},
		},
	}

	var buf strings.Builder
	passed, failed := NewReport().Render(&buf, results)

	assert.Equal(t, 3, passed)
	assert.Equal(t, 2, failed)

	out := buf.String()
	assert.Contains(t, out, "test 1")
	assert.Contains(t, out, "test 3: 2/3 passed")
	assert.Contains(t, out, "test 3.2")
	// Passing sub-tests are not expanded.
	assert.NotContains(t, out, "test 3.1")
}

func TestReportSummary(t *testing.T) {
	var buf strings.Builder
	NewReport().Summary(&buf, 4, 1)
	assert.Contains(t, buf.String(), "4 passed, 1 failed")
}
