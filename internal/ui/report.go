package ui

import (
	"fmt"
	"io"
	"strings"

	"erunner/internal/core"
)

// previewLimit bounds how much of an input or output is echoed in a
// failure report.
const previewLimit = 200

// Clip shortens s to at most limit runes, appending an ellipsis when
// anything was cut.
func Clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Report renders test results to w.
type Report struct {
	styles Styles
}

// NewReport returns a renderer using the default styles.
func NewReport() *Report {
	return &Report{styles: DefaultStyles()}
}

// Render writes one line per test, expanding failures with the offending
// input and both outputs. It returns the total pass and fail counts.
func (rp *Report) Render(w io.Writer, results []core.TestResult) (passed, failed int) {
	for _, result := range results {
		switch r := result.(type) {
		case core.LiteralResult:
			rp.renderRecord(w, fmt.Sprintf("test %d", r.Index),
				r.Passed, r.Input, r.Expected, r.Output)
			if r.Passed {
				passed++
			} else {
				failed++
			}

		case core.LinkedResult:
			header := fmt.Sprintf("test %d: %d/%d passed", r.Index, r.Passed, r.Total)
			if r.Failures() == 0 {
				fmt.Fprintln(w, rp.styles.Pass.Render("PASS"), header)
			} else {
				fmt.Fprintln(w, rp.styles.Fail.Render("FAIL"), header)
			}
			for _, sub := range r.Records {
				if sub.Passed {
					continue
				}
				rp.renderRecord(w, fmt.Sprintf("  test %d.%d", r.Index, sub.Index),
					false, sub.Input, sub.Expected, sub.Output)
			}
			passed += r.Passed
			failed += r.Failures()
		}
	}
	return passed, failed
}

// Summary writes the final tally line.
func (rp *Report) Summary(w io.Writer, passed, failed int) {
	tally := fmt.Sprintf("%d passed, %d failed", passed, failed)
	if failed == 0 {
		fmt.Fprintln(w, rp.styles.Pass.Render(tally))
	} else {
		fmt.Fprintln(w, rp.styles.Fail.Render(tally))
	}
}

func (rp *Report) renderRecord(w io.Writer, label string, passed bool, input, expected, output string) {
	if passed {
		fmt.Fprintln(w, rp.styles.Pass.Render("PASS"), label)
		return
	}
	fmt.Fprintln(w, rp.styles.Fail.Render("FAIL"), label)
	fmt.Fprintln(w, rp.styles.Section.Render("  input:"), indent(Clip(input, previewLimit)))
	fmt.Fprintln(w, rp.styles.Section.Render("  expected:"), indent(Clip(expected, previewLimit)))
	fmt.Fprintln(w, rp.styles.Section.Render("  got:"), indent(Clip(output, previewLimit)))
}

// indent keeps multi-line previews aligned under their section label.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}
