package ui

import (
	"fmt"
	"io"
	"sort"

	"erunner/internal/cache"
)

// hashPreview is how many fingerprint characters the status table shows.
const hashPreview = 12

// RenderStatus writes a human-oriented summary of the registry: config
// first, then one row per registered file, sorted by name for stable
// output.
func RenderStatus(w io.Writer, reg cache.Registry) {
	styles := DefaultStyles()

	fmt.Fprintln(w, styles.Header.Render("config"))
	fmt.Fprintf(w, "  binary dir: %s\n", reg.BinaryDir)

	exts := make([]string, 0, len(reg.Languages))
	for ext := range reg.Languages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		fmt.Fprintf(w, "  .%-4s %s\n", ext, reg.Languages[ext])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Header.Render("files"))
	if len(reg.Files) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("  (none registered)"))
		return
	}

	names := make([]string, 0, len(reg.Files))
	for name := range reg.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := reg.Files[name]
		state := Clip(entry.SourceHash, hashPreview)
		if entry.SourceHash == cache.PendingRecompilation {
			state = styles.Fail.Render("pending recompilation")
		}
		fmt.Fprintf(w, "  %-24s %-24s %s\n",
			name, state, describeTests(entry.Tests))
	}
}

// describeTests summarizes a test list as a count plus one kind letter per
// test: S for a literal pair, R for a linked definition file.
func describeTests(tests cache.TestList) string {
	if len(tests) == 0 {
		return "no tests"
	}
	kinds := make([]byte, len(tests))
	for i, t := range tests {
		switch t.(type) {
		case cache.StringTest:
			kinds[i] = 'S'
		case cache.RefTest:
			kinds[i] = 'R'
		}
	}
	return fmt.Sprintf("%d tests [%s]", len(tests), kinds)
}
