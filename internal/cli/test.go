package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"erunner/internal/cache"
	"erunner/internal/selector"
	"erunner/internal/testfile"
	"erunner/internal/ui"
)

func newTestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <source-file>",
		Short: "Register and run tests for a source file",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		newTestAddCmd(a),
		newTestAddLinkCmd(a),
		newTestRunCmd(a),
		newTestRunAtCmd(a),
		newTestShowCmd(a),
	)
	return cmd
}

// appendTest loads the entry for sourcePath (creating an empty one with the
// recompilation sentinel when the file was never built) and appends a test.
func (a *app) appendTest(sourcePath string, test cache.Test) error {
	filename := filepath.Base(sourcePath)
	entry, err := a.store.Entry(filename)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &cache.FileCache{SourceHash: cache.PendingRecompilation}
	}
	entry.Tests = append(entry.Tests, test)
	return a.store.PutEntry(filename, *entry)
}

// readBlock collects lines from the user until EOF or a line holding only a
// period, the conventional terminator for multi-line console input.
func readBlock(r *bufio.Scanner, w *strings.Builder) string {
	w.Reset()
	for r.Scan() {
		line := r.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	return strings.TrimSpace(w.String())
}

func newTestAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <source-file> [input] [expected-output]",
		Short: "Register a literal input/output pair",
		Long: "Registers an input and the exact output the program must print for it.\n" +
			"When the pair is not given as arguments, both are read from the\n" +
			"terminal, each ended by a line holding a single period (or EOF).",
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.store.Config(); err != nil {
				return err
			}

			var input, expected string
			switch len(args) {
			case 3:
				input, expected = args[1], args[2]
			case 1:
				scanner := bufio.NewScanner(a.stdin)
				var buf strings.Builder
				fmt.Fprintln(a.stdout, "input (end with a lone '.'):")
				input = readBlock(scanner, &buf)
				fmt.Fprintln(a.stdout, "expected output (end with a lone '.'):")
				expected = readBlock(scanner, &buf)
			default:
				return fmt.Errorf("give both the input and the expected output, or neither")
			}

			test := cache.StringTest{Input: input, ExpectedOutput: expected}
			if err := a.appendTest(args[0], test); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "test registered")
			return nil
		},
	}
}

func newTestAddLinkCmd(a *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "add-link <source-file> <test-file>",
		Short: "Register a test-definition file",
		Long: "Links a test-definition file to the source. By default the file pairs\n" +
			"inputs and outputs itself with '->'; with --output the linked file holds\n" +
			"only inputs and the output file holds the matching expected outputs.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.store.Config(); err != nil {
				return err
			}

			test := cache.RefTest{
				InputFile:          args[1],
				ExpectedOutputFile: outputPath,
			}
			records, err := countRecords(test)
			if err != nil {
				return err
			}

			if err := a.appendTest(args[0], test); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "linked %d records\n", records)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"separate file holding the expected outputs")
	return cmd
}

// countRecords streams the linked definition once, surfacing parse errors at
// registration time instead of at the first run.
func countRecords(t cache.RefTest) (int, error) {
	source, closeAll, err := testfile.OpenRecords(t.InputFile, t.ExpectedOutputFile)
	if err != nil {
		return 0, err
	}
	defer closeAll()

	n := 0
	for source.Scan() {
		n++
	}
	return n, source.Err()
}

func (a *app) runSelected(cmd *cobra.Command, sourcePath string, ranges []selector.TestsRange) error {
	runner, err := a.runner()
	if err != nil {
		return err
	}

	results, err := runner.RunTests(cmd.Context(), sourcePath, ranges)
	if err != nil {
		return err
	}

	report := ui.NewReport()
	passed, failed := report.Render(a.stdout, results)
	report.Summary(a.stdout, passed, failed)
	if failed > 0 {
		return fmt.Errorf("%d tests failed", failed)
	}
	return nil
}

func newTestRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <source-file>",
		Short: "Run every registered test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSelected(cmd, args[0], nil)
		},
	}
}

func newTestRunAtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run-at <source-file> <selection>",
		Short: "Run a selection of the registered tests",
		Long: "The selection is a comma-separated list of test numbers, sub-tests\n" +
			"(\"2.3\") and inclusive ranges (\"1.2-3.4\").",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := selector.Evaluate(args[1])
			if err != nil {
				return err
			}
			return a.runSelected(cmd, args[0], ranges)
		},
	}
}

func newTestShowCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "show <source-file>",
		Short: "Browse the registered tests",
		Long: "Lists every registered test with its input and expected output,\n" +
			"expanding linked definition files. Opens a pager on a terminal;\n" +
			"--plain prints directly.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := filepath.Base(args[0])
			entry, err := a.store.Entry(filename)
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Tests) == 0 {
				fmt.Fprintln(a.stdout, "no tests registered for", filename)
				return nil
			}

			doc, err := formatTests(entry.Tests)
			if err != nil {
				return err
			}

			if plain || !stdoutIsTerminal() {
				fmt.Fprint(a.stdout, doc)
				return nil
			}
			return ui.NewPager("tests for "+filename, doc).Run()
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print instead of paging")
	return cmd
}

// formatTests renders every registered test as an indented text document,
// streaming linked definition files record by record.
func formatTests(tests cache.TestList) (string, error) {
	var b strings.Builder
	for i, test := range tests {
		switch t := test.(type) {
		case cache.StringTest:
			fmt.Fprintf(&b, "test %d (literal)\n", i+1)
			writePair(&b, "  ", t.Input, t.ExpectedOutput)

		case cache.RefTest:
			fmt.Fprintf(&b, "test %d (linked: %s", i+1, t.InputFile)
			if t.ExpectedOutputFile != "" {
				fmt.Fprintf(&b, " + %s", t.ExpectedOutputFile)
			}
			b.WriteString(")\n")

			source, closeAll, err := testfile.OpenRecords(t.InputFile, t.ExpectedOutputFile)
			if err != nil {
				return "", err
			}
			sub := 0
			for source.Scan() {
				sub++
				record := source.Test()
				fmt.Fprintf(&b, "  test %d.%d\n", i+1, sub)
				writePair(&b, "    ", record.Input, record.ExpectedOutput)
			}
			err = source.Err()
			closeAll()
			if err != nil {
				return "", err
			}
		}
	}
	return b.String(), nil
}

func writePair(b *strings.Builder, indent, input, expected string) {
	fmt.Fprintf(b, "%sinput:\n%s\n", indent, indentLines(input, indent+"  "))
	fmt.Fprintf(b, "%sexpected:\n%s\n", indent, indentLines(expected, indent+"  "))
}

func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
