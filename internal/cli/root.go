// Package cli defines the erunner command tree. All user-facing text lives
// here; the packages underneath return data and errors.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"erunner/internal/cache"
	"erunner/internal/core"
	"erunner/internal/logging"
)

// app carries the wiring shared by every command. It is built once in the
// root command's PersistentPreRun, after flags are parsed.
type app struct {
	store *cache.Store
	log   *zap.Logger

	stdin  io.Reader
	stdout io.Writer
}

// runner builds the orchestrator from the current registry config. It fails
// with the not-initialized error when no registry document exists, so every
// command that compiles or runs gets the init guard for free.
func (a *app) runner() (*core.Runner, error) {
	reg, err := a.store.Config()
	if err != nil {
		return nil, err
	}
	compiler := &core.CommandCompiler{Languages: reg.Languages}
	executor := core.NewExecutor(a.log)
	return core.NewRunner(a.store, compiler, executor, a.log), nil
}

// confirm prints a [y/N] prompt and reads one line. Anything but an
// explicit yes declines.
func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.stdout, "%s [y/N] ", prompt)
	r := bufio.NewReader(a.stdin)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// NewRootCmd builds the full erunner command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:   "erunner",
		Short: "Compile-cache and test runner for standalone source files",
		Long: "erunner hashes single-file programs, recompiles them only when their\n" +
			"content changed, and runs their registered tests against the cached binary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.store = cache.NewStore(".")
			a.log = logging.New(verbose)
			a.stdin = cmd.InOrStdin()
			a.stdout = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug diagnostics on stderr")

	root.AddCommand(
		newInitCmd(a),
		newStatusCmd(a),
		newRunCmd(a),
		newTestCmd(a),
		newCacheCmd(a),
	)
	return root
}

// Execute runs the command tree and maps the not-initialized error to a
// hint instead of a bare failure.
func Execute() error {
	err := NewRootCmd().Execute()
	if errors.Is(err, cache.ErrNotInitialized) {
		return fmt.Errorf("%w (run \"erunner init\" first)", err)
	}
	return err
}
