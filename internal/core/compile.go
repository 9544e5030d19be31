package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/shlex"
)

// ErrUnsupportedExtension is returned when no build command is configured
// for a source file's extension.
var ErrUnsupportedExtension = errors.New("no build command configured for extension")

// BuildError reports a build command that ran but did not succeed.
type BuildError struct {
	Command string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build command %q failed: %s", e.Command, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Compiler turns a source file into a binary. The production implementation
// shells out to the configured per-language command; tests substitute fakes.
type Compiler interface {
	// Compile builds sourcePath into binDir. The binary is expected at
	// BinaryPath(binDir, sourcePath) afterwards, but Compile does not
	// verify that itself.
	Compile(ctx context.Context, sourcePath, binDir string) error
}

// CommandCompiler builds sources with the per-extension command templates
// from the registry config.
type CommandCompiler struct {
	// Languages maps extensions (without the dot) to command templates.
	Languages map[string]string
}

// Compile expands the template for the source's extension, splits it
// shell-style and runs it with inherited stdout and stderr, so compiler
// diagnostics reach the user directly.
func (c *CommandCompiler) Compile(ctx context.Context, sourcePath, binDir string) error {
	ext, err := Extension(sourcePath)
	if err != nil {
		return err
	}
	template, ok := c.Languages[ext]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	command := ExpandTemplate(template, sourcePath, binDir)
	argv, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("parsing build command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("build command for %q is empty", ext)
	}

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating binary directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &BuildError{Command: command, Err: err}
	}
	return nil
}
