package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// stdinChunkSize is the write size used when piping a custom input string
// into the binary's stdin.
const stdinChunkSize = 1024

// Stdin selects how a binary's standard input is wired up. The two kinds
// are matched exhaustively by Executor.Run.
type Stdin interface {
	isStdin()
}

// InheritStdin connects the binary to the parent's stdin, for interactive
// runs.
type InheritStdin struct{}

func (InheritStdin) isStdin() {}

// CustomStdin pipes a fixed input string into the binary.
type CustomStdin struct {
	Input string
}

func (CustomStdin) isStdin() {}

// Outcome is the result of one binary execution. The three kinds are
// matched exhaustively by callers.
type Outcome interface {
	isOutcome()
}

// Successful carries the captured stdout and wall-clock duration of a
// zero-exit run. Output is empty when stdio was inherited.
type Successful struct {
	Output  string
	Elapsed time.Duration
}

func (Successful) isOutcome() {}

// NeedsRecompilation reports that the binary was not found on disk. The
// caller decides whether to rebuild and retry.
type NeedsRecompilation struct{}

func (NeedsRecompilation) isOutcome() {}

// Failed reports a run that started but exited non-zero or crashed.
type Failed struct {
	Reason string
}

func (Failed) isOutcome() {}

// Executor runs compiled binaries.
type Executor struct {
	log *zap.Logger
}

// NewExecutor returns an Executor. A nil logger disables diagnostics.
func NewExecutor(log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{log: log}
}

// Run executes the binary at binaryPath with the given stdin wiring.
//
// With CustomStdin, stdout is captured and stderr is passed through to the
// parent, so debug prints stay visible while comparisons see only stdout.
// With InheritStdin all three streams are inherited and the returned output
// is empty.
func (e *Executor) Run(ctx context.Context, binaryPath string, stdin Stdin) (Outcome, error) {
	if _, err := os.Stat(binaryPath); err != nil {
		if os.IsNotExist(err) {
			e.log.Debug("binary missing", zap.String("path", binaryPath))
			return NeedsRecompilation{}, nil
		}
		return nil, fmt.Errorf("checking binary: %w", err)
	}

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Stderr = os.Stderr

	var captured *bytes.Buffer
	var feed func() error

	switch in := stdin.(type) {
	case InheritStdin:
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		feed = func() error { return nil }

	case CustomStdin:
		captured = &bytes.Buffer{}
		cmd.Stdout = captured

		pipe, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("opening stdin pipe: %w", err)
		}
		input := in.Input
		feed = func() error {
			defer pipe.Close()
			w := bufio.NewWriterSize(pipe, stdinChunkSize)
			for len(input) > 0 {
				n := stdinChunkSize
				if n > len(input) {
					n = len(input)
				}
				if _, err := w.WriteString(input[:n]); err != nil {
					return err
				}
				input = input[n:]
			}
			return w.Flush()
		}

	default:
		return nil, fmt.Errorf("unknown stdin kind %T", stdin)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", binaryPath, err)
	}

	// Feed stdin from its own goroutine: the binary may not read its input
	// before producing output, and a synchronous write could deadlock on a
	// full pipe.
	feedErr := make(chan error, 1)
	go func() { feedErr <- feed() }()

	runErr := cmd.Wait()
	elapsed := time.Since(start)

	// A write error usually means the binary exited without draining its
	// input. That is the binary's business, not ours, so it is logged and
	// otherwise ignored.
	if err := <-feedErr; err != nil {
		e.log.Debug("stdin write interrupted",
			zap.String("binary", binaryPath), zap.Error(err))
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return Failed{Reason: exitErr.Error()}, nil
		}
		return nil, fmt.Errorf("running %s: %w", binaryPath, runErr)
	}

	var output string
	if captured != nil {
		output = captured.String()
	}
	e.log.Debug("binary finished",
		zap.String("binary", binaryPath),
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", len(output)))

	return Successful{Output: output, Elapsed: elapsed}, nil
}

// trimOutput normalizes an output for relaxed comparison.
func trimOutput(s string) string {
	return strings.TrimSpace(s)
}
