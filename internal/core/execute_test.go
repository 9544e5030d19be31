package core

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script to act as a compiled binary.
func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test binaries are shell scripts")
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func TestExecutorEchoesStdin(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "echo.out")
	writeScript(t, binary, "cat")

	outcome, err := NewExecutor(nil).Run(context.Background(), binary,
		CustomStdin{Input: "1 2 3\n"})
	require.NoError(t, err)

	success, ok := outcome.(Successful)
	require.True(t, ok, "got %T", outcome)
	assert.Equal(t, "1 2 3\n", success.Output)
	assert.Greater(t, success.Elapsed, time.Duration(0))
}

func TestExecutorFeedsLargeInput(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "wc.out")
	writeScript(t, binary, "wc -c")

	// Well past one stdin chunk, so the writer loops.
	input := strings.Repeat("a", 100_000)
	outcome, err := NewExecutor(nil).Run(context.Background(), binary,
		CustomStdin{Input: input})
	require.NoError(t, err)

	success, ok := outcome.(Successful)
	require.True(t, ok, "got %T", outcome)
	assert.Equal(t, "100000", strings.TrimSpace(success.Output))
}

func TestExecutorMissingBinary(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "absent.out")

	outcome, err := NewExecutor(nil).Run(context.Background(), binary,
		CustomStdin{Input: ""})
	require.NoError(t, err)
	assert.IsType(t, NeedsRecompilation{}, outcome)
}

func TestExecutorNonZeroExit(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "fail.out")
	writeScript(t, binary, "exit 3")

	outcome, err := NewExecutor(nil).Run(context.Background(), binary,
		CustomStdin{Input: ""})
	require.NoError(t, err)

	failed, ok := outcome.(Failed)
	require.True(t, ok, "got %T", outcome)
	assert.Contains(t, failed.Reason, "3")
}

func TestExecutorToleratesUnreadInput(t *testing.T) {
	// The binary exits without reading stdin; the feeding goroutine must
	// not wedge the run.
	binary := filepath.Join(t.TempDir(), "ignore.out")
	writeScript(t, binary, "echo done")

	outcome, err := NewExecutor(nil).Run(context.Background(), binary,
		CustomStdin{Input: strings.Repeat("b", 1_000_000)})
	require.NoError(t, err)

	success, ok := outcome.(Successful)
	require.True(t, ok, "got %T", outcome)
	assert.Equal(t, "done\n", success.Output)
}
