package executor

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based test, skipped on windows")
	}
}

func TestRunSuccess(t *testing.T) {
	requireShell(t)
	e := NewCommandExecutor(0)

	res := e.Run(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"})
	require.NoError(t, res.Err)
	assert.True(t, res.Ok())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestRunNonzeroExit(t *testing.T) {
	requireShell(t)
	e := NewCommandExecutor(0)

	res := e.Run(context.Background(), []string{"sh", "-c", "exit 3"})
	assert.False(t, res.Ok())
	assert.Equal(t, 3, res.ExitCode)
	assert.NoError(t, res.Err, "a nonzero exit is a result, not an execution error")
}

func TestRunMissingBinary(t *testing.T) {
	e := NewCommandExecutor(0)

	res := e.Run(context.Background(), []string{"definitely-not-a-binary-7f2a"})
	assert.False(t, res.Ok())
	assert.Equal(t, -1, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestRunEmptyArgv(t *testing.T) {
	e := NewCommandExecutor(0)

	res := e.Run(context.Background(), nil)
	assert.False(t, res.Ok())
	assert.Error(t, res.Err)
}

func TestRunTimeout(t *testing.T) {
	requireShell(t)
	e := NewCommandExecutor(100 * time.Millisecond)

	start := time.Now()
	res := e.Run(context.Background(), []string{"sh", "-c", "sleep 5"})
	assert.False(t, res.Ok())
	assert.Less(t, time.Since(start), 3*time.Second, "hung compressor must be bounded by the timeout")
}
