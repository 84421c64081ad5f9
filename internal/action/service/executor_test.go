//go:build unix

package service

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

func TestExecutor_Exec(t *testing.T) {
	ctx := context.Background()
	executor := NewExecutor()

	t.Run("substitutes placeholder in args", func(t *testing.T) {
		secret := cryptoDomain.NewSecretString("s3cr3t")
		defer secret.Destroy()

		result, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "echo",
			Args:    []string{"--token", "{{secret}}"},
		})
		require.NoError(t, err)
		assert.Equal(t, "--token s3cr3t\n", result.Stdout)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("substitutes placeholder in env and keeps the request untouched", func(t *testing.T) {
		secret := cryptoDomain.NewSecretString("s3cr3t")
		defer secret.Destroy()

		req := &actionDomain.ExecRequest{
			Command: "sh",
			Args:    []string{"-c", `printf '%s|%s' "$API_KEY" "$PLAIN"`},
			Env:     map[string]string{"API_KEY": "{{secret}}", "PLAIN": "x-{{secret}}-y"},
		}
		result, err := executor.Exec(ctx, secret, req)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t|x-s3cr3t-y", result.Stdout)
		assert.Equal(t, "{{secret}}", req.Env["API_KEY"])
	})

	t.Run("nil env inherits the parent environment", func(t *testing.T) {
		t.Setenv("SECRETBROKER_EXEC_TEST", "inherited")
		secret := cryptoDomain.NewSecretString("unused")
		defer secret.Destroy()

		result, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "sh",
			Args:    []string{"-c", `printf '%s' "$SECRETBROKER_EXEC_TEST"`},
		})
		require.NoError(t, err)
		assert.Equal(t, "inherited", result.Stdout)
	})

	t.Run("captures stderr and exit code", func(t *testing.T) {
		secret := cryptoDomain.NewSecretString("unused")
		defer secret.Destroy()

		result, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "sh",
			Args:    []string{"-c", "echo oops >&2; exit 3"},
		})
		require.NoError(t, err)
		assert.Equal(t, "oops\n", result.Stderr)
		assert.Equal(t, 3, result.ExitCode)
	})

	t.Run("feeds stdin", func(t *testing.T) {
		secret := cryptoDomain.NewSecretString("unused")
		defer secret.Destroy()

		result, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "cat",
			Stdin:   []byte("payload"),
		})
		require.NoError(t, err)
		assert.Equal(t, "payload", result.Stdout)
	})

	t.Run("runs in the requested directory", func(t *testing.T) {
		dir := t.TempDir()
		secret := cryptoDomain.NewSecretString("unused")
		defer secret.Destroy()

		result, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{Command: "pwd", Dir: dir})
		require.NoError(t, err)

		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("spawn failure does not leak arguments", func(t *testing.T) {
		secret := cryptoDomain.NewSecretString("s3cr3t")
		defer secret.Destroy()

		_, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "/nonexistent/secretbroker-binary",
			Args:    []string{"{{secret}}"},
		})
		require.ErrorIs(t, err, actionDomain.ErrSpawnFailure)
		assert.NotContains(t, err.Error(), "s3cr3t")
	})

	t.Run("invalid request", func(t *testing.T) {
		secret := cryptoDomain.NewSecretString("unused")
		defer secret.Destroy()

		_, err := executor.Exec(ctx, secret, &actionDomain.ExecRequest{})
		assert.ErrorIs(t, err, actionDomain.ErrInvalidRequest)
	})

	t.Run("custom placeholder", func(t *testing.T) {
		custom := NewExecutor(WithPlaceholder("%SECRET%"))
		secret := cryptoDomain.NewSecretString("abc")
		defer secret.Destroy()

		result, err := custom.Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "echo",
			Args:    []string{"%SECRET%", "{{secret}}"},
		})
		require.NoError(t, err)
		assert.Equal(t, "abc {{secret}}\n", result.Stdout)
	})
}

func TestExecutor_Timeout(t *testing.T) {
	ctx := context.Background()
	secret := cryptoDomain.NewSecretString("unused")
	defer secret.Destroy()

	t.Run("request timeout kills the command", func(t *testing.T) {
		start := time.Now()
		_, err := NewExecutor().Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "sleep",
			Args:    []string{"10"},
			Timeout: 50 * time.Millisecond,
		})
		require.ErrorIs(t, err, actionDomain.ErrExecutionTimeout)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("command that exits before the deadline is not a timeout", func(t *testing.T) {
		// sh exits at once; the backgrounded sleep keeps stdout open past the
		// deadline, so Wait returns only after execution time is up.
		result, err := NewExecutor().Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "sh",
			Args:    []string{"-c", "sleep 0.3 & exit 0"},
			Timeout: 100 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("default timeout applies when the request has none", func(t *testing.T) {
		_, err := NewExecutor(WithDefaultTimeout(50*time.Millisecond)).Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "sleep",
			Args:    []string{"10"},
		})
		assert.ErrorIs(t, err, actionDomain.ErrExecutionTimeout)
	})

	t.Run("process is gone after timeout", func(t *testing.T) {
		pidFile := filepath.Join(t.TempDir(), "pid")

		_, err := NewExecutor().Exec(ctx, secret, &actionDomain.ExecRequest{
			Command: "sh",
			Args:    []string{"-c", `echo $$ > "$1"; exec sleep 10`, "sh", pidFile},
			Timeout: 200 * time.Millisecond,
		})
		require.ErrorIs(t, err, actionDomain.ErrExecutionTimeout)

		raw, err := os.ReadFile(pidFile)
		require.NoError(t, err)
		pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		require.NoError(t, err)

		assert.ErrorIs(t, syscall.Kill(pid, 0), syscall.ESRCH)
	})

	t.Run("parent cancellation is reported as such", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		time.AfterFunc(50*time.Millisecond, cancel)

		_, err := NewExecutor().Exec(cancelCtx, secret, &actionDomain.ExecRequest{
			Command: "sleep",
			Args:    []string{"10"},
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTrackKill(t *testing.T) {
	t.Run("kill delivered", func(t *testing.T) {
		cmd := exec.Command("true")
		cmd.Cancel = func() error { return nil }
		killed := trackKill(cmd)

		require.NoError(t, cmd.Cancel())
		assert.True(t, killed.Load())
	})

	t.Run("process already gone", func(t *testing.T) {
		cmd := exec.Command("true")
		cmd.Cancel = func() error { return os.ErrProcessDone }
		killed := trackKill(cmd)

		assert.ErrorIs(t, cmd.Cancel(), os.ErrProcessDone)
		assert.False(t, killed.Load())
	})
}
