package approval

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCaller(t *testing.T, dir, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "deploy.sh")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestTrustInfo_Stars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", TrustInfo{Level: 3}.Stars())
	assert.Equal(t, "☆☆☆☆☆", TrustInfo{Level: -1}.Stars())
	assert.Equal(t, "★★★★★", TrustInfo{Level: 9}.Stars())
}

func TestInspector_Inspect(t *testing.T) {
	t.Run("trusted script", func(t *testing.T) {
		inspector := &Inspector{tempDir: filepath.Join(t.TempDir(), "elsewhere")}
		path := writeCaller(t, t.TempDir(), "#!/bin/sh\necho hi\n", 0o700)

		trust, err := inspector.Inspect(path)
		require.NoError(t, err)
		assert.Equal(t, MaxTrustLevel, trust.Level)
		assert.Empty(t, trust.Findings)
		assert.Len(t, trust.ContentHash, 64)
	})

	t.Run("world writable file in temp dir", func(t *testing.T) {
		dir := t.TempDir()
		inspector := &Inspector{tempDir: dir}
		path := writeCaller(t, dir, "echo hi\n", 0o666)

		trust, err := inspector.Inspect(path)
		require.NoError(t, err)
		assert.Equal(t, 1, trust.Level)
		assert.Len(t, trust.Findings, 4)
	})

	t.Run("hash follows content", func(t *testing.T) {
		inspector := NewInspector()
		dir := t.TempDir()
		path := writeCaller(t, dir, "one", 0o600)
		first, err := inspector.Inspect(path)
		require.NoError(t, err)

		path = writeCaller(t, dir, "two", 0o600)
		second, err := inspector.Inspect(path)
		require.NoError(t, err)
		assert.NotEqual(t, first.ContentHash, second.ContentHash)
	})

	t.Run("missing caller", func(t *testing.T) {
		_, err := NewInspector().Inspect(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestCache(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "approvals.json")
	cache := NewCache(path, time.Minute)

	ok, err := cache.Lookup("github", "hash", now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Remember("github", "hash", now))
	require.NoError(t, cache.Remember("aws", "hash", now))

	ok, err = cache.Lookup("github", "hash", now.Add(59*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.Lookup("github", "other-hash", now)
	require.NoError(t, err)
	assert.False(t, ok, "edited caller needs a new approval")

	ok, err = cache.Lookup("github", "hash", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	require.NoError(t, cache.Forget("github"))
	ok, err = NewCache(path, time.Minute).Lookup("github", "hash", now)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = NewCache(path, time.Minute).Lookup("aws", "hash", now)
	require.NoError(t, err)
	assert.True(t, ok, "persisted across instances")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCache_CorruptFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approvals.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	ok, err := NewCache(path, time.Minute).Lookup("github", "hash", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func newTestPrompter(input string, terminal bool) (*TerminalPrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &TerminalPrompter{
		in:         strings.NewReader(input),
		out:        out,
		isTerminal: func(int) bool { return terminal },
	}, out
}

func TestTerminalPrompter_Confirm(t *testing.T) {
	ctx := context.Background()
	req := Request{
		Caller: "/home/dev/deploy.sh",
		Secret: "github",
		Reason: "release",
		Trust:  TrustInfo{Level: 4, Findings: []string{"writable by its group"}},
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		prompter, out := newTestPrompter(tt.input, true)
		approved, err := prompter.Confirm(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, approved, "input %q", tt.input)
		assert.Contains(t, out.String(), "★★★★☆")
		assert.Contains(t, out.String(), "release")
	}

	t.Run("not a terminal", func(t *testing.T) {
		prompter, _ := newTestPrompter("y\n", false)
		_, err := prompter.Confirm(ctx, req)
		assert.ErrorIs(t, err, ErrNotInteractive)
	})
}

func TestGate_Authorize(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	caller := writeCaller(t, t.TempDir(), "#!/bin/sh\n", 0o700)

	t.Run("denied", func(t *testing.T) {
		gate := NewGate(NewInspector(), nil, StaticPrompter{Approve: false}, logger)
		assert.ErrorIs(t, gate.Authorize(ctx, "github", caller, "", false), ErrDenied)
	})

	t.Run("approval is cached only when asked", func(t *testing.T) {
		cache := NewCache(filepath.Join(t.TempDir(), "approvals.json"), time.Hour)

		gate := NewGate(NewInspector(), cache, StaticPrompter{Approve: true}, logger)
		require.NoError(t, gate.Authorize(ctx, "github", caller, "", false))

		denying := NewGate(NewInspector(), cache, StaticPrompter{Approve: false}, logger)
		assert.ErrorIs(t, denying.Authorize(ctx, "github", caller, "", true), ErrDenied)

		require.NoError(t, gate.Authorize(ctx, "github", caller, "", true))
		assert.NoError(t, denying.Authorize(ctx, "github", caller, "", true), "served from cache")
		assert.ErrorIs(t, denying.Authorize(ctx, "github", caller, "", false), ErrDenied, "cache bypassed")
	})
}
