package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secretbroker/internal/backend"
)

func TestRunSecretSet(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("Success_TrimsTrailingNewline", func(t *testing.T) {
		store := backend.NewMemoryBackend()
		defer func() { _ = store.Close() }()

		streams, _, _ := testIO("hunter2\r\n")
		require.NoError(t, RunSecretSet(ctx, store, logger, streams, "db-password"))

		secret, err := store.Get(ctx, "db-password")
		require.NoError(t, err)
		defer secret.Destroy()
		assert.Equal(t, "hunter2", secret.Reveal())
	})

	t.Run("Success_KeepsInnerNewlines", func(t *testing.T) {
		store := backend.NewMemoryBackend()
		defer func() { _ = store.Close() }()

		streams, _, _ := testIO("line1\nline2\n")
		require.NoError(t, RunSecretSet(ctx, store, logger, streams, "pem"))

		secret, err := store.Get(ctx, "pem")
		require.NoError(t, err)
		defer secret.Destroy()
		assert.Equal(t, "line1\nline2", secret.Reveal())
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		streams, _, _ := testIO("value")
		err := RunSecretSet(ctx, backend.NewMemoryBackend(), logger, streams, "bad name")
		assert.ErrorIs(t, err, backend.ErrInvalidSecretName)
	})

	t.Run("Error_EmptyValue", func(t *testing.T) {
		streams, _, _ := testIO("\n")
		err := RunSecretSet(ctx, backend.NewMemoryBackend(), logger, streams, "empty")
		assert.ErrorContains(t, err, "empty secret value")
	})
}

func TestRunSecretDeleteAndList(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	store := backend.NewMemoryBackend()
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Set(ctx, "b-key", []byte("b")))
	require.NoError(t, store.Set(ctx, "a-key", []byte("a")))

	var out bytes.Buffer
	require.NoError(t, RunSecretList(ctx, store, &out, "text"))
	assert.Equal(t, "a-key\nb-key\n", out.String())

	require.NoError(t, RunSecretDelete(ctx, store, logger, "a-key"))

	out.Reset()
	require.NoError(t, RunSecretList(ctx, store, &out, "json"))
	assert.JSONEq(t, `["b-key"]`, out.String())

	err := RunSecretDelete(ctx, store, logger, "a-key")
	assert.ErrorIs(t, err, backend.ErrSecretNotFound)
}
