package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/allisson/secretbroker/internal/backend"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// SecretWriter stores secrets in the configured backend.
type SecretWriter interface {
	Set(ctx context.Context, name string, value []byte) error
}

// SecretDeleter removes secrets from the configured backend.
type SecretDeleter interface {
	Delete(ctx context.Context, name string) error
}

// SecretLister lists secret names in the configured backend.
type SecretLister interface {
	List(ctx context.Context) ([]string, error)
}

// RunSecretSet stores a secret read from streams.Reader under name. When the
// reader is a terminal the value is read without echo; otherwise the whole
// input is used with one trailing newline removed.
func RunSecretSet(
	ctx context.Context,
	store SecretWriter,
	logger *slog.Logger,
	streams IOTuple,
	name string,
) error {
	if err := backend.ValidateName(name); err != nil {
		return err
	}

	value, err := readSecretValue(streams, name)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(value)

	if len(value) == 0 {
		return fmt.Errorf("empty secret value")
	}

	if err := store.Set(ctx, name, value); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	logger.Info("secret stored", slog.String("name", name))
	return nil
}

// RunSecretDelete removes the secret stored under name.
func RunSecretDelete(ctx context.Context, store SecretDeleter, logger *slog.Logger, name string) error {
	if err := store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	logger.Info("secret deleted", slog.String("name", name))
	return nil
}

// RunSecretList prints stored secret names, one per line, or as a JSON array
// when format is "json".
func RunSecretList(ctx context.Context, store SecretLister, writer io.Writer, format string) error {
	names, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list secrets: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, names)
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(writer, name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func readSecretValue(streams IOTuple, name string) ([]byte, error) {
	if file, ok := streams.Reader.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprintf(streams.ErrWriter, "Value for %s: ", name)
		value, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(streams.ErrWriter)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret value: %w", err)
		}
		return value, nil
	}

	value, err := io.ReadAll(streams.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret value: %w", err)
	}
	trimmed := bytes.TrimSuffix(value, []byte("\n"))
	trimmed = bytes.TrimSuffix(trimmed, []byte("\r"))
	return trimmed, nil
}
