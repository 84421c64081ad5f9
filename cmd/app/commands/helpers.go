// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/secretbroker/internal/app"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// redactedMarker replaces secret occurrences in relayed command output.
const redactedMarker = "[REDACTED]"

// IOTuple holds reader and writers for commands, allowing for testing.
type IOTuple struct {
	Reader    io.Reader
	Writer    io.Writer
	ErrWriter io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin, os.Stdout and os.Stderr.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader:    os.Stdin,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
	}
}

// SecretGetter loads a named secret from the configured backend.
type SecretGetter interface {
	Get(ctx context.Context, name string) (*cryptoDomain.Secret, error)
}

// Authorizer asks the operator whether caller may use secret.
type Authorizer interface {
	Authorize(ctx context.Context, secret, caller, reason string, useCache bool) error
}

// TokenIssuer mints and revokes the single-use tokens the CLI hands to the
// action pipeline.
type TokenIssuer interface {
	Issue(ctx context.Context, input *tokenDomain.IssueTokenInput) (*tokenDomain.IssueTokenOutput, error)
	Revoke(ctx context.Context, token string) error
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// authorizeAndIssue loads secretName, asks the operator and mints a token for
// caller. The returned release func revokes the token; callers defer it.
func authorizeAndIssue(
	ctx context.Context,
	secrets SecretGetter,
	gate Authorizer,
	tokens TokenIssuer,
	logger *slog.Logger,
	secretName, caller, reason string,
	useCache bool,
) (*cryptoDomain.Secret, string, func(), error) {
	secret, err := secrets.Get(ctx, secretName)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load secret %q: %w", secretName, err)
	}

	if err := gate.Authorize(ctx, secretName, caller, reason, useCache); err != nil {
		secret.Destroy()
		return nil, "", nil, err
	}

	out, err := tokens.Issue(ctx, &tokenDomain.IssueTokenInput{
		Secret:  secret,
		Subject: caller,
		Extra:   map[string]string{"secret": secretName},
	})
	if err != nil {
		secret.Destroy()
		return nil, "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	release := func() {
		if err := tokens.Revoke(context.Background(), out.Token); err != nil {
			logger.Warn("failed to revoke single-use token", slog.String("jti", out.TokenID), slog.Any("error", err))
		}
	}
	return secret, out.Token, release, nil
}

// redact replaces every occurrence of secret in s.
func redact(s string, secret *cryptoDomain.Secret) string {
	if secret == nil || secret.Len() == 0 {
		return s
	}
	return strings.ReplaceAll(s, secret.Reveal(), redactedMarker)
}

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
