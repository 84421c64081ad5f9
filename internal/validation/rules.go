// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/secretbroker/internal/errors"
)

var (
	// secretNameRegex allows names that are safe as file names on every
	// supported platform: no separators, no leading dot.
	secretNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]{0,127}$`)

	// envNameRegex matches portable environment variable names.
	envNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// keeperURIRegex requires a scheme, as gocloud.dev/secrets URLs always have one.
	keeperURIRegex = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*://`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretName validates a backend secret name.
var SecretName = validation.NewStringRuleWithError(
	func(s string) bool {
		return secretNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_secret_name",
		"must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
	),
)

// EnvName validates an environment variable name.
var EnvName = validation.NewStringRuleWithError(
	func(s string) bool {
		return envNameRegex.MatchString(s)
	},
	validation.NewError("validation_env_name", "must be a valid environment variable name"),
)

// KeeperURI validates that a string looks like a gocloud.dev/secrets URL.
var KeeperURI = validation.NewStringRuleWithError(
	func(s string) bool {
		return keeperURIRegex.MatchString(s)
	},
	validation.NewError("validation_keeper_uri", "must be a keeper URL such as base64key:// or hashivault://"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
