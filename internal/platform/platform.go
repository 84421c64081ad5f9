// Package platform detects the operating system the broker runs on and where
// it keeps its files there.
package platform

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/allisson/secretbroker/internal/errors"
)

// AppName names the per-user configuration directory.
const AppName = "secretbroker"

// ErrUnsupportedPlatform indicates an operating system the broker does not run on.
var ErrUnsupportedPlatform = errors.Wrap(errors.ErrUnsupported, "unsupported platform")

// Platform is a supported operating system.
type Platform string

// Supported platforms.
const (
	Linux   Platform = "linux"
	Darwin  Platform = "darwin"
	Windows Platform = "windows"
	FreeBSD Platform = "freebsd"
)

// Detect returns the platform of the running process.
func Detect() (Platform, error) {
	return DetectOS(runtime.GOOS)
}

// DetectOS maps a GOOS value to a Platform.
func DetectOS(goos string) (Platform, error) {
	switch p := Platform(goos); p {
	case Linux, Darwin, Windows, FreeBSD:
		return p, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedPlatform, "%s", goos)
	}
}

// SupportsProcessGroups reports whether a timed-out command's children can be
// killed together with it.
func (p Platform) SupportsProcessGroups() bool {
	return p != Windows
}

// ConfigDir returns the broker's configuration directory: the user config
// directory (XDG_CONFIG_HOME, ~/Library/Application Support or %AppData%)
// joined with AppName.
func (p Platform) ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(base, AppName), nil
}

// SecretsDir returns the default keeper backend directory.
func (p Platform) SecretsDir() (string, error) {
	dir, err := p.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "secrets"), nil
}

// EnvFile returns the path setup writes its result to.
func (p Platform) EnvFile() (string, error) {
	dir, err := p.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// ApprovalCacheFile returns the path of the approval cache.
func (p Platform) ApprovalCacheFile() (string, error) {
	dir, err := p.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "approvals.json"), nil
}
