package backend

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	"github.com/allisson/secretbroker/internal/errors"
)

const (
	sealedExt = ".sealed"
	dirMode   = 0o700
	fileMode  = 0o600
)

// KeeperBackend stores each secret as <dir>/<name>.sealed, encrypted by a
// keeper. Plaintext never touches the disk.
type KeeperBackend struct {
	dir    string
	keeper cryptoDomain.Keeper
}

// NewKeeperBackend creates the storage directory if needed and returns a
// backend that seals values with keeper. The backend owns keeper and closes
// it on Close.
func NewKeeperBackend(dir string, keeper cryptoDomain.Keeper) (*KeeperBackend, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, errors.Wrap(err, "failed to create backend directory")
	}
	return &KeeperBackend{dir: dir, keeper: keeper}, nil
}

// Dir returns the storage directory.
func (k *KeeperBackend) Dir() string {
	return k.dir
}

// Get reads and unseals name.
func (k *KeeperBackend) Get(ctx context.Context, name string) (*cryptoDomain.Secret, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(k.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSecretNotFound
		}
		return nil, errors.Wrap(err, "failed to read sealed secret")
	}

	plaintext, err := k.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnavailable, "failed to unseal secret %q: %v", name, err)
	}
	return cryptoDomain.NewSecret(plaintext), nil
}

// Set seals value and writes it atomically: a temporary file in the same
// directory is renamed over the old one.
func (k *KeeperBackend) Set(ctx context.Context, name string, value []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	sealed, err := k.keeper.Encrypt(ctx, value)
	if err != nil {
		return errors.Wrap(err, "failed to seal secret")
	}

	tmp, err := os.CreateTemp(k.dir, "."+name+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to set file mode")
	}
	if _, err := tmp.Write(sealed); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write sealed secret")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write sealed secret")
	}
	if err := os.Rename(tmpName, k.path(name)); err != nil {
		return errors.Wrap(err, "failed to store sealed secret")
	}
	return nil
}

// Delete removes the sealed file for name.
func (k *KeeperBackend) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(k.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrSecretNotFound
		}
		return errors.Wrap(err, "failed to delete sealed secret")
	}
	return nil
}

// List returns the names of all sealed files, sorted.
func (k *KeeperBackend) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list backend directory")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sealedExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), sealedExt)
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the keeper.
func (k *KeeperBackend) Close() error {
	return k.keeper.Close()
}

func (k *KeeperBackend) path(name string) string {
	return filepath.Join(k.dir, name+sealedExt)
}
