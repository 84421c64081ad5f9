package backend

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/allisson/secretbroker/internal/errors"
)

// MergeSetupResult merges result into the dotenv file at path, creating it if
// needed. Keys not in result are preserved; keys in result overwrite. The file
// is written with mode 0600 since it may hold a local keeper key.
func MergeSetupResult(path string, result SetupResult) error {
	current := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		current, err = godotenv.Read(path)
		if err != nil {
			return errors.Wrap(err, "failed to read env file")
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "failed to stat env file")
	}

	for key, value := range result.Options {
		current[key] = value
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return errors.Wrap(err, "failed to create env file directory")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return errors.Wrap(err, "failed to create env file")
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "failed to create env file")
	}
	if err := os.Chmod(path, fileMode); err != nil {
		return errors.Wrap(err, "failed to set env file mode")
	}
	if err := godotenv.Write(current, path); err != nil {
		return errors.Wrap(err, "failed to write env file")
	}
	return nil
}
