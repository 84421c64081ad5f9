package approval

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/allisson/secretbroker/internal/errors"
)

// Inspector scores the script asking for a secret.
type Inspector struct {
	tempDir string
}

// NewInspector creates an Inspector.
func NewInspector() *Inspector {
	return &Inspector{tempDir: os.TempDir()}
}

// Inspect hashes the file at path and scores it. One point each for being a
// regular file, not writable by others, not writable by the group, living
// outside the temp directory, and being executable or starting with a shebang.
func (i *Inspector) Inspect(path string) (TrustInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return TrustInfo{}, errors.Wrap(err, "failed to resolve caller path")
	}

	file, err := os.Open(abs)
	if err != nil {
		return TrustInfo{}, errors.Wrap(errors.ErrInvalidInput, "caller is not readable")
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return TrustInfo{}, errors.Wrap(err, "failed to stat caller")
	}

	hash := sha256.New()
	head := make([]byte, 2)
	n, _ := io.ReadFull(file, head)
	hash.Write(head[:n])
	if _, err := io.Copy(hash, file); err != nil {
		return TrustInfo{}, errors.Wrap(err, "failed to hash caller")
	}

	trust := TrustInfo{ContentHash: hex.EncodeToString(hash.Sum(nil))}
	score := func(ok bool, finding string) {
		if ok {
			trust.Level++
		} else {
			trust.Findings = append(trust.Findings, finding)
		}
	}

	mode := info.Mode()
	score(mode.IsRegular(), "not a regular file")
	score(mode.Perm()&0o002 == 0, "writable by any user")
	score(mode.Perm()&0o020 == 0, "writable by its group")
	score(!i.inTempDir(abs), "located in a temporary directory")
	score(mode.Perm()&0o111 != 0 || string(head[:n]) == "#!", "neither executable nor a script")

	return trust, nil
}

func (i *Inspector) inTempDir(path string) bool {
	rel, err := filepath.Rel(i.tempDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
