//go:build !unix

package service

import (
	"os/exec"
)

// configureProcessGroup kills only the direct child on platforms without
// process groups.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}
