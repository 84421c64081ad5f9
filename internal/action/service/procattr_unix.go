//go:build unix

package service

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the command in its own process group and makes
// cancellation SIGKILL the whole group, so helpers forked by the command die
// with it.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
