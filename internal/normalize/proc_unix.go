// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package normalize

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group and arranges
// for cancellation to kill the whole group. soffice forks helpers, and
// killing only the leader leaves them holding profile locks.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
