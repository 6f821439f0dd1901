// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package normalize

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in a new process group so that
// cancellation does not leak signals to the parent console. On Windows
// the default CommandContext kill terminates the group leader; soffice
// helpers exit with it once the profile directory disappears.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
