// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"context"
	"os"
	"os/exec"
	"time"
)

// runner abstracts executable lookup and process execution for testing.
type runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, extraEnv []string) error
}

// osRunner is the production runner backed by os/exec. Processes run
// detached from the terminal with all standard streams discarded, the
// way soffice must be driven in headless batch use.
type osRunner struct{}

func (o *osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osRunner) Run(ctx context.Context, name string, args []string, extraEnv []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), extraEnv...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	// Give the tree a short grace period after cancellation before
	// Wait gives up on it.
	cmd.WaitDelay = 3 * time.Second
	setProcessGroup(cmd)
	return cmd.Run()
}

var defaultRunner = &osRunner{}
