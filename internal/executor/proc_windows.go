//go:build windows

package executor

import "os/exec"

// configureProcess keeps the default cancellation (Process.Kill) on Windows.
func configureProcess(cmd *exec.Cmd) {}
