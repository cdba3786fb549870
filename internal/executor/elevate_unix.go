//go:build !windows

package executor

import (
	"os"
	"os/exec"
)

// isRoot returns true if the current process is running as root.
func isRoot() bool {
	return os.Geteuid() == 0
}

// hasPkexec returns true if pkexec is available on the system.
func hasPkexec() bool {
	_, err := exec.LookPath("pkexec")
	return err == nil
}

// hasSudo returns true if sudo is available on the system.
func hasSudo() bool {
	_, err := exec.LookPath("sudo")
	return err == nil
}
