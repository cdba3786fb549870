package executor

// IsRoot returns true if the current process is running as root.
func IsRoot() bool {
	return isRoot()
}

// CanElevate returns true if the process can obtain elevated rights.
func CanElevate() bool {
	return isRoot() || hasPkexec() || hasSudo()
}

// ElevationMethod names the mechanism RunElevated would use, for diagnostics.
func ElevationMethod() string {
	switch {
	case isRoot():
		return "root"
	case hasPkexec():
		return "pkexec"
	case hasSudo():
		return "sudo"
	}
	return "none"
}

type errNoPrivileges struct{}

func (e errNoPrivileges) Error() string {
	return "this operation requires elevated rights, but neither pkexec nor sudo is available"
}

// ErrNoPrivileges is returned when privileges cannot be elevated.
var ErrNoPrivileges = errNoPrivileges{}
