//go:build windows

package executor

// The supported backends are Linux package managers; on Windows nothing can
// be elevated or removed, but the package still compiles for tooling.

func isRoot() bool { return false }

func hasPkexec() bool { return false }

func hasSudo() bool { return false }
