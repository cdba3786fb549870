// Package executor handles command execution with privilege escalation support.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// elevationMu serializes every privileged invocation in the process. The
// escalation prompt (pkexec dialog or sudo password) is a single external
// resource; concurrent prompts must not interleave.
var elevationMu sync.Mutex

// Executor runs external commands, optionally through pkexec/sudo.
type Executor struct {
	dryRun  bool
	verbose bool
}

// New creates a new Executor with the given options.
func New(dryRun, verbose bool) *Executor {
	return &Executor{
		dryRun:  dryRun,
		verbose: verbose,
	}
}

// SetDryRun enables or disables dry-run mode.
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// SetVerbose enables or disables verbose mode.
func (e *Executor) SetVerbose(verbose bool) {
	e.verbose = verbose
}

// Run executes a command without elevation.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRun(name, args)
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if e.verbose {
		fmt.Printf("Executing: %s %s\n", name, strings.Join(args, " "))
	}

	return cmd.Run()
}

// Output runs a command and returns its stdout.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(name, args)
		return "", nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if e.verbose {
		fmt.Printf("Executing: %s %s\n", name, strings.Join(args, " "))
	}

	err := cmd.Run()
	return stdout.String(), err
}

// OutputQuiet runs a command and returns its stdout, suppressing stderr.
func (e *Executor) OutputQuiet(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(name, args)
		return "", nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if e.verbose {
		fmt.Printf("Executing: %s %s\n", name, strings.Join(args, " "))
	}

	err := cmd.Run()
	return stdout.String(), err
}

// Capture runs a command and returns stdout and stderr separately. Backends
// use the captured stderr for error classification.
func (e *Executor) Capture(ctx context.Context, name string, args ...string) (string, string, error) {
	if e.dryRun {
		e.printDryRun(name, args)
		return "", "", nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.verbose {
		fmt.Printf("Executing: %s %s\n", name, strings.Join(args, " "))
	}

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// RunElevated executes a command with elevated rights, preferring pkexec and
// falling back to sudo. It returns the captured stderr for classification.
// All elevated invocations in the process run one at a time.
func (e *Executor) RunElevated(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRunElevated(name, args)
		return "", nil
	}

	cmd, err := e.elevatedCommand(ctx, name, args)
	if err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	elevationMu.Lock()
	defer elevationMu.Unlock()

	runErr := cmd.Run()
	return stderr.String(), runErr
}

// OutputElevated runs a command with elevated rights and returns stdout and
// stderr. Serialized with every other elevated call.
func (e *Executor) OutputElevated(ctx context.Context, name string, args ...string) (string, string, error) {
	if e.dryRun {
		e.printDryRunElevated(name, args)
		return "", "", nil
	}

	cmd, err := e.elevatedCommand(ctx, name, args)
	if err != nil {
		return "", "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	elevationMu.Lock()
	defer elevationMu.Unlock()

	runErr := cmd.Run()
	return stdout.String(), stderr.String(), runErr
}

// elevatedCommand builds the exec.Cmd for a privileged invocation.
func (e *Executor) elevatedCommand(ctx context.Context, name string, args []string) (*exec.Cmd, error) {
	if isRoot() {
		if e.verbose {
			fmt.Printf("Executing (as root): %s %s\n", name, strings.Join(args, " "))
		}
		return exec.CommandContext(ctx, name, args...), nil
	}

	full := append([]string{name}, args...)
	switch {
	case hasPkexec():
		if e.verbose {
			fmt.Printf("Executing (with pkexec): %s %s\n", name, strings.Join(args, " "))
		}
		return exec.CommandContext(ctx, "pkexec", full...), nil
	case hasSudo():
		if e.verbose {
			fmt.Printf("Executing (with sudo): %s %s\n", name, strings.Join(args, " "))
		}
		return exec.CommandContext(ctx, "sudo", full...), nil
	}
	return nil, ErrNoPrivileges
}

func (e *Executor) printDryRun(name string, args []string) {
	fmt.Printf("[dry-run] Would execute: %s %s\n", name, strings.Join(args, " "))
}

func (e *Executor) printDryRunElevated(name string, args []string) {
	if isRoot() {
		fmt.Printf("[dry-run] Would execute (as root): %s %s\n", name, strings.Join(args, " "))
	} else {
		fmt.Printf("[dry-run] Would execute (elevated): %s %s\n", name, strings.Join(args, " "))
	}
}
