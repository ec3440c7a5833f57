// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
)

var (
	// ErrNotFound is returned when no registered plugin has the requested name.
	ErrNotFound = errors.New("plugin not found")
	// ErrCommandNotFound is returned when a plugin does not declare a command.
	ErrCommandNotFound = errors.New("command not found")
	// ErrHookNotFound is returned when a plugin does not declare a hook.
	ErrHookNotFound = errors.New("hook not found")
	// ErrNotEnabled is returned when a command is run on a disabled plugin.
	ErrNotEnabled = errors.New("plugin not enabled")
	// ErrAlreadyInstalled is returned when the install target already exists.
	ErrAlreadyInstalled = errors.New("plugin already installed")
	// ErrDependencyMissing is returned when a dependency is not registered.
	ErrDependencyMissing = errors.New("dependency missing")
	// ErrDependencyVersionMismatch is returned when a registered dependency
	// does not satisfy the declared requirement.
	ErrDependencyVersionMismatch = errors.New("dependency version mismatch")
	// ErrDependencyCycle is returned when enabling a plugin re-enters itself
	// through its dependencies.
	ErrDependencyCycle = errors.New("dependency cycle")
	// ErrScriptNotFound is returned when a hook or command script does not
	// exist inside the plugin directory.
	ErrScriptNotFound = errors.New("script not found")
)

type (
	// NotFoundError reports an unknown plugin.
	NotFoundError struct {
		Name string
	}

	// DependencyMissingError reports a dependency that is not registered.
	DependencyMissingError struct {
		Plugin     string
		Dependency string
	}

	// DependencyVersionMismatchError reports a dependency whose version does
	// not satisfy the requirement declared by Plugin.
	DependencyVersionMismatchError struct {
		Plugin      string
		Dependency  string
		Requirement string
		Version     string
		// Err is set when the requirement or the version could not be parsed.
		Err error
	}

	// DependencyCycleError reports the enable chain that led back to a plugin
	// already being enabled. The last element equals an earlier one.
	DependencyCycleError struct {
		Chain []string
	}

	// AlreadyInstalledError reports an existing install target.
	AlreadyInstalledError struct {
		Name string
		Dir  string
	}

	// ScriptError is returned by ExecuteCommand when the command script could
	// not run or exited non-zero. Stderr holds the captured error output.
	ScriptError struct {
		Plugin  string
		Command string
		Stderr  string
		Err     error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrNotFound, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("plugin %s: %v: %s", e.Plugin, ErrDependencyMissing, e.Dependency)
}

func (e *DependencyMissingError) Unwrap() error { return ErrDependencyMissing }

func (e *DependencyVersionMismatchError) Error() string {
	msg := fmt.Sprintf("plugin %s: %v: %s %s does not satisfy %q",
		e.Plugin, ErrDependencyVersionMismatch, e.Dependency, e.Version, e.Requirement)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DependencyVersionMismatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDependencyVersionMismatch}
	}
	return []error{ErrDependencyVersionMismatch, e.Err}
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDependencyCycle, strings.Join(e.Chain, " -> "))
}

func (e *DependencyCycleError) Unwrap() error { return ErrDependencyCycle }

func (e *AlreadyInstalledError) Error() string {
	return fmt.Sprintf("%v: %s (%s)", ErrAlreadyInstalled, e.Name, e.Dir)
}

func (e *AlreadyInstalledError) Unwrap() error { return ErrAlreadyInstalled }

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("plugin %s: command %s failed", e.Plugin, e.Command)
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes runtime.ErrScriptFailed and the underlying cause.
func (e *ScriptError) Unwrap() []error {
	if e.Err == nil {
		return []error{runtime.ErrScriptFailed}
	}
	return []error{runtime.ErrScriptFailed, e.Err}
}
