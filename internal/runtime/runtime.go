// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
)

// ErrScriptFailed is wrapped by every ScriptFailedError.
var ErrScriptFailed = errors.New("script execution failed")

type (
	// Request describes one script invocation.
	Request struct {
		// Script is the path of the script to run. It has already been
		// resolved inside the plugin directory by the caller.
		Script string
		// Args are passed to the script as $1, $2, ...
		Args []string
		// Dir is the working directory (the plugin directory).
		Dir string
		// Env is added on top of the host environment.
		Env map[string]string
		// Stdin is optional.
		Stdin io.Reader
		// ExecutionID identifies this invocation in logs and the environment.
		ExecutionID string
	}

	// Result contains the outcome of a script execution.
	Result struct {
		// ExitCode is the script's exit status.
		ExitCode ExitCode
		// Error reports a failure to run the script at all (not found,
		// parse error, canceled). A non-zero ExitCode alone is not an Error.
		Error error
		// Output contains captured stdout.
		Output string
		// ErrOutput contains captured stderr.
		ErrOutput string
	}

	// Executor runs scripts.
	Executor interface {
		// Name returns the executor name.
		Name() string
		// Execute runs req and captures its output.
		Execute(ctx context.Context, req *Request) *Result
	}

	// ScriptFailedError is returned by Result.Err for scripts that could not
	// be run or exited non-zero.
	ScriptFailedError struct {
		Script   string
		ExitCode ExitCode
		Stderr   string
		Err      error
	}

	// Registry maps runtime modes to executors.
	Registry struct {
		executors map[config.RuntimeMode]Executor
	}
)

// NewRequest creates a Request with a fresh execution ID.
func NewRequest(script, dir string, args ...string) *Request {
	return &Request{
		Script:      script,
		Args:        args,
		Dir:         dir,
		Env:         make(map[string]string),
		ExecutionID: uuid.NewString(),
	}
}

// Success returns true if the script ran and exited 0.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// Err converts an unsuccessful result into a ScriptFailedError, or nil.
func (r *Result) Err(script string) error {
	if r.Success() {
		return nil
	}
	return &ScriptFailedError{
		Script:   script,
		ExitCode: r.ExitCode,
		Stderr:   strings.TrimSpace(r.ErrOutput),
		Err:      r.Error,
	}
}

// Error implements the error interface.
func (e *ScriptFailedError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "%v: %s", ErrScriptFailed, e.Script)
	if e.Err != nil {
		fmt.Fprintf(&msg, ": %v", e.Err)
	} else {
		fmt.Fprintf(&msg, " exited with status %d", e.ExitCode)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&msg, ": %s", e.Stderr)
	}
	return msg.String()
}

// Unwrap exposes ErrScriptFailed and, when present, the underlying cause.
func (e *ScriptFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrScriptFailed}
	}
	return []error{ErrScriptFailed, e.Err}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[config.RuntimeMode]Executor),
	}
}

// DefaultRegistry returns a registry with the native, virtual and auto
// executors registered.
func DefaultRegistry() *Registry {
	native := NewNativeExecutor()
	virtual := NewVirtualExecutor()

	r := NewRegistry()
	r.Register(config.RuntimeNative, native)
	r.Register(config.RuntimeVirtual, virtual)
	r.Register(config.RuntimeAuto, NewAutoExecutor(native, virtual))
	return r
}

// Register adds an executor to the registry.
func (r *Registry) Register(mode config.RuntimeMode, ex Executor) {
	r.executors[mode] = ex
}

// Get returns the executor for mode. The empty mode means auto.
func (r *Registry) Get(mode config.RuntimeMode) (Executor, error) {
	if mode == "" {
		mode = config.RuntimeAuto
	}
	ex, ok := r.executors[mode]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", mode)
	}
	return ex, nil
}

// Modes returns the registered modes in sorted order.
func (r *Registry) Modes() []config.RuntimeMode {
	return slices.Sorted(maps.Keys(r.executors))
}

// buildEnv returns the host environment with extra appended in key order.
// Later entries win, so extra overrides host values of the same name.
func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}
	return env
}
