// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/hyprsupreme/hyprsupreme/internal/logging"
)

// NativeExecutor runs scripts as host processes. The script must be
// executable (a binary, or a text file with a shebang line).
type NativeExecutor struct {
	logger *log.Logger
}

// NewNativeExecutor creates a native executor.
func NewNativeExecutor() *NativeExecutor {
	return &NativeExecutor{logger: logging.For("runtime")}
}

// Name returns the executor name.
func (e *NativeExecutor) Name() string {
	return "native"
}

// Execute runs the script and captures its output.
func (e *NativeExecutor) Execute(ctx context.Context, req *Request) *Result {
	cmd := exec.CommandContext(ctx, req.Script, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = buildEnv(req.Env)
	cmd.Stdin = req.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("executing script", "runtime", e.Name(), "script", req.Script, "id", req.ExecutionID)

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = 1
		result.Error = fmt.Errorf("script execution canceled: %w", ctxErr)
		return result
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := ExitCode(exitErr.ExitCode())
			if verr := code.Validate(); verr != nil {
				// Killed by a signal reports -1.
				result.ExitCode = 1
				result.Error = fmt.Errorf("script terminated abnormally: %w", err)
				return result
			}
			result.ExitCode = code
			return result
		}
		result.ExitCode = 1
		result.Error = fmt.Errorf("failed to execute script: %w", err)
	}

	return result
}
