// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/hyprsupreme/hyprsupreme/internal/logging"
)

// VirtualExecutor interprets POSIX shell scripts in-process with mvdan/sh.
// External commands invoked by the script still run on the host.
type VirtualExecutor struct {
	logger *log.Logger
}

// NewVirtualExecutor creates a virtual executor.
func NewVirtualExecutor() *VirtualExecutor {
	return &VirtualExecutor{logger: logging.For("runtime")}
}

// Name returns the executor name.
func (e *VirtualExecutor) Name() string {
	return "virtual"
}

// Execute parses and runs the script and captures its output.
func (e *VirtualExecutor) Execute(ctx context.Context, req *Request) *Result {
	f, err := os.Open(req.Script)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to open script: %w", err)}
	}
	defer f.Close()

	prog, err := syntax.NewParser().Parse(f, filepath.Base(req.Script))
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to parse script: %w", err)}
	}

	var stdout, stderr bytes.Buffer

	opts := []interp.RunnerOption{
		interp.Dir(req.Dir),
		interp.Env(expand.ListEnviron(buildEnv(req.Env)...)),
		interp.StdIO(req.Stdin, &stdout, &stderr),
	}

	// Prepend "--" so arguments such as "-v" are not taken as shell options.
	params := append([]string{"--"}, req.Args...)
	opts = append(opts, interp.Params(params...))

	runner, err := interp.New(opts...)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	e.logger.Debug("executing script", "runtime", e.Name(), "script", req.Script, "id", req.ExecutionID)

	err = runner.Run(ctx, prog)
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
		var status interp.ExitStatus
		if errors.As(err, &status) {
			result.ExitCode = ExitCode(status)
			return result
		}
		result.ExitCode = 1
		result.Error = fmt.Errorf("script execution failed: %w", err)
	}

	return result
}
