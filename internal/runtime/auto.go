// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"path/filepath"
	"strings"
)

// shellExtensions are interpreted in-process by the auto executor.
var shellExtensions = map[string]bool{
	".sh":   true,
	".bash": true,
}

// AutoExecutor dispatches shell scripts to the virtual executor and
// everything else to the native one.
type AutoExecutor struct {
	native  Executor
	virtual Executor
}

// NewAutoExecutor creates an auto executor over the given executors.
func NewAutoExecutor(native, virtual Executor) *AutoExecutor {
	return &AutoExecutor{native: native, virtual: virtual}
}

// Name returns the executor name.
func (e *AutoExecutor) Name() string {
	return "auto"
}

// Execute runs req with the executor selected for its script.
func (e *AutoExecutor) Execute(ctx context.Context, req *Request) *Result {
	return e.Select(req.Script).Execute(ctx, req)
}

// Select returns the executor that would run script.
func (e *AutoExecutor) Select(script string) Executor {
	if shellExtensions[strings.ToLower(filepath.Ext(script))] {
		return e.virtual
	}
	return e.native
}
