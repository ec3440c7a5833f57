// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"errors"
	"io/fs"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/format"
	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
	"github.com/hyprsupreme/hyprsupreme/pkg/hyprconf"
	"github.com/hyprsupreme/hyprsupreme/pkg/plugin"
	"github.com/hyprsupreme/hyprsupreme/pkg/theme"
)

// kinds is checked in order; the first sentinel matched wins. Script
// failures come before not-found so a missing script reads as a failed
// script rather than an unknown plugin.
var kinds = []struct {
	sentinel error
	kind     ErrorKind
}{
	{ErrUnknownMethod, KindUnknownMethod},
	{ErrInvalidParams, KindInvalidRequest},
	{runtime.ErrScriptFailed, KindScriptFailed},
	{plugin.ErrDependencyCycle, KindDependencyCycle},
	{plugin.ErrDependencyMissing, KindDependencyMissing},
	{plugin.ErrDependencyVersionMismatch, KindDependencyMismatch},
	{plugin.ErrAlreadyInstalled, KindAlreadyInstalled},
	{plugin.ErrNotEnabled, KindNotEnabled},
	{plugin.ErrNotFound, KindNotFound},
	{plugin.ErrCommandNotFound, KindNotFound},
	{plugin.ErrHookNotFound, KindNotFound},
	{theme.ErrNoActiveTheme, KindNoActiveTheme},
	{theme.ErrNotFound, KindNotFound},
	{theme.ErrInvalidName, KindInvalidRequest},
	{hyprconf.ErrProfileNotFound, KindNotFound},
	{config.ErrDirUnavailable, KindDirUnavailable},
	{format.ErrDecode, KindParse},
	{format.ErrUnsupportedFormat, KindParse},
	{fs.ErrNotExist, KindIO},
	{fs.ErrPermission, KindIO},
	{hyprconf.ErrLoad, KindIO},
}

// Classify returns the host-facing kind of err.
func Classify(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// ToError converts err into the structured host error. A nil err yields nil.
func ToError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Classify(err), Message: err.Error()}
}
