// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Methods understood by Call and Serve.
const (
	MethodPluginEnable    = "plugin.enable"
	MethodPluginDisable   = "plugin.disable"
	MethodPluginList      = "plugin.list"
	MethodPluginGet       = "plugin.get"
	MethodPluginInstall   = "plugin.install"
	MethodPluginUninstall = "plugin.uninstall"
	MethodPluginCommand   = "plugin.command"
	MethodPluginHook      = "plugin.hook"
	MethodThemeSet        = "theme.set"
	MethodThemeColor      = "theme.color"
	MethodThemeVariable   = "theme.variable"
	MethodThemeList       = "theme.list"
	MethodThemeReload     = "theme.reload"
	MethodConfigResolve   = "config.resolve"
)

// Error kinds reported to hosts.
const (
	KindNotFound           ErrorKind = "not_found"
	KindNotEnabled         ErrorKind = "not_enabled"
	KindAlreadyInstalled   ErrorKind = "already_installed"
	KindDependencyMissing  ErrorKind = "dependency_missing"
	KindDependencyMismatch ErrorKind = "dependency_version_mismatch"
	KindDependencyCycle    ErrorKind = "dependency_cycle"
	KindScriptFailed       ErrorKind = "script_failed"
	KindNoActiveTheme      ErrorKind = "no_active_theme"
	KindDirUnavailable     ErrorKind = "directory_unavailable"
	KindParse              ErrorKind = "parse"
	KindIO                 ErrorKind = "io"
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindUnknownMethod      ErrorKind = "unknown_method"
	KindInternal           ErrorKind = "internal"
)

var (
	// ErrUnknownMethod is returned by Call for methods it does not serve.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned by Call when params do not decode.
	ErrInvalidParams = errors.New("invalid params")
)

type (
	// ErrorKind classifies a failed call for hosts.
	ErrorKind string

	// Request is one line of input to Serve.
	Request struct {
		// ID is echoed back unchanged. It may be any JSON value.
		ID     json.RawMessage `json:"id,omitempty"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params,omitempty"`
	}

	// Response is one line of output from Serve. Exactly one of Result and
	// Error is set.
	Response struct {
		ID     json.RawMessage `json:"id,omitempty"`
		Result any             `json:"result,omitempty"`
		Error  *Error          `json:"error,omitempty"`
	}

	// Error is the structured error returned to hosts.
	Error struct {
		Kind    ErrorKind `json:"kind"`
		Message string    `json:"message"`
	}

	// NameParams addresses a plugin or theme by name.
	NameParams struct {
		Name string `json:"name"`
	}

	// PathParams carries a filesystem path.
	PathParams struct {
		Path string `json:"path"`
	}

	// CommandParams runs a plugin command.
	CommandParams struct {
		Plugin  string   `json:"plugin"`
		Command string   `json:"command"`
		Args    []string `json:"args,omitempty"`
	}

	// HookParams dispatches a hook.
	HookParams struct {
		Hook string   `json:"hook"`
		Args []string `json:"args,omitempty"`
	}

	// ResolveParams resolves ${var} placeholders. An empty profile means the
	// host's profile.
	ResolveParams struct {
		Input   string `json:"input"`
		Profile string `json:"profile,omitempty"`
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}
