// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hyprsupreme/hyprsupreme/internal/config"
	"github.com/hyprsupreme/hyprsupreme/internal/format"
	"github.com/hyprsupreme/hyprsupreme/internal/issue"
	"github.com/hyprsupreme/hyprsupreme/internal/runtime"
	"github.com/hyprsupreme/hyprsupreme/pkg/hyprconf"
	"github.com/hyprsupreme/hyprsupreme/pkg/plugin"
	"github.com/hyprsupreme/hyprsupreme/pkg/theme"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. Always create via newServiceError to enforce the
// Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// issueIDs maps error sentinels to catalog entries. The first match wins.
var issueIDs = []struct {
	sentinel error
	id       issue.Id
}{
	{runtime.ErrScriptFailed, issue.ScriptExecutionFailedId},
	{plugin.ErrDependencyCycle, issue.DependencyCycleId},
	{plugin.ErrDependencyMissing, issue.DependencyMissingId},
	{plugin.ErrDependencyVersionMismatch, issue.DependencyVersionMismatchId},
	{plugin.ErrAlreadyInstalled, issue.PluginAlreadyInstalledId},
	{plugin.ErrNotEnabled, issue.PluginNotEnabledId},
	{plugin.ErrCommandNotFound, issue.CommandNotFoundId},
	{plugin.ErrNotFound, issue.PluginNotFoundId},
	{theme.ErrNoActiveTheme, issue.NoActiveThemeId},
	{theme.ErrThemeNotFound, issue.ThemeNotFoundId},
	{hyprconf.ErrProfileNotFound, issue.ProfileNotFoundId},
	{config.ErrInvalidRuntimeMode, issue.InvalidRuntimeModeId},
	{config.ErrDirUnavailable, issue.ConfigDirUnavailableId},
	{format.ErrDecode, issue.ConfigParseErrorId},
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// issueFor returns the catalog entry that explains err, or 0.
func issueFor(err error) issue.Id {
	if errors.Is(err, hyprconf.ErrLoad) && errors.Is(err, fs.ErrNotExist) {
		return issue.ConfigNotFoundId
	}
	for _, entry := range issueIDs {
		if errors.Is(err, entry.sentinel) {
			return entry.id
		}
	}
	return 0
}

// exitCodeFor returns the exit status of a failed script, or 1.
func exitCodeFor(err error) int {
	var sf *runtime.ScriptFailedError
	if errors.As(err, &sf) && sf.ExitCode != 0 {
		return int(sf.ExitCode)
	}
	return 1
}

// renderServiceError prints any styled message first, then the optional
// issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// fail renders err for the user and returns an ExitError so fang does not
// print it a second time.
func (a *App) fail(cmd *cobra.Command, flags *rootFlagValues, err error) error {
	if err == nil {
		return nil
	}

	styled := ErrorStyle.Render("Error: ") + formatErrorForDisplay(err, flags.verbose) + "\n"
	renderServiceError(a.stderr, newServiceError(err, issueFor(err), styled))

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: exitCodeFor(err), Err: err}
}
