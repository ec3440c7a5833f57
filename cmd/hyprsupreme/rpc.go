// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyprsupreme/hyprsupreme/internal/bridge"
	"github.com/hyprsupreme/hyprsupreme/internal/logging"
)

// newRPCCommand creates the `hyprsupreme rpc` command.
func newRPCCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "rpc",
		Short: "Serve plugin, theme and configuration calls as JSON over stdin/stdout",
		Long: `Serve plugin, theme and configuration calls as line-delimited JSON.

Each input line is a request {"id": ..., "method": ..., "params": {...}}
and produces one response line {"id": ..., "result": ...} or
{"id": ..., "error": {"kind": ..., "message": ...}}. Logs go to stderr.
State changes made over RPC are not written back to settings.toml.

Methods: ` + strings.Join(bridge.NewHost(bridge.Options{}).Methods(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(cmd, flags, serveRPC(cmd, app, flags))
		},
	}
}

func serveRPC(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	ctx := cmd.Context()
	s, err := app.openSession(ctx, flags)
	if err != nil {
		return err
	}
	pm, err := s.pluginManager(ctx)
	if err != nil {
		return err
	}

	doc, _, err := s.loadDocument()
	if err != nil {
		s.logger.Warn("serving without a configuration document", "err", err)
	}

	host := bridge.NewHost(bridge.Options{
		Config:  doc,
		Profile: s.settings.Profile,
		Plugins: pm,
		Themes:  s.themeManager(),
		Logger:  logging.For("bridge"),
	})
	return host.Serve(ctx, cmd.InOrStdin(), app.stdout)
}
