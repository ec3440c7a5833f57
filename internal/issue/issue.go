// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	ConfigParseErrorId
	ProfileNotFoundId
	SettingsLoadFailedId
	ConfigDirUnavailableId
	InvalidRuntimeModeId
	PluginNotFoundId
	PluginNotEnabledId
	PluginAlreadyInstalledId
	CommandNotFoundId
	DependencyMissingId
	DependencyVersionMismatchId
	DependencyCycleId
	ScriptExecutionFailedId
	ThemeNotFoundId
	NoActiveThemeId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue for the terminal. stylePath is a glamour style
// name ("dark", "light", "notty") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	catalog = []*Issue{
		{
			id: ConfigNotFoundId,
			mdMsg: `
# No configuration found!

hyprsupreme could not find a ` + "`hyprsupreme.toml`" + ` to load.

## Things you can try:
- Create a starter configuration:
~~~
$ hyprsupreme config init
~~~

- Point to an existing file:
~~~
$ hyprsupreme --config ~/dotfiles/hyprsupreme.toml config show
~~~`,
		},
		{
			id: ConfigParseErrorId,
			mdMsg: `
# Failed to parse a configuration document!

A configuration file, or one of the files it imports, is not valid TOML or JSON.

## Common issues:
- A missing closing bracket on a ` + "`[table]`" + ` header
- Unquoted string values
- An import path that points at the wrong file

## Things you can try:
- Check the path and position in the error message above
- Remember that import paths are relative to the importing file
- Run with ` + "`--verbose`" + ` to see the full error chain`,
		},
		{
			id: ProfileNotFoundId,
			mdMsg: `
# Profile not found!

The requested profile is not defined in the configuration.

## Things you can try:
- List the profiles of the loaded configuration:
~~~
$ hyprsupreme config show
~~~

- Add a ` + "`[profiles.<name>]`" + ` table, or fix ` + "`default_profile`",
		},
		{
			id: SettingsLoadFailedId,
			mdMsg: `
# Failed to load settings!

The application settings file (` + "`settings.toml`" + `) could not be read.

## Things you can try:
- Check the file for TOML syntax errors
- Remove the file to fall back to defaults
- Override single values through ` + "`HYPRSUPREME_*`" + ` environment variables`,
		},
		{
			id: ConfigDirUnavailableId,
			mdMsg: `
# Configuration directory unavailable!

The platform did not report a configuration or data directory, so plugins
cannot be installed and themes cannot be saved.

## Things you can try:
- Make sure ` + "`HOME`" + ` is set
- Set ` + "`XDG_CONFIG_HOME`" + ` and ` + "`XDG_DATA_HOME`" + ` explicitly`,
		},
		{
			id: InvalidRuntimeModeId,
			mdMsg: `
# Invalid runtime mode!

Plugin scripts can run in one of these modes:
- ` + "`auto`" + ` (default): shell scripts in-process, everything else as a process
- ` + "`native`" + `: always spawn a process
- ` + "`virtual`" + `: always interpret with the built-in POSIX shell

## Things you can try:
- Fix the ` + "`runtime`" + ` key in settings.toml
- Pass ` + "`--runtime native`" + ` on the command line`,
		},
		{
			id: PluginNotFoundId,
			mdMsg: `
# Plugin not found!

No registered plugin has this name.

## Things you can try:
- List the discovered plugins:
~~~
$ hyprsupreme plugin list
~~~

- Install it from a local directory:
~~~
$ hyprsupreme plugin install ./my-plugin
~~~

- Check that the plugin directory contains a ` + "`plugin.toml`" + ` or ` + "`plugin.json`",
		},
		{
			id: PluginNotEnabledId,
			mdMsg: `
# Plugin not enabled!

Commands can only run on enabled plugins.

## Things you can try:
~~~
$ hyprsupreme plugin enable <name>
~~~`,
		},
		{
			id: PluginAlreadyInstalledId,
			mdMsg: `
# Plugin already installed!

A directory with the plugin's name already exists in the install root.

## Things you can try:
- Uninstall the existing copy first:
~~~
$ hyprsupreme plugin uninstall <name>
~~~`,
		},
		{
			id: CommandNotFoundId,
			mdMsg: `
# Command not found!

The plugin does not declare this command in its manifest.

## Things you can try:
- Show the plugin's commands:
~~~
$ hyprsupreme plugin show <name>
~~~`,
		},
		{
			id: DependencyMissingId,
			mdMsg: `
# Plugin dependency missing!

The plugin depends on another plugin that is not registered.

## Things you can try:
- Install the missing plugin, then enable again
- Run ` + "`hyprsupreme plugin check`" + ` to validate every manifest`,
		},
		{
			id: DependencyVersionMismatchId,
			mdMsg: `
# Plugin dependency version mismatch!

A dependency is installed, but its version does not satisfy the requirement.
Requirements use semantic versioning constraints, for example ` + "`^1.2`" + `,
` + "`>=0.3, <0.5`" + ` or ` + "`~2.1.0`" + `. A bare version such as ` + "`1.2.0`" + ` means ` + "`^1.2.0`" + `.

## Things you can try:
- Upgrade the dependency
- Relax the requirement in the dependent plugin's manifest`,
		},
		{
			id: DependencyCycleId,
			mdMsg: `
# Plugin dependency cycle!

Two or more plugins depend on each other, so none of them can be enabled first.

## Things you can try:
- Inspect the dependency graph:
~~~
$ hyprsupreme plugin check
~~~

- Remove one edge of the cycle from a manifest`,
		},
		{
			id: ScriptExecutionFailedId,
			mdMsg: `
# Plugin script failed!

A hook or command script exited with a non-zero status.

## Things you can try:
- Read the script's stderr above
- Make sure the script is executable (` + "`chmod +x`" + `)
- Try the native runtime if the built-in shell lacks a feature:
~~~
$ hyprsupreme --runtime native plugin run <plugin> <command>
~~~`,
		},
		{
			id: ThemeNotFoundId,
			mdMsg: `
# Theme not found!

Themes are looked up as ` + "`<dir>/<name>.toml`" + `, ` + "`<dir>/<name>.json`" + `,
then ` + "`<dir>/<name>/theme.toml`" + ` and ` + "`<dir>/<name>/theme.json`" + `.

## Things you can try:
~~~
$ hyprsupreme theme list
$ hyprsupreme theme create <name>
~~~`,
		},
		{
			id: NoActiveThemeId,
			mdMsg: `
# No active theme!

Apply a theme before querying its colors or variables:
~~~
$ hyprsupreme theme apply <name>
~~~`,
		},
	}

	issues = index(catalog)
)

func index(list []*Issue) map[Id]*Issue {
	m := make(map[Id]*Issue, len(list))
	for _, i := range list {
		m[i.id] = i
	}
	return m
}

// Values returns every catalog entry in Id order.
func Values() []*Issue {
	return slices.Clone(catalog)
}

// Catalog returns a copy of the Id to Issue index.
func Catalog() map[Id]*Issue {
	return maps.Clone(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
