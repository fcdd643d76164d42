package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Bootstrap a user environment"
	MsgUpShort      = "Run the full bootstrap: packages, tools, links, permissions"
	MsgLinksShort   = "Synchronize dotfile symlinks only"
	MsgToolsShort   = "Provision version-gated tools only"
	MsgConfigShort  = "Print the built-in default configuration"
	MsgVersionShort = "Print version information"

	// Status messages
	MsgDryRunNotice    = "\nDRY RUN MODE - No changes were made"
	MsgToolsHeading    = "Tools"
	MsgLinksHeading    = "Links"
	MsgBackupFormat    = "Displaced files were backed up to %s\n"
	MsgManagerFormat   = "Package manager: %s\n"
	MsgNoLinksDeclared = "No links declared."
	MsgNoToolsDeclared = "No tools declared."
)

// Long messages (multi-line help)
const (
	MsgRootLong = `dotup bootstraps a user environment in one idempotent pass: it detects
the host package manager, installs a baseline package set, provisions
required tools at minimum versions (falling back to vendor installers
when the repositories are stale), and links your dotfiles into place,
backing up anything it displaces.

Re-running dotup is always safe: correct symlinks are left untouched and
every action is idempotent or additive.`

	MsgConfigLong = `Print the embedded default configuration. Save it under
$XDG_CONFIG_HOME/dotup/dotup.toml and edit it to declare your own links
and tool requirements; declared sections replace the defaults wholesale.`
)

// MsgUsageTemplate is the usage template for all commands. Section headings
// go through the bold/boldUpper template funcs registered in formatting.go.
const MsgUsageTemplate = `{{boldUpper "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{boldUpper "Available Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use {{bold (printf "%s [command] --help" .CommandPath)}} for more information about a command.{{end}}
`
