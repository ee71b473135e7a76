package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helpWrapWidth = 100

func flagUsages(fs *pflag.FlagSet) string {
	return strings.TrimRight(fs.FlagUsagesWrapped(helpWrapWidth), " \n")
}

type commandSection struct {
	Title    string
	Commands []*cobra.Command
}

// commandSections lists visible subcommands under their group titles, in
// group order, with ungrouped commands collected under "Other" at the end.
func commandSections(c *cobra.Command) []commandSection {
	byGroup := map[string][]*cobra.Command{}
	for _, sub := range c.Commands() {
		if sub.Hidden || !sub.IsAvailableCommand() {
			continue
		}
		byGroup[sub.GroupID] = append(byGroup[sub.GroupID], sub)
	}

	var sections []commandSection
	for _, g := range c.Groups() {
		if cmds := byGroup[g.ID]; len(cmds) > 0 {
			sections = append(sections, commandSection{Title: g.Title, Commands: cmds})
		}
	}
	if other := byGroup[""]; len(other) > 0 {
		title := "Other"
		if len(sections) == 0 {
			title = "Commands"
		}
		sections = append(sections, commandSection{Title: title, Commands: other})
	}
	return sections
}

const helpTemplate = `{{with (or .Long .Short)}}{{.}}{{end}}

Usage:
{{- if .Runnable}}
  {{.UseLine}}
{{- end}}
{{- if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]
{{- range commandSections .}}

{{.Title}}:
{{- range .Commands}}
  {{rpad .Name .NamePadding}}  {{.Short}}
{{- end}}
{{- end}}
{{- end}}
{{- if .HasExample}}

Examples:
{{.Example}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

Flags:
{{flagUsages .LocalFlags}}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

Global Flags:
{{flagUsages .InheritedFlags}}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.
{{- end}}
{{- if not .HasParent}}

Get started with "botdash login", then connect a bot to your Bitrix24
portal with "botdash integration bitrix connect".
{{- end}}
`
