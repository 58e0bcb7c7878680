package cli

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/refapply/internal/ui/pretty"
)

// exitCodesAnnotation holds a command's documented exit codes, one
// "code<TAB>meaning" pair per line.
const exitCodesAnnotation = "refapply_exit_codes"

// exitCodeDoc documents one exit code of a command.
type exitCodeDoc struct {
	code    int
	meaning string
}

// withExitCodes records the exit codes shown in the help of cmd.
func withExitCodes(cmd *cobra.Command, docs ...exitCodeDoc) {
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		lines = append(lines, strconv.Itoa(doc.code)+"\t"+doc.meaning)
	}
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[exitCodesAnnotation] = strings.Join(lines, "\n")
}

// flagGap separates a pflag usage line's flag column from its description.
//
//nolint:gochecknoglobals // Compiled once.
var flagGap = regexp.MustCompile(`\s{2,}`)

// helpStyles picks the help palette from the output styles.
type helpStyles struct {
	command lipgloss.Style
	heading lipgloss.Style
	name    lipgloss.Style
	flag    lipgloss.Style
	dim     lipgloss.Style
}

func newHelpStyles(styles *pretty.Styles) helpStyles {
	return helpStyles{
		command: styles.Bold,
		heading: styles.Warning,
		name:    styles.Inserted,
		flag:    styles.Info.UnsetBold(),
		dim:     styles.Dim,
	}
}

// HelpFormatter renders styled help and usage for cobra commands.
type HelpFormatter struct {
	styles helpStyles
}

// NewHelpFormatter creates a help formatter for writer in the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	colorEnabled := pretty.IsColorEnabled(colorMode, writer)
	return &HelpFormatter{styles: newHelpStyles(pretty.NewStyles(colorEnabled))}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags.FlagUsages }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags.FlagUsages }}
{{- end}}

{{- with exitCodes .}}

{{ heading "Exit Codes:" }}
{{ . }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}` + usageTemplate

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"command":   h.styles.command.Render,
		"heading":   h.styles.heading.Render,
		"name":      h.styles.name.Render,
		"flags":     h.flagUsages,
		"exitCodes": h.exitCodes,
		"rpad":      rpad,
		"trimRight": trimTrailingWhitespace,
	}
}

// flagUsages styles the flag column of pflag usage output and keeps the
// original column alignment.
func (h *HelpFormatter) flagUsages(usages string) string {
	lines := strings.Split(strings.TrimRight(usages, "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]

		gap := flagGap.FindStringIndex(trimmed)
		if gap == nil {
			continue
		}
		lines[i] = indent + h.styleFlagColumn(trimmed[:gap[0]]) + trimmed[gap[0]:]
	}
	return strings.Join(lines, "\n")
}

// styleFlagColumn colors flag names and dims value type placeholders.
func (h *HelpFormatter) styleFlagColumn(column string) string {
	tokens := strings.Fields(column)
	for i, token := range tokens {
		if !strings.HasPrefix(token, "-") {
			tokens[i] = h.styles.dim.Render(token)
			continue
		}
		name, comma := strings.CutSuffix(token, ",")
		tokens[i] = h.styles.flag.Render(name)
		if comma {
			tokens[i] += ","
		}
	}
	return strings.Join(tokens, " ")
}

// exitCodes renders the exit codes recorded by withExitCodes.
func (h *HelpFormatter) exitCodes(cmd *cobra.Command) string {
	raw := cmd.Annotations[exitCodesAnnotation]
	if raw == "" {
		return ""
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		code, meaning, _ := strings.Cut(line, "\t")
		lines[i] = "  " + h.styles.name.Render(rpad(code, 4)) + meaning
	}
	return strings.Join(lines, "\n")
}

// ApplyToCommand installs the styled help and usage on cmd and its subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	usage := template.Must(template.New("usage").Funcs(h.funcs()).Parse(usageTemplate))
	help := template.Must(template.New("help").Funcs(h.funcs()).Parse(helpTemplate))

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		if err := usage.Execute(command.OutOrStderr(), command); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})

	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := help.Execute(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
