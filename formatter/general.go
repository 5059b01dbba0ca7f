package formatter

// GeneralIssueFormatter formats argument-constraint violations and
// any issue without a dedicated formatter.
type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .StartColumn .SnippetLines -}}
{{- if .Note }}
{{note .Note}}
{{- end }}
{{- if .ShowTrace }}
{{trace .Trace .Padding}}
{{- end }}
`
}

// ProbeFormatter formats targ_eval probe results: a single line, no
// snippet.
type ProbeFormatter struct{}

func (f *ProbeFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{underlineAndMessage .Message .Padding .StartLine .StartColumn .SnippetLines}}
`
}
