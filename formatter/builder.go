// Package formatter renders issues for terminal output. Two
// granularities are supported: the default single-line form showing
// the violation description at its position, and a full-path form
// that appends the ordered causal note chain leading to the
// violation. The choice is purely presentational; the engine behind
// the issues behaves identically in both modes.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	targ "github.com/gnolang/targ"
	tt "github.com/gnolang/targ/internal/types"
)

// rule set
const (
	ArgConstraint = "arg-constraint"
	EvalProbe     = "targ-eval"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgHiBlue, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	traceStyle   = color.New(color.FgHiBlack)
	noteStyle    = color.New(color.FgGreen)
)

// Options selects the output granularity.
type Options struct {
	// Trace appends the root-to-violation note chain to each issue.
	Trace bool
}

// issueFormatter is the interface that wraps the IssueTemplate
// method. Implementations format specific kinds of issues.
type issueFormatter interface {
	IssueTemplate() string
}

// getIssueFormatter returns the formatter for the given rule, falling
// back to the general one.
func getIssueFormatter(rule string) issueFormatter {
	switch rule {
	case EvalProbe:
		return &ProbeFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue formats issues in the default single-line
// granularity.
func GenerateFormattedIssue(issues []tt.Issue, snippet *targ.SourceCode) string {
	return Generate(issues, snippet, Options{})
}

// Generate formats issues with explicit options.
func Generate(issues []tt.Issue, snippet *targ.SourceCode, opts Options) string {
	var builder strings.Builder
	for _, issue := range issues {
		formatter := getIssueFormatter(issue.Rule)
		builder.WriteString(buildIssue(issue, snippet, formatter, opts))
	}
	return builder.String()
}

// IssueData is the view handed to issue templates.
type IssueData struct {
	Severity        string
	Rule            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	MaxLineNumWidth int
	Message         string
	Note            string
	SnippetLines    []string
	Trace           []tt.TraceNote
	ShowTrace       bool
}

func buildIssue(issue tt.Issue, snippet *targ.SourceCode, formatter issueFormatter, opts Options) string {
	maxLineNumWidth := calculateMaxLineNumWidth(issue.End.Line)
	data := IssueData{
		Severity:        issue.Severity.String(),
		Rule:            issue.Rule,
		Filename:        issue.Filename,
		StartLine:       issue.Start.Line,
		StartColumn:     issue.Start.Column,
		EndLine:         issue.End.Line,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		Message:         issue.Message,
		Note:            issue.Note,
		Trace:           issue.Trace,
		ShowTrace:       opts.Trace && len(issue.Trace) > 0,
	}
	if snippet != nil {
		data.SnippetLines = snippet.Lines
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             codeSnippet,
		"underlineAndMessage": underlineAndMessage,
		"note":                note,
		"trace":               trace,
	}

	tmpl := template.Must(template.New("issue").Funcs(funcMap).Parse(formatter.IssueTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v\n", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(rule, severity string, maxLineNumWidth int, filename string, startLine, startColumn int) string {
	var endString string
	switch severity {
	case "error":
		endString = errorStyle.Sprintf("error: ")
	case "warning":
		endString = warningStyle.Sprintf("warning: ")
	case "info":
		endString = infoStyle.Sprintf("info: ")
	}

	endString += ruleStyle.Sprintf("%s\n", rule)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d\n", filename, startLine, startColumn)

	return endString
}

func codeSnippet(snippetLines []string, startLine, endLine, maxLineNumWidth int, padding string) string {
	if startLine < 1 || startLine > len(snippetLines) {
		return ""
	}
	if endLine > len(snippetLines) {
		endLine = len(snippetLines)
	}

	var endString string
	endString = lineStyle.Sprintf("%s|\n", padding)
	for i := startLine; i <= endLine; i++ {
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		endString += lineStyle.Sprintf("%s | ", lineNum)
		endString += fmt.Sprintf("%s\n", snippetLines[i-1])
	}
	return endString
}

func underlineAndMessage(message, padding string, startLine, startColumn int, snippetLines []string) string {
	endString := lineStyle.Sprintf("%s| ", padding)
	if startLine >= 1 && startLine <= len(snippetLines) && startColumn > 1 {
		endString += strings.Repeat(" ", startColumn-1)
	}
	endString += messageStyle.Sprintf("^ %s\n", message)
	return endString
}

func note(text string) string {
	return noteStyle.Sprintf("note: %s\n", text)
}

func trace(notes []tt.TraceNote, padding string) string {
	var builder strings.Builder
	for i, n := range notes {
		builder.WriteString(traceStyle.Sprintf("%s#%d %s", padding, i+1, n.Msg))
		if n.Pos.IsValid() {
			builder.WriteString(traceStyle.Sprintf(" (%s:%d:%d)", n.Pos.Filename, n.Pos.Line, n.Pos.Column))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}
