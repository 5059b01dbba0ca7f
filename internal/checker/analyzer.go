package checker

import (
	"golang.org/x/tools/go/analysis"

	"github.com/gnolang/targ/internal/summary"
)

// Analyzer exposes the built-in registry's checks as a go/analysis
// pass, so the checker can run inside multichecker-style drivers.
var Analyzer = &analysis.Analyzer{
	Name: "targ",
	Doc:  "verify modeled function call arguments against their documented preconditions",
	Run:  runAnalyzer,
}

func runAnalyzer(pass *analysis.Pass) (interface{}, error) {
	checker := New(summary.MustRegistry(summary.Builtins()...))

	for _, file := range pass.Files {
		tf := pass.Fset.File(file.Pos())
		if tf == nil {
			continue
		}
		issues, err := checker.CheckFile(tf.Name(), file, pass.Fset)
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			pass.Report(analysis.Diagnostic{
				Pos:      tf.Pos(issue.Start.Offset),
				End:      tf.Pos(issue.End.Offset),
				Category: issue.Category,
				Message:  issue.Message,
			})
		}
	}
	return nil, nil
}
