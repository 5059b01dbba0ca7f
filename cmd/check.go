package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	targ "github.com/gnolang/targ"
	"github.com/gnolang/targ/formatter"
	tt "github.com/gnolang/targ/internal/types"
)

var (
	ignoreFuncs     string
	checkJSONOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Run the argument-constraint check",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := targ.New(summariesFile)
		if err != nil {
			logger.Fatal("Failed to initialize check engine", zap.Error(err))
		}

		if ignoreFuncs != "" {
			for _, name := range strings.Split(ignoreFuncs, ",") {
				engine.IgnoreFunc(strings.TrimSpace(name))
			}
		}

		issues, err := targ.ProcessFiles(ctx, logger, engine, args, targ.ProcessFile)
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}

		printIssues(issues)

		for _, issue := range issues {
			if issue.Severity == tt.SeverityError {
				os.Exit(1)
			}
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&ignoreFuncs, "ignore", "", "Comma-separated list of modeled functions to skip")
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

func printIssues(issues []tt.Issue) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if checkJSONOutput {
		printJSON(issuesByFile)
		return
	}

	for _, filename := range sortedFiles {
		fileIssues := issuesByFile[filename]
		sourceCode, err := targ.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			sourceCode = nil
		}
		output := formatter.Generate(fileIssues, sourceCode, formatter.Options{Trace: showTrace})
		fmt.Println(output)
	}
}

func printJSON(issuesByFile map[string][]tt.Issue) {
	data, err := json.MarshalIndent(issuesByFile, "", "  ")
	if err != nil {
		logger.Error("Error marshaling issues to JSON", zap.Error(err))
		os.Exit(1)
	}

	if outPath == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("Error writing JSON output", zap.String("path", outPath), zap.Error(err))
		os.Exit(1)
	}
}
