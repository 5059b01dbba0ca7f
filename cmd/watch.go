package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	targ "github.com/gnolang/targ"
	"github.com/gnolang/targ/formatter"
	tt "github.com/gnolang/targ/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-run the check whenever a watched file changes",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide directory paths to watch")
			os.Exit(1)
		}

		engine, err := targ.New(summariesFile)
		if err != nil {
			logger.Fatal("Failed to initialize check engine", zap.Error(err))
		}

		watcher, err := targ.NewWatcher(engine, logger, args, func(filename string, issues []tt.Issue) {
			if len(issues) == 0 {
				fmt.Printf("no issues found in %s\n", filename)
				return
			}
			sourceCode, err := targ.ReadSourceCode(filename)
			if err != nil {
				sourceCode = nil
			}
			fmt.Println(formatter.Generate(issues, sourceCode, formatter.Options{Trace: showTrace}))
		})
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}

		if err := watcher.Start(); err != nil {
			logger.Fatal("Failed to start watching", zap.Error(err))
		}
		defer func() { _ = watcher.Stop() }()

		fmt.Printf("watching %d directories, press Ctrl-C to stop\n", len(args))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	},
}
