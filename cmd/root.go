package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	summariesFile string
	timeout       time.Duration
	showTrace     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "targ [paths...]",
	Short:            "targ - checks function call arguments against documented preconditions",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'targ' is entered
			_ = cmd.Help()
			return
		}
		// Format: targ [path1 path2 ...] => behaves like the check subcommand
		checkCmd.Run(checkCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}

	rootCmd.PersistentFlags().StringVar(&summariesFile, "summaries", "", "YAML file with additional function summaries")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Set a timeout for the checker")
	rootCmd.PersistentFlags().BoolVar(&showTrace, "trace", false, "Show the full causal path for each violation")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}
