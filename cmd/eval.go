package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core/eval"
	"github.com/gosh-shell/gosh/core/shell"
)

// evalCmd evaluates a single line without starting the interactive loop.
var evalCmd = &cobra.Command{
	Use:   "eval LINE",
	Short: "Evaluate a single command line and exit.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfigOrDefault()
		if err != nil {
			return err
		}

		pipeline, err := shell.Parse(args[0])
		if err != nil {
			return err
		}
		if pipeline == nil {
			return nil
		}

		evaluator := &eval.Evaluator{
			Sys:    newSystem(configuration),
			Stdin:  os.Stdin,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}
		return evaluator.Run(pipeline)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
