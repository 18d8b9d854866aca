package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core/logger"
)

// logsCmd prints the session event log in a readable form.
var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Print the session event log.",
	Args:    cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := os.Open(configuration.SessionLogPath())
		if err != nil {
			return err
		}
		defer fd.Close()

		out := cmd.OutOrStdout()
		return logger.ReadEntries(fd, func(e logger.Entry) {
			detail := e.Line
			if e.Error != "" {
				detail = fmt.Sprintf("%s (%s)", e.Line, e.Error)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", e.Time.Format(time.RFC3339), e.Session, e.Event, detail)
		})
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
