package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core"
	"github.com/gosh-shell/gosh/core/history"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shell over SSH on the configured port.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Stdin.Close()
		cmd.SilenceUsage = true
		log.Println("Initializing server...")

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		hist, err := history.Open(configuration.HistoryPath())
		if err != nil {
			return err
		}
		defer hist.Close()

		eventLog, err := os.OpenFile(configuration.SessionLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		defer eventLog.Close()

		server, err := core.NewServer(configuration, eventLog, hist)
		if err != nil {
			return err
		}

		go func() {
			if err := server.ListenAndServe(); err != nil {
				log.Fatal(err)
			}
		}()

		sigs := make(chan os.Signal, 1)

		log.Println("- Starting interrupt handler")
		signal.Notify(sigs, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigs
		log.Printf("Got signal %q, terminating...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server shutdown failed: %s", err)
		}
		log.Print("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
