package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/user"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core"
	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/eval"
	"github.com/gosh-shell/gosh/core/history"
	"github.com/gosh-shell/gosh/core/logger"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// loadConfigOrDefault falls back to the built-in configuration so the shell
// is usable without running init first.
func loadConfigOrDefault() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(cfgPath), nil
	}
	return configuration, err
}

func newSystem(configuration *config.Configuration) *eval.RealSystem {
	sys := eval.NewRealSystem()
	if len(configuration.Path) > 0 {
		sys.PathOverride = configuration.Path
	}
	return sys
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gosh",
	Short: "A small interactive shell",
	Long:  `A small shell with pipelines, redirection and the usual built-ins.`,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfigOrDefault()
		if err != nil {
			return err
		}

		return runInteractive(configuration)
	},
}

func runInteractive(configuration *config.Configuration) error {
	sys := newSystem(configuration)

	// History and event logging are conveniences locally; the shell still
	// runs when they can't be opened.
	var hist *history.Store
	if store, err := history.Open(configuration.HistoryPath()); err != nil {
		log.Printf("couldn't open history: %v", err)
	} else {
		hist = store
		defer hist.Close()
	}

	var events *logger.SessionRecorder
	if fd, err := os.OpenFile(configuration.SessionLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err != nil {
		log.Printf("couldn't open session log: %v", err)
	} else {
		defer fd.Close()
		events = logger.NewRecorder(fd).NewSession(sessionID())
	}

	username := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	host, _ := os.Hostname()

	shell, err := core.NewShell(core.Options{
		Config:     configuration,
		Sys:        sys,
		History:    hist,
		Events:     events,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		User:       username,
		Host:       host,
	})
	if err != nil {
		return err
	}
	defer shell.Close()

	shell.Run()
	return nil
}

// sessionID names a local session in the event log.
func sessionID() string {
	return fmt.Sprintf("local-%d-%d", os.Getpid(), time.Now().Unix())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
