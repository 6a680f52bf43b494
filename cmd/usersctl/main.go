// Command usersctl is the terminal client of the user list. It fetches the
// users from the configured source and lets you browse and edit them
// locally; nothing is written back.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/useradmin/internal/config"
	"github.com/patric-chuzhbe/useradmin/internal/logger"
	"github.com/patric-chuzhbe/useradmin/internal/usersource"
	"github.com/patric-chuzhbe/useradmin/internal/userstore"
)

// defaultLogLevel keeps log lines from tearing through the interactive UI.
const defaultLogLevel = "error"

type rootOptions struct {
	sourceURL string
	logLevel  string
	timeout   time.Duration

	cfg *config.Config
}

// preRun merges flags over the environment/JSON configuration.
func (o *rootOptions) preRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.New(config.WithDisableFlagsParsing(true))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("source-url") {
		cfg.UsersSourceURL = o.sourceURL
	}
	if flags.Changed("timeout") {
		cfg.FetchTimeout = o.timeout
	}
	cfg.LogLevel = defaultLogLevel
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	o.cfg = cfg

	return nil
}

func (o *rootOptions) newStore() *userstore.Store {
	return userstore.New(usersource.New(
		o.cfg.UsersSourceURL,
		usersource.WithTimeout(o.cfg.FetchTimeout),
	))
}

func newRootCmd() *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "usersctl",
		Short: "Browse and edit the user list from the terminal",
		Long: `usersctl loads the user list from the configured source and lets you
search, sort, page through, add, edit and delete users interactively.

Changes live only as long as the session.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: options.preRun,
	}

	rootCmd.PersistentFlags().StringVarP(&options.sourceURL, "source-url", "u", config.DefaultUsersSourceURL, "URL of the users collection")
	rootCmd.PersistentFlags().StringVarP(&options.logLevel, "log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVarP(&options.timeout, "timeout", "t", 0, "Fetch timeout, 0 disables it")

	rootCmd.AddCommand(newBrowseCmd(options))
	rootCmd.AddCommand(newListCmd(options))

	return rootCmd
}

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
