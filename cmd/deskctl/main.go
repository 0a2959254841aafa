// Package main is the deskctl command line client for the HR service desk.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/hr-service-desk/internal/app"
	"github.com/capitalize-ai/hr-service-desk/internal/config"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// globalOpts are the persistent flags shared by every subcommand.
type globalOpts struct {
	envFile string
	userID  string
	asJSON  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	cmd := &cobra.Command{
		Use:   "deskctl",
		Short: "HR service desk from the command line",
		Long: "deskctl talks to the HR service desk in-process: chat with the assistant,\n" +
			"open cases from free text and inspect stored cases. Configuration is read\n" +
			"from the environment and an optional .env file.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file")
	cmd.PersistentFlags().StringVarP(&opts.userID, "user", "u", defaultUser(), "employee ID to act as")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newProcessCmd(opts))
	cmd.AddCommand(newCaseCmd(opts))
	cmd.AddCommand(newTokenCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deskctl %s (commit: %s)\n", Version, Commit)
		},
	}
}

// loadConfig reads and validates configuration.
func loadConfig(opts *globalOpts) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", opts.envFile, err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// openDesk wires the service desk for one command run.
func openDesk(cmd *cobra.Command, opts *globalOpts) (*app.App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log := logger.NewNop()
	if opts.verbose {
		if log, err = logger.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	return app.New(cmd.Context(), cfg, log)
}

func defaultUser() string {
	if u := os.Getenv("DESK_USER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli-user"
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
