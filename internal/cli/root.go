// Package cli provides the bulkmail commands.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manavc-13/KIIT-Mailer/env"
	"github.com/manavc-13/KIIT-Mailer/logger"
)

type rootOptions struct {
	envFiles []string
	verbose  bool
}

// load fills a config struct from the env files and the environment.
func (o *rootOptions) load(cfg any) error {
	return env.InitConfigFrom(cfg, o.envFiles...)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context, which stops a running batch before its next row.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "bulkmail",
		Short: "Personalised bulk email from a CSV",
		Long: `bulkmail sends one personalised email per CSV row through a mail relay.

Example:
  bulkmail serve                          # run the relay
  bulkmail csv-template -o people.csv     # starter recipient file
  bulkmail preview -f campaign.yaml       # render the first row
  bulkmail send -f campaign.yaml          # send the batch`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogger(cmd)
		},
	}

	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{env.DefaultEnvFile}, "dotenv files loaded before the environment")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug output")

	root.AddCommand(
		newServeCommand(opts),
		newSendCommand(opts),
		newPreviewCommand(opts),
		newCSVTemplateCommand(),
		newHistoryCommand(opts),
	)
	return root
}

// setupLogger defaults the CLI to the charm provider unless LOG_PROVIDER is
// set, and puts the logger in the command context.
func (o *rootOptions) setupLogger(cmd *cobra.Command) error {
	var cfg logger.Config
	if err := o.load(&cfg); err != nil {
		return err
	}
	if _, ok := os.LookupEnv("LOG_PROVIDER"); !ok {
		cfg.Provider = logger.ProviderCharm
	}
	if o.verbose {
		cfg.Level = logger.DEBUG
	}
	logger.InitDefault(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.NewContext(ctx, slog.Default()))
	return nil
}
