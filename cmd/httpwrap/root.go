package main

import (
	"context"
	"log/slog"

	"httpwrap/application/http/actor/client"
	"httpwrap/application/util/domain"
	"httpwrap/config"
	"httpwrap/storage"
	"httpwrap/transport"
	"httpwrap/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// app holds what commands need. Tests replace the constructors.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger

	newOpener   func(cfg *config.Config, logger *slog.Logger) transport.Opener
	openArchive func(ctx context.Context, path string) (*storage.Archive, error)
}

func newApp() *app {
	return &app{
		newOpener:   newClient,
		openArchive: storage.Open,
	}
}

func newClient(cfg *config.Config, logger *slog.Logger) transport.Opener {
	var lookuper domain.Lookuper = domain.NewResolverLookuper(nil)
	if len(cfg.Client.Hosts) > 0 {
		lookuper = domain.Chain(domain.NewMapLookuper(cfg.Client.Hosts), lookuper)
	}

	opts := client.DefaultOptions
	opts.Send.UserAgent = cfg.Client.UserAgent
	opts.Receive.MaxBodySize = cfg.Client.MaxBodySize
	opts.Redirect.MaxRedirects = cfg.Client.MaxRedirects
	opts.Timeout.Default = cfg.Client.Timeout

	return client.New(tcp.NewDialer(), lookuper, logger, clock.New(), opts)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "httpwrap",
		Short:         "Perform HTTP transfers and inspect their responses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "httpwrap.yaml", "configuration file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newFetchCommand(a), newHistoryCommand(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return errors.Wrapf(err, "log level %q", cfg.Log.Level)
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
