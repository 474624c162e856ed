// Package cli wires the upackctl command tree.
package cli

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/packfeed/upackctl/internal/artifacttool"
	"github.com/packfeed/upackctl/internal/config"
	"github.com/packfeed/upackctl/internal/credentials"
	"github.com/packfeed/upackctl/internal/logging"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	service string
	feed    string
	verbose bool
}

// New builds the upackctl root command.
func New() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "upackctl",
		Short: "Publish and download universal packages",
		Long: "upackctl drives the artifact tool to publish and download universal\n" +
			"packages against a hosted service feed, provisioning the tool binary\n" +
			"on demand.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.service, "service", "", "service endpoint URL, e.g. https://myaccount.visualstudio.com")
	root.PersistentFlags().StringVar(&opts.feed, "feed", "", "name or ID of the feed")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug output")

	root.AddCommand(
		newDownloadCmd(&opts),
		newPublishCmd(&opts),
	)

	return root
}

// app bundles the wired components behind a command.
type app struct {
	log     zerolog.Logger
	invoker *artifacttool.Invoker

	service string
	feed    string
}

// newApp resolves config and flags into a ready invoker. Flags beat config.
func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	service := opts.service
	if service == "" {
		service = cfg.Service
	}
	if service == "" {
		return nil, errors.New("a service endpoint is required; pass --service or set it in the config file")
	}

	feed := opts.feed
	if feed == "" {
		feed = cfg.Feed
	}
	if feed == "" {
		return nil, errors.New("a feed is required; pass --feed or set it in the config file")
	}

	log := logging.New(opts.verbose)

	creds := credentials.Chain{
		credentials.EnvProvider{},
		credentials.StaticProvider(cfg.Tokens),
	}

	updater := artifacttool.NewUpdater(log)
	invoker := artifacttool.NewInvoker(updater, creds, log)

	return &app{
		log:     log,
		invoker: invoker,
		service: service,
		feed:    feed,
	}, nil
}
