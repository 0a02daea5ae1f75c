package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/byte4ever/warmup"
	"github.com/byte4ever/warmup/network"
)

var (
	configPath   string
	networksPath string
	logLevel     string
	logFormat    string

	logger   *slog.Logger
	registry *warmup.Registry
	networks map[string]network.Network
)

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "warmup",
		Short:         "Initialize confidential-compute clients with bounded retries",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error

			logger, err = newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
			if err != nil {
				return err
			}

			registry = warmup.NewRegistry()
			if configPath != "" {
				if registry, err = warmup.LoadConfig(configPath); err != nil {
					return err
				}
			}

			networks = nil
			if networksPath != "" {
				if networks, err = network.Load(networksPath); err != nil {
					return err
				}
			}

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "initializer config file (.json or .yaml)")
	root.PersistentFlags().StringVar(&networksPath, "networks", "", "network definitions file (.json or .yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(networksCmd(), probeCmd(), serveCmd())

	return root
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// newInitializer builds the initializer for net, configured from the loaded
// config entry named after the network. Log hooks are always attached.
func newInitializer(net network.Network, hooks ...warmup.Hooks) *warmup.Initializer[network.Network, *network.Endpoint] {
	hooks = append([]warmup.Hooks{warmup.LogHooks(logger, net.Name)}, hooks...)

	return warmup.GetInitializer[network.Network, *network.Endpoint](
		registry,
		net.Name,
		network.NewEngine(nil),
		net,
		warmup.WithHooks(warmup.MergeHooks(hooks...)),
		warmup.WithRelease(network.Release),
	)
}

func lookupNetwork(name string) (network.Network, error) {
	return network.Lookup(name, networks)
}

func networkNames() []string {
	return network.Names(networks)
}
