package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/byte4ever/warmup"
	"github.com/byte4ever/warmup/promhooks"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <network>",
		Short: "Initialize a client and serve /readyz, /state and /metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := lookupNetwork(args[0])
			if err != nil {
				return err
			}

			promReg := prometheus.NewRegistry()
			promReg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			metrics, err := promhooks.New(promReg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			initr := newInitializer(net, metrics.Hooks(net.Name))
			act := initr.Activate(ctx)
			defer act.Deactivate()

			mux := http.NewServeMux()
			mux.Handle("/readyz", warmup.ReadinessHandler(registry))
			mux.Handle("/state", warmup.SnapshotHandler(initr))
			mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: shutdownTimeout,
			}

			serveErr := make(chan error, 1)

			go func() {
				serveErr <- srv.ListenAndServe()
			}()

			logger.Info("serving", slog.String("addr", addr), slog.String("network", net.Name))

			select {
			case err = <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}

				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			logger.Info("shutting down")

			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
