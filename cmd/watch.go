package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newWatchCmd(loader *appLoader) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the bridge open and print connection state changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, &err)

			addr := metricsAddr
			if !cmd.Flags().Changed("metrics-addr") {
				addr = app.cfg.Metrics.Addr
			}

			ctx := cmd.Context()
			if strings.TrimSpace(addr) != "" {
				stop, err := serveMetrics(ctx, addr, app)
				if err != nil {
					return err
				}
				defer stop()
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on %s/metrics\n", addr)
			}

			if err := app.wallet.Init(ctx); err != nil {
				return fmt.Errorf("initialize wallet: %w", err)
			}

			snapshots, unsubscribe := app.wallet.Subscribe()
			defer unsubscribe()

			for {
				select {
				case <-ctx.Done():
					return nil
				case snapshot, ok := <-snapshots:
					if !ok {
						return nil
					}
					if err := writeSnapshotLine(cmd, app, snapshot); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func writeSnapshotLine(cmd *cobra.Command, app *app, snapshot domain.ConnectionSnapshot) error {
	line := fmt.Sprintf("%s state=%s", app.now().Format(time.RFC3339), snapshot.State)
	if record := snapshot.Record; record != nil {
		line += fmt.Sprintf(" account=%s topic=%s", record.Primary(), record.Topic)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}

func serveMetrics(ctx context.Context, addr string, app *app) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}, nil
}
