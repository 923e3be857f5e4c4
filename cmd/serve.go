package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"showroom/internal/api"
	"showroom/internal/config"
	"showroom/pkg/logger"
	"showroom/pkg/serrors"
)

func serveCommand(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the built site locally for previews, screenshots and live checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			opts := api.NewOptions(cfg)
			opts.Addr = orDefault(addr, opts.Addr)
			server, err := api.NewServer(opts)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", opts.Addr)
			if err != nil {
				return serrors.Wrap(serrors.ErrUnavailable, err, "could not listen on %s", opts.Addr)
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info(ctx, "starting webserver...", zap.String("addr", ln.Addr().String()), zap.String("dist", opts.DistDir))
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", opts.DistDir, ln.Addr())

			// wait for interrupt
			select {
			case <-ctx.Done():
			case err := <-errCh:
				return fmt.Errorf("webserver stopped: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GracefulShutdownTimeout)
			defer cancel()

			logger.Info(ctx, "stopping webserver...")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("could not stop webserver: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default http.addr)")

	return cmd
}
