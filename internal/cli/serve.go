package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anime-shed/lineart-prep/internal/logger"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(root *rootOptions) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the process and embed pipelines over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctr, err := root.newContainer(cmd)
			if err != nil {
				return err
			}
			defer ctr.Close()

			cfg := ctr.Config()
			if addr == "" {
				addr = cfg.ServerAddress()
			}

			// Create HTTP server with configurable timeouts
			server := &http.Server{
				Addr:         addr,
				Handler:      ctr.Handler(),
				ReadTimeout:  cfg.RequestTimeout,
				WriteTimeout: cfg.RequestTimeout,
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), server, ln)
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "Listen address (default from HOST and PORT)")
	return c
}

// serve runs server on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"address": ln.Addr().String(),
			"timeout": server.ReadTimeout,
		}).Info("Starting HTTP server")

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.WithError(err).Error("Failed to start server")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return err
	}

	logger.Info("Server exited")
	return nil
}
