package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/bibliothek/internal/handlers"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: `Starts the Bibliothek web interface on the specified port.

The page has three tabs: entering a book as "Title, Author", maintaining the
author list, and browsing, searching and deleting books. The first listing in
each browser session syncs authors, merges duplicate spellings and looks up a
few missing covers.`,
		Example: `  # Start server on the configured port (default 8888)
  bibliothek serve

  # Start server on custom port
  bibliothek serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = opts.cfg.Serve.Port
			}

			a, err := newApp(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.New(a.library, opts.cfg.Serve.SessionTTL).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bibliothek interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from serve.port)")

	return cmd
}
