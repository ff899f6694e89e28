// Package commands implements the beacond CLI commands.
package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vireolabs/beacon/auth"
	"github.com/vireolabs/beacon/catalog"
	"github.com/vireolabs/beacon/config"
	"github.com/vireolabs/beacon/db"
	"github.com/vireolabs/beacon/errors"
	"github.com/vireolabs/beacon/internal/httpclient"
	"github.com/vireolabs/beacon/logger"
	"github.com/vireolabs/beacon/server"
)

// ServeCmd starts the beacon API server.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the beacon API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load configuration")
		}

		database, err := db.Open(cfg.Database.Path, logger.Logger)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.Migrate(database, logger.Logger); err != nil {
			return err
		}

		client := httpclient.New(cfg.Auth.HTTPTimeout())
		cache := auth.NewKeyCache(cfg.Auth.JWKSTTL(), client)

		verifier, err := auth.NewVerifier(cfg.Auth, cache, logger.Logger)
		if err != nil {
			return err
		}
		visas := auth.NewVisaValidator(cache, client, cfg.Auth.UserinfoURL, cfg.Auth.VisaTimeout(), logger.Logger)
		store := catalog.NewStore(database, logger.Logger)

		srv := server.New(cfg.Server, verifier, visas, store, logger.Logger)
		httpServer := &http.Server{
			Addr:              srv.Addr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Infow("Beacon server listening", "addr", httpServer.Addr)
			errCh <- httpServer.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return errors.Wrap(err, "server failed")
		case sig := <-stop:
			logger.Infow("Shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		}
	},
}
