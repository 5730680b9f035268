package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"traffic-care-service/internal/auth"
	httphandler "traffic-care-service/internal/http"
	"traffic-care-service/internal/http/middleware"
	"traffic-care-service/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Environment)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			var tokenParser *auth.Parser
			if cfg.Auth.AccessSecret != "" {
				tokenParser = auth.NewParser(cfg.Auth.AccessSecret)
			} else {
				log.Warn().Msg("JWT_ACCESS_SECRET is empty, API runs without authentication")
			}

			handler := httphandler.NewHandler(a.vehicles, a.checks, a.tests, a.settings, a.logbook, a.health, log)
			router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

			addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
			server := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				log.Info().Str("addr", addr).Str("backend", cfg.State.Backend).Msg("starting traffic care service")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				log.Info().Msg("shutting down")
				return server.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				log.Error().Err(err).Msg("server stopped")
				return err
			}
			return nil
		},
	}
}
