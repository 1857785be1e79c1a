package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	server "ivy_homes/internal/adapters/http_server"
	"ivy_homes/internal/adapters/observability"
	"ivy_homes/internal/app"
	"ivy_homes/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	kind, err := cfg.Source()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// inventory is read once; a failed load keeps the process up and /readyz reports it
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LoadTimeout)
	src, cleanup, err := openSource(ctx, kind, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("source", string(kind)).Msg("source setup failed")
	}
	defer cleanup()

	svc, err := app.LoadSearchService(ctx, src)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("serving without inventory")
	}
	observability.SetInventorySize(svc.Source(), svc.Len())

	// http
	srv := server.New(cfg.RateLimitRPM)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc, MaxResults: cfg.MaxResults})

	log.Info().Str("addr", cfg.HTTPAddr).Str("source", svc.Source()).Int("properties", svc.Len()).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
