package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tryon/internal/http/handlers"
	httpapi "tryon/internal/http/httpapi"
	"tryon/internal/infra"
	"tryon/internal/infra/credentials"
	"tryon/internal/infra/geoip"
	"tryon/internal/middleware"
	"tryon/internal/tryon"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, closeCreds, err := credentials.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure credentials")
	}
	defer closeCreds()

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip disabled")
	}
	defer geo.Close()
	var lookup middleware.CountryLookup
	if geo.Enabled() {
		lookup = geo.CountryCode
	}

	svc := tryon.NewDefault(cfg, resolver, &logger, nil)
	app := handlers.NewApp(svc, resolver, cfg.MaxUploadBytes, &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:      cfg.DefaultLocale,
		CountryLookup:      lookup,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Strs("credential_sources", resolver.Sources()).Msg("api: listening")
		return server.Run(gctx)
	})
	g.Go(func() error {
		if res, err := resolver.Resolve(gctx); err != nil {
			logger.Warn().Msg("api: no NanoBanana API key configured yet; PUT /v1/credentials to save one")
		} else {
			logger.Info().Str("source", res.Source).Msg("api: NanoBanana API key available")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("api: server stopped with error")
		return
	}
	logger.Info().Msg("api: server stopped")
}
