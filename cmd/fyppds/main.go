package main

import (
	"context"
	"flag"
	"os"

	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/apiguave/fypapp-go/internal/config"
	"github.com/apiguave/fypapp-go/internal/devpds"
	"github.com/apiguave/fypapp-go/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && cfg.Log.Level != "" {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()
	if cfg.Trace.Enable {
		shutdown, err := telemetry.Setup(ctx, cfg.Trace.Endpoint, "fyppds")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up tracing")
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("trace shutdown failed")
			}
		}()
	}

	server := devpds.New(cfg.DevPDS.JWTSecret, log)

	e := server.Handler()
	e.Use(middleware.CORS())
	if cfg.Trace.Enable {
		e.Use(otelecho.Middleware("fyppds"))
	}

	log.Info().Str("listen", cfg.DevPDS.Listen).Msg("dev pds listening")
	if err := e.Start(cfg.DevPDS.Listen); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
