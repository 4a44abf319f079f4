package main

import (
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/finlens/statement-engine/internal/api"
	"github.com/finlens/statement-engine/internal/config"
	"github.com/finlens/statement-engine/internal/engine"
)

func main() {
	// .env files are optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Server.DebugLogging || cfg.Parse.Trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	app := fiber.New(fiber.Config{
		AppName:   "statement-engine",
		BodyLimit: cfg.Server.BodyLimitMB << 20,
	})
	app.Use(recover.New())

	handler := &api.Handler{
		Log: logger,
		Opts: engine.Options{
			YearPrefix: cfg.Parse.YearPrefix,
			Trace:      cfg.Parse.Trace,
			Logger:     logger,
		},
	}
	handler.Register(app)

	logger.Info("listening", "addr", cfg.Server.Addr)
	if err := app.Listen(cfg.Server.Addr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
