package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	bulletjournal "github.com/pongsapak26/Bullet-Journal"
	"github.com/pongsapak26/Bullet-Journal/api"
	"github.com/pongsapak26/Bullet-Journal/config"
	"github.com/pongsapak26/Bullet-Journal/entries"
	"github.com/pongsapak26/Bullet-Journal/logger"
	"github.com/pongsapak26/Bullet-Journal/persistence"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("starting bullet journal",
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.DBType),
	)

	store, err := persistence.NewStorage(cfg.DBType, cfg.DSN, nil, !cfg.SkipAutoMigrate)
	if err != nil {
		logger.Log.Fatal("failed to initialize storage", zap.Error(err))
	}

	loginManager := bulletjournal.NewDefaultLoginManager(store, cfg)
	sessionManager, err := bulletjournal.NewDefaultSessionManager(cfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize sessions", zap.Error(err))
	}
	entryService := entries.NewService(store)

	h := api.NewHandler(loginManager, sessionManager, entryService, bulletjournal.LogSender{}, cfg.AppURL)

	oidcStrategy, err := bulletjournal.NewDefaultCodeExchange(context.Background(), store, cfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize OIDC providers", zap.Error(err))
	}
	if oidcStrategy != nil {
		loginManager.RegisterStrategy(oidcStrategy)
		h.SetOIDC(oidcStrategy)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(h.RouteGate("/dashboard", "/entry"))

	h.RegisterRoutes(e)

	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
