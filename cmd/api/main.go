package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"tradepost/cmd/app"
	"tradepost/internal/config"
	handlers "tradepost/internal/handler"
	"tradepost/internal/logger"
	"tradepost/internal/middleware"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}

	zlog, err := logger.New(cfg.DevLogging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, services, err := app.App(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to start", zap.Error(err))
	}
	defer db.Close()

	handler := handlers.NewHandlers(services, cfg, zlog)
	router := handler.Routes(middleware.RequireAuth(services.Auth))

	chain := middleware.Chain(
		router,
		middleware.RequestLogging(zlog),
		middleware.CORS,
	)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	zlog.Info("server listening", zap.String("addr", addr))

	if err := http.ListenAndServe(addr, chain); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
