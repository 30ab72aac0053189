package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/app"
	"github.com/fleshka4/sugar-plan/internal/config"
	"github.com/fleshka4/sugar-plan/internal/logger"
	transporthttp "github.com/fleshka4/sugar-plan/internal/transport/http"
)

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "cfg/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer func() { _ = l.Sync() }()

	ctrl, err := app.NewController(cfg, l)
	if err != nil {
		l.Fatal("app.NewController", zap.Error(err))
	}

	srv := transporthttp.NewServer(ctrl, cfg, l)
	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		l.Fatal("srv.ListenAndServe", zap.Error(err))
	}
}
