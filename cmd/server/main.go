package main

import (
	"MediaKeeper/internal/config"
	"MediaKeeper/internal/handlers"
	"MediaKeeper/internal/middleware"
	"MediaKeeper/internal/repo"
	"MediaKeeper/internal/service"
	"MediaKeeper/internal/vault"
	"context"
	"net/http"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	//context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	mediaRepo := repo.NewMediaRepository(gormDB)

	// хранилище vault-токенов с фоновой чисткой просроченных
	sessions := vault.NewSessionStore(cfg.VaultTokenTTL(), cfg.VaultSweepInterval(), sugar)
	go sessions.Run(ctx)

	userService := service.NewUserService(userRepo)
	vaultService := service.NewVaultService(userRepo, sessions, sugar)
	mediaService := service.NewMediaService(mediaRepo, sessions, sugar)

	h := handlers.NewHandler(userService, vaultService, mediaService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"MediaMaxSizeMB", cfg.MediaMaxSizeMB,
		"VaultTokenTTL", cfg.VaultTokenTTL(),
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
