package handlers

import (
	"MediaKeeper/internal/config"
	"MediaKeeper/internal/middleware"
	"MediaKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	vaultService *service.VaultService,
	mediaService *service.MediaService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	vaultHandler := NewVaultHandler(vaultService, logger)
	mediaHandler := NewMediaHandler(mediaService, logger, config)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)

	// Vault routes
	r.Get("/api/vault", vaultHandler.Status)
	r.Post("/api/vault/setup", vaultHandler.Setup)
	r.Post("/api/vault/unlock", vaultHandler.Unlock)
	r.Post("/api/vault/lock", vaultHandler.Lock)

	// Media routes
	r.Post("/api/media", mediaHandler.Upload)
	r.Get("/api/media", mediaHandler.List)
	r.Get("/api/media/{id}/content", mediaHandler.Content)
	r.Get("/api/media/{id}/thumbnail", mediaHandler.Thumbnail)
	r.Delete("/api/media/{id}", mediaHandler.Delete)

	return &Handler{Router: r}
}
