package handlers

import (
	"MediaKeeper/internal/middleware"
	"MediaKeeper/internal/service"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// VaultHandler — настройка, разблокировка и блокировка хранилища.
// Парольная фраза приходит только в теле POST-запроса и дальше
// хендлера не утекает — ни в логи, ни в ответы.
type VaultHandler struct {
	VaultService *service.VaultService
	Logger       *zap.SugaredLogger
}

// NewVaultHandler создаёт хендлер vault
func NewVaultHandler(vaultService *service.VaultService, logger *zap.SugaredLogger) *VaultHandler {
	return &VaultHandler{VaultService: vaultService, Logger: logger}
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

type unlockResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Status отвечает 200, если хранилище настроено, и 404 — если нет.
func (h *VaultHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.VaultService.Status(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"configured": true})
}

// Setup заводит хранилище для текущего пользователя.
func (h *VaultHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req passphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.VaultService.Setup(r.Context(), userID, req.Passphrase); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Unlock сверяет фразу и выдаёт короткоживущий токен доступа.
func (h *VaultHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req passphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, expiresAt, err := h.VaultService.Unlock(r.Context(), userID, req.Passphrase)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(unlockResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// Lock отзывает токен из заголовка Authorization.
func (h *VaultHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token := middleware.VaultTokenFromRequest(r)
	if token == "" {
		http.Error(w, "vault token required", http.StatusBadRequest)
		return
	}
	h.VaultService.Lock(token)
	w.WriteHeader(http.StatusNoContent)
}
