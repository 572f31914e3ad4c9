package service

import (
	"MediaKeeper/internal/crypto"
	"MediaKeeper/internal/repo"
	"MediaKeeper/internal/vault"
	"context"
	"time"

	"go.uber.org/zap"
)

// Минимальная длина парольной фразы хранилища.
const minPassphraseLen = 8

// VaultService — настройка и разблокировка хранилища.
// Единственное место, где сырая парольная фраза покидает тело
// HTTP-запроса — таблица сессий; в логи и БД она не попадает.
type VaultService struct {
	users    repo.UserRepository
	sessions *vault.SessionStore
	logger   *zap.SugaredLogger
}

func NewVaultService(users repo.UserRepository, sessions *vault.SessionStore, logger *zap.SugaredLogger) *VaultService {
	return &VaultService{users: users, sessions: sessions, logger: logger}
}

// Setup заводит хранилище: допустимо только пока хеш фразы не задан.
func (s *VaultService) Setup(ctx context.Context, userID int64, passphrase string) error {
	if len(passphrase) < minPassphraseLen {
		return vault.ErrPassphraseTooShort
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.HasVault() {
		return vault.ErrVaultExists
	}

	hash, err := crypto.HashPassphrase(passphrase)
	if err != nil {
		return err
	}
	if err := s.users.SetPassphraseHash(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Infow("vault configured", "user_id", userID)
	return nil
}

// Status сообщает, заведено ли хранилище. Ненастроенное хранилище —
// это 404-класс: ресурса ещё нет. Свою собственную конфигурацию
// пользователь видеть вправе, generic-правило Unlock тут ни при чём.
func (s *VaultService) Status(ctx context.Context, userID int64) error {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasVault() {
		return vault.ErrNoVault
	}
	return nil
}

// Unlock сверяет фразу и выпускает токен доступа. Отсутствие
// хранилища и неверная фраза наружу неразличимы (generic 401),
// различие остаётся только в логах.
func (s *VaultService) Unlock(ctx context.Context, userID int64, passphrase string) (token string, expiresAt time.Time, err error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !u.HasVault() {
		s.logger.Infow("vault unlock rejected: not configured", "user_id", userID)
		return "", time.Time{}, vault.ErrAccessDenied
	}
	if !crypto.VerifyPassphrase(passphrase, *u.PassphraseHash) {
		s.logger.Infow("vault unlock rejected: bad passphrase", "user_id", userID)
		return "", time.Time{}, vault.ErrAccessDenied
	}

	token, expiresAt, err = s.sessions.Issue(userID, passphrase)
	if err != nil {
		return "", time.Time{}, err
	}
	s.logger.Infow("vault unlocked", "user_id", userID, "expires_at", expiresAt)
	return token, expiresAt, nil
}

// Lock отзывает токен (явная блокировка).
func (s *VaultService) Lock(token string) {
	s.sessions.Revoke(token)
}
