package vault

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTokenTTL — срок жизни токена доступа к хранилищу.
	DefaultTokenTTL = 30 * time.Minute
	// DefaultSweepInterval — период фоновой зачистки истёкших токенов.
	DefaultSweepInterval = 5 * time.Minute

	tokenBytes = 32
)

// sessionEntry — серверная запись разблокированной сессии. Сырая
// парольная фраза живёт только здесь и только до истечения токена.
type sessionEntry struct {
	userID     int64
	passphrase string
	expiresAt  time.Time
}

// SessionStore — процесс-локальная таблица токенов хранилища.
// Никогда не пишется в долговременное хранилище: рестарт процесса
// инвалидирует все токены, пользователи разблокируют заново.
// При нескольких процессах сервера таблицу нужно выносить во внешний
// кеш — это допущение деплоя, а не скрытая настройка.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry

	ttl        time.Duration
	sweepEvery time.Duration
	log        *zap.SugaredLogger
}

// NewSessionStore создаёт таблицу токенов. Нулевые длительности
// заменяются значениями по умолчанию.
func NewSessionStore(ttl, sweepEvery time.Duration, log *zap.SugaredLogger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepInterval
	}
	return &SessionStore{
		entries:    make(map[string]sessionEntry),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		log:        log,
	}
}

// Issue выпускает непредсказуемый токен, привязанный к пользователю,
// и запоминает сырую парольную фразу на срок жизни токена.
func (s *SessionStore) Issue(userID int64, rawPassphrase string) (token string, expiresAt time.Time, err error) {
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", time.Time{}, err
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	expiresAt = time.Now().Add(s.ttl)

	s.mu.Lock()
	s.entries[token] = sessionEntry{userID: userID, passphrase: rawPassphrase, expiresAt: expiresAt}
	s.mu.Unlock()

	return token, expiresAt, nil
}

// Resolve возвращает парольную фразу по токену. Истёкшие записи
// вычищаются лениво, независимо от фоновой зачистки. Чужой токен —
// жёсткая ошибка авторизации, различимая от истечения.
func (s *SessionStore) Resolve(token string, callerUserID int64) (string, error) {
	if token == "" {
		return "", ErrTokenRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, token)
		return "", ErrTokenExpired
	}
	if e.userID != callerUserID {
		return "", ErrTokenOwnership
	}
	return e.passphrase, nil
}

// Revoke снимает токен (явная блокировка хранилища). Отзыв
// несуществующего токена не ошибка.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
}

// Len возвращает текущее число живых записей (для логов и тестов).
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run запускает периодическую зачистку истёкших токенов до отмены
// контекста. Ограничивает рост таблицы от брошенных сессий.
func (s *SessionStore) Run(ctx context.Context) {
	t := time.NewTicker(s.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sweep(); n > 0 && s.log != nil {
				s.log.Debugw("vault session sweep", "evicted", n)
			}
		}
	}
}

func (s *SessionStore) sweep() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for tok, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, tok)
			evicted++
		}
	}
	return evicted
}
