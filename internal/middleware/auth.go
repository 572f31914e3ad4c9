package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const authCookieName = "auth_token"

type contextKey string

const userIDKey contextKey = "user_id"

// authClaims — JWT-утверждения auth-cookie.
type authClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// SetLoginCookie подписывает JWT с идентификатором пользователя и
// ставит его в cookie auth_token.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string) error {
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
		UserID: userID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// WithAuth проверяет auth-cookie и кладёт user_id в контекст запроса.
// Запрос без валидной cookie проходит дальше анонимным — отказ
// решают хендлеры.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(authCookieName)
			if err == nil && c.Value != "" {
				claims := &authClaims{}
				token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
					return []byte(secret), nil
				})
				if err == nil && token.Valid {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, claims.UserID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext достаёт user_id, положенный WithAuth.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// VaultTokenFromRequest извлекает токен хранилища из заголовка
// Authorization вида "vault:<token>". Токен передаётся ТОЛЬКО в
// заголовке: URL-параметры логируются и кешируются, поэтому из query
// токен не читается никогда.
func VaultTokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "vault:") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "vault:"))
}
