package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AuthFSStore — файловое хранилище auth-cookie, логина и vault-токена
// для CLI. Все файлы лежат в пользовательском конфиг-каталоге с
// правами 0600.
type AuthFSStore struct{}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "MediaKeeper")
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func tokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth_token"), nil
}

func lastLoginPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last_login"), nil
}

func vaultTokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vault_token"), nil
}

// Save сохраняет auth‑токен в файл.
func (AuthFSStore) Save(token string) error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (AuthFSStore) Load() (string, error) {
	p, err := tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", errors.New("empty token file")
	}
	return s, nil
}

// SaveLogin сохраняет логин пользователя в файл.
func (AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	p, err := lastLoginPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(login), 0o600)
}

// LoadLogin читает логин пользователя из файла.
func (AuthFSStore) LoadLogin() (string, error) {
	p, err := lastLoginPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", errors.New("no stored login")
	}
	return s, nil
}

// ErrVaultTokenExpired — сохранённый токен протух, нужен повторный unlock.
var ErrVaultTokenExpired = errors.New("stored vault token expired")

// SaveVaultToken сохраняет vault-токен вместе со сроком действия.
// Формат файла: токен и RFC3339-метка на отдельных строках.
func (AuthFSStore) SaveVaultToken(token string, expiresAt time.Time) error {
	if token == "" {
		return errors.New("empty vault token")
	}
	p, err := vaultTokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token+"\n"+expiresAt.UTC().Format(time.RFC3339)), 0o600)
}

// LoadVaultToken читает vault-токен; протухший по локальной метке токен
// не возвращается.
func (AuthFSStore) LoadVaultToken() (string, error) {
	p, err := vaultTokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	lines := strings.SplitN(strings.TrimSpace(string(b)), "\n", 2)
	if lines[0] == "" {
		return "", errors.New("empty vault token file")
	}
	if len(lines) == 2 {
		exp, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[1]))
		if err == nil && time.Now().After(exp) {
			return "", ErrVaultTokenExpired
		}
	}
	return lines[0], nil
}

// ClearVaultToken удаляет сохранённый vault-токен (после lock).
func (AuthFSStore) ClearVaultToken() error {
	p, err := vaultTokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
