package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры хеширования парольной фразы хранилища. Деривация
// независима от kdfIterations в aead.go: хеш служит только проверке
// при разблокировке и никогда не используется как ключевой материал.
const (
	hashIterations = 100000
	hashSaltLen    = 16
	verifierLen    = 32
)

// HashPassphrase возвращает одностороннее представление парольной
// фразы в кодировке salt_hex:verifier_hex для хранения в БД.
func HashPassphrase(passphrase string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	verifier := pbkdf2.Key([]byte(passphrase), salt, hashIterations, verifierLen, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(verifier), nil
}

// VerifyPassphrase сверяет фразу с сохранённым хешем.
// Сравнение — константное по времени; некорректная кодировка
// считается несовпадением.
func VerifyPassphrase(passphrase, stored string) bool {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil || len(want) != verifierLen {
		return false
	}
	got := pbkdf2.Key([]byte(passphrase), salt, hashIterations, verifierLen, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
