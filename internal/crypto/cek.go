package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
)

// Длина случайного ключа содержимого (CEK) в байтах.
const cekLen = 32

// NewContentKey генерирует случайный CEK для одного объекта.
// Ключ представлен hex-строкой и дальше используется как ключевой
// вход AEAD-обёртки.
func NewContentKey() (string, error) {
	raw := make([]byte, cekLen)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Protect шифрует содержимое объекта его CEK.
func Protect(buf []byte, cek string) ([]byte, error) {
	return Encrypt(buf, cek)
}

// Reveal расшифровывает содержимое объекта его CEK.
func Reveal(framed []byte, cek string) ([]byte, error) {
	return Decrypt(framed, cek)
}

// WrapKey заворачивает CEK под сырую парольную фразу хранилища и
// возвращает компактную base64-строку для хранения рядом с объектом.
// На вход подаётся именно фраза из активной сессии: хеш из БД
// невосстановим до исходного ключевого материала и ключом быть не может.
func WrapKey(cek, rawPassphrase string) (string, error) {
	framed, err := Encrypt([]byte(cek), rawPassphrase)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(framed), nil
}

// UnwrapKey разворачивает CEK; при неверной фразе или порче —
// ErrDecryption.
func UnwrapKey(wrapped, rawPassphrase string) (string, error) {
	framed, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return "", ErrDecryption
	}
	cek, err := Decrypt(framed, rawPassphrase)
	if err != nil {
		return "", err
	}
	return string(cek), nil
}
