package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры KDF для шифрования содержимого и обёртывания ключей.
// Число итераций — контракт совместимости: его изменение делает все
// ранее созданные фреймы нерасшифровываемыми. Не смешивать с
// hashIterations из passhash.go — это независимые точки деривации.
const (
	kdfIterations = 15000
	keyLen        = 32 // AES-256

	saltLen  = 16
	nonceLen = 12
	tagLen   = 16

	frameOverhead = saltLen + nonceLen + tagLen
)

// ErrDecryption — единая ошибка для любого сбоя расшифровки:
// неверная парольная фраза, повреждённый шифртекст, битый фрейм.
// Намеренно не различает причины, чтобы не давать оракула.
var ErrDecryption = errors.New("decryption failed")

// deriveKey превращает парольную фразу и соль в ключ AES-256.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keyLen, sha256.New)
}

// Encrypt шифрует plain парольной фразой: PBKDF2-SHA256 + AES-256-GCM.
// Результат — самодостаточный фрейм salt||iv||tag||ciphertext
// с полями фиксированной ширины.
func Encrypt(plain []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	// Seal дописывает тег в конец; во фрейме тег идёт перед шифртекстом.
	sealed := gcm.Seal(nil, nonce, plain, nil)
	ct, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]

	out := make([]byte, 0, frameOverhead+len(ct))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ct...)
	return out, nil
}

// Decrypt разбирает фрейм salt||iv||tag||ciphertext и расшифровывает его.
// Слишком короткий фрейм отклоняется до запуска KDF.
// Любой сбой — ErrDecryption, частичный plaintext не возвращается.
func Decrypt(framed []byte, passphrase string) ([]byte, error) {
	if len(framed) < frameOverhead {
		return nil, ErrDecryption
	}

	salt := framed[:saltLen]
	nonce := framed[saltLen : saltLen+nonceLen]
	tag := framed[saltLen+nonceLen : frameOverhead]
	ct := framed[frameOverhead:]

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, ErrDecryption
	}

	sealed := make([]byte, 0, len(ct)+tagLen)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, nonceLen)
}
