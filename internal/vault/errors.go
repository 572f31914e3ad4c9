package vault

import (
	"errors"

	"MediaKeeper/internal/crypto"
)

// Kind — класс ошибки хранилища. Хендлеры выбирают HTTP-статус по
// классу, а не по тексту сообщения.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindDecryption
	KindNotFound
	KindConflict
	KindIntegrity
)

// Error — тегированная ошибка хранилища.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind возвращает класс ошибки.
func (e *Error) Kind() Kind { return e.kind }

var (
	// Setup
	ErrPassphraseTooShort = &Error{KindValidation, "passphrase must be at least 8 characters"}
	ErrVaultExists        = &Error{KindConflict, "vault already configured"}

	// Unlock. Текст намеренно общий: наружу не различаем
	// «нет хранилища» и «неверная фраза».
	ErrAccessDenied = &Error{KindAuthentication, "access denied"}

	// Отсутствие хранилища для операций, которым оно обязательно.
	ErrNoVault = &Error{KindNotFound, "vault is not configured"}

	// Токены. Истечение и отсутствие различимы в логах, но оба — 401.
	ErrTokenNotFound = &Error{KindAuthentication, "vault token not found"}
	ErrTokenExpired  = &Error{KindAuthentication, "vault token expired"}
	ErrTokenRequired = &Error{KindAuthentication, "vault token required"}

	// Предъявление чужого токена — нарушение авторизации, не промах.
	ErrTokenOwnership = &Error{KindAuthorization, "vault token does not belong to caller"}

	// Гейт доступа к медиа.
	ErrObjectNotFound            = &Error{KindNotFound, "object not found"}
	ErrForeignObject             = &Error{KindAuthorization, "object belongs to another user"}
	ErrContentRequiresDecryption = &Error{KindValidation, "content is encrypted, decryption must be requested explicitly"}
	ErrEmptyContent              = &Error{KindValidation, "empty content"}

	// Содержимое после расшифровки (или хранимый plaintext) не сходится
	// с зафиксированным хешем.
	ErrIntegrity = &Error{KindIntegrity, "stored content failed integrity check"}
)

// KindOf классифицирует произвольную ошибку. Ошибки AEAD-слоя
// считаются KindDecryption, всё неизвестное — KindUnknown.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.kind
	}
	if errors.Is(err, crypto.ErrDecryption) {
		return KindDecryption
	}
	return KindUnknown
}
