package handlers

import (
	"MediaKeeper/internal/vault"
	"net/http"
)

// statusForError отображает класс ошибки хранилища в HTTP-статус.
// Решение принимается по тегу ошибки, не по тексту сообщения.
// Сбои расшифровки — 403: это ожидаемый враждебный/пользовательский
// случай, а не дефект сервера.
func statusForError(err error) int {
	switch vault.KindOf(err) {
	case vault.KindValidation:
		return http.StatusBadRequest
	case vault.KindAuthentication:
		return http.StatusUnauthorized
	case vault.KindAuthorization, vault.KindDecryption:
		return http.StatusForbidden
	case vault.KindNotFound:
		return http.StatusNotFound
	case vault.KindConflict:
		return http.StatusConflict
	case vault.KindIntegrity:
		// ожидаемое, зафиксированное в аудите состояние данных,
		// а не дефект сервера — не маскируем под 500
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает статусом по классу ошибки. Неизвестные ошибки
// наружу не детализируются.
func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	http.Error(w, msg, status)
}
