package model

import "time"

// User — серверная модель учётной записи.
// PassphraseHash задан только если пользователь настроил хранилище (vault):
// nil означает, что хранилища нет.
type User struct {
	ID       int64  `gorm:"primaryKey"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш пароля учётной записи

	// Хеш парольной фразы хранилища в кодировке salt_hex:verifier_hex.
	// Сырая фраза никогда не сохраняется.
	PassphraseHash *string

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// HasVault сообщает, настроено ли хранилище у пользователя.
func (u *User) HasVault() bool {
	return u.PassphraseHash != nil && *u.PassphraseHash != ""
}
