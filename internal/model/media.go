package model

import "time"

// MediaObject — серверная модель медиафайла пользователя.
// Для зашифрованных объектов Content и Thumbnail содержат фреймы
// salt||iv||tag||ciphertext, а WrappedKey — CEK объекта, зашифрованный
// парольной фразой хранилища (base64). Превью шифруется тем же CEK,
// что и основной файл.
type MediaObject struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	OwnerID int64  `gorm:"not null;index;uniqueIndex:idx_owner_hash"`

	// Связи
	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	FileName string `gorm:"not null"`
	MimeType string
	Category string

	// SHA-256 исходного (незашифрованного) содержимого, hex.
	// Уникальность пары (owner_id, content_hash) — точка дедупликации.
	ContentHash string `gorm:"not null;uniqueIndex:idx_owner_hash"`
	Size        int64  `gorm:"not null"`

	IsEncrypted bool   `gorm:"not null;default:false"`
	WrappedKey  string // пусто, если IsEncrypted=false

	Content   []byte `gorm:"not null"`
	Thumbnail []byte

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
