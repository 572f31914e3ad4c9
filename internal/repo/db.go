package repo

import (
	"MediaKeeper/internal/model"
	"strings"

	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает соединение с БД и выполняет автомиграции моделей.
// Диалект выбирается по DSN: postgres:// — Postgres, иначе SQLite
// (драйвер modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dial = gormpostgres.Open(dsn)
	} else {
		if dsn == "" {
			dsn = "file:mediakeeper.db"
		}
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.MediaObject{}); err != nil {
		return nil, err
	}
	return db, nil
}
