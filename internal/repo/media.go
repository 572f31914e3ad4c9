package repo

import (
	"MediaKeeper/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MediaRepository — контракт доступа к медиаобъектам.
type MediaRepository interface {
	// CreateIfAbsent пытается вставить объект. Уникальность
	// (owner_id, content_hash) — авторитетная точка дедупликации:
	// при гонке одинаковых загрузок выигрывает первая вставка,
	// проигравшая получает created=false и существующую запись.
	CreateIfAbsent(ctx context.Context, obj *model.MediaObject) (created bool, existing *model.MediaObject, err error)

	GetByID(ctx context.Context, id string) (*model.MediaObject, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.MediaObject, error)
	Delete(ctx context.Context, ownerID int64, id string) (int64, error)
}

type mediaRepo struct {
	db *gorm.DB
}

// NewMediaRepository создаёт реализацию репозитория медиаобъектов.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepo{db: db}
}

func (r *mediaRepo) CreateIfAbsent(ctx context.Context, obj *model.MediaObject) (bool, *model.MediaObject, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "content_hash"}},
		DoNothing: true,
	}).Create(obj)
	if tx.Error != nil {
		return false, nil, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, obj, nil
	}

	// Конфликт: перечитываем запись, победившую в гонке.
	var existing model.MediaObject
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND content_hash = ?", obj.OwnerID, obj.ContentHash).
		First(&existing).Error
	if err != nil {
		return false, nil, err
	}
	return false, &existing, nil
}

func (r *mediaRepo) GetByID(ctx context.Context, id string) (*model.MediaObject, error) {
	var obj model.MediaObject
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&obj).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

func (r *mediaRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.MediaObject, error) {
	var objs []model.MediaObject
	err := r.db.WithContext(ctx).
		Select("id", "owner_id", "file_name", "mime_type", "category",
			"content_hash", "size", "is_encrypted", "created_at", "updated_at").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&objs).Error
	if err != nil {
		return nil, err
	}
	return objs, nil
}

func (r *mediaRepo) Delete(ctx context.Context, ownerID int64, id string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&model.MediaObject{})
	return tx.RowsAffected, tx.Error
}
