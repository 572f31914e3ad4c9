package service

import (
	"MediaKeeper/internal/crypto"
	"MediaKeeper/internal/model"
	"MediaKeeper/internal/repo"
	"MediaKeeper/internal/vault"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Variant — какое представление объекта читается.
type Variant int

const (
	VariantContent Variant = iota
	VariantThumbnail
)

// UploadRequest — вход загрузки одного файла. Превью (если есть)
// готовит вызывающая сторона; при шифровании оно закрывается тем же
// CEK, что и основной файл.
type UploadRequest struct {
	FileName  string
	MimeType  string
	Category  string
	Content   []byte
	Thumbnail []byte
	Encrypt   bool
	Token     string
}

// UploadResult — результат загрузки. Duplicate=true означает, что
// такое содержимое у владельца уже было и вернулась существующая запись.
type UploadResult struct {
	Object    *model.MediaObject
	Duplicate bool
}

// MediaService — бизнес-логика медиаобъектов и гейт доступа к
// зашифрованному содержимому.
type MediaService struct {
	media    repo.MediaRepository
	sessions *vault.SessionStore
	logger   *zap.SugaredLogger
}

func NewMediaService(media repo.MediaRepository, sessions *vault.SessionStore, logger *zap.SugaredLogger) *MediaService {
	return &MediaService{media: media, sessions: sessions, logger: logger}
}

// Upload сохраняет файл, при необходимости шифруя его свежим CEK.
// Дедупликация по (владелец, sha256 исходных байт): гонку одинаковых
// загрузок разрешает уникальный индекс в БД, вторая попытка получает
// существующий объект.
func (s *MediaService) Upload(ctx context.Context, ownerID int64, req UploadRequest) (*UploadResult, error) {
	if len(req.Content) == 0 {
		return nil, vault.ErrEmptyContent
	}

	sum := sha256.Sum256(req.Content)
	obj := &model.MediaObject{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		FileName:    req.FileName,
		MimeType:    req.MimeType,
		Category:    req.Category,
		ContentHash: hex.EncodeToString(sum[:]),
		Size:        int64(len(req.Content)),
	}

	if req.Encrypt {
		// Фраза берётся только из активной сессии хранилища.
		passphrase, err := s.sessions.Resolve(req.Token, ownerID)
		if err != nil {
			return nil, err
		}

		cek, err := crypto.NewContentKey()
		if err != nil {
			return nil, err
		}
		if obj.Content, err = crypto.Protect(req.Content, cek); err != nil {
			return nil, err
		}
		if len(req.Thumbnail) > 0 {
			// превью — под тем же CEK, что и оригинал
			if obj.Thumbnail, err = crypto.Protect(req.Thumbnail, cek); err != nil {
				return nil, err
			}
		}
		if obj.WrappedKey, err = crypto.WrapKey(cek, passphrase); err != nil {
			return nil, err
		}
		obj.IsEncrypted = true
		// открытые байты и CEK дальше этой точки не живут
	} else {
		obj.Content = req.Content
		obj.Thumbnail = req.Thumbnail
	}

	created, existing, err := s.media.CreateIfAbsent(ctx, obj)
	if err != nil {
		return nil, err
	}
	stored := obj
	if !created {
		stored = existing
		s.logger.Infow("duplicate upload", "user_id", ownerID, "object_id", stored.ID)
	}
	return &UploadResult{Object: stripContent(stored), Duplicate: !created}, nil
}

// Read — гейт чтения. Порядок проверок фиксирован: владение объектом
// (независимо от шифрования), затем явное согласие на расшифровку,
// затем криптографическая цепочка токен → CEK → содержимое.
// Сбои цепочки никогда не маскируются под «не найдено».
func (s *MediaService) Read(ctx context.Context, objectID string, callerUserID int64, wantDecrypt bool, token string, variant Variant) ([]byte, *model.MediaObject, error) {
	obj, err := s.media.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, vault.ErrObjectNotFound
		}
		return nil, nil, err
	}
	if obj.OwnerID != callerUserID {
		s.logger.Warnw("foreign object access attempt", "user_id", callerUserID, "object_id", objectID, "owner_id", obj.OwnerID)
		return nil, nil, vault.ErrForeignObject
	}

	raw := obj.Content
	if variant == VariantThumbnail {
		raw = obj.Thumbnail
	}
	if len(raw) == 0 {
		return nil, nil, vault.ErrObjectNotFound
	}

	if !obj.IsEncrypted {
		if variant == VariantContent {
			if err := s.checkIntegrity(obj, raw); err != nil {
				return nil, nil, err
			}
		}
		return raw, obj, nil
	}

	if !wantDecrypt {
		return nil, obj, vault.ErrContentRequiresDecryption
	}

	passphrase, err := s.sessions.Resolve(token, callerUserID)
	if err != nil {
		return nil, nil, err
	}
	cek, err := crypto.UnwrapKey(obj.WrappedKey, passphrase)
	if err != nil {
		return nil, nil, err
	}
	plain, err := crypto.Reveal(raw, cek)
	if err != nil {
		return nil, nil, err
	}
	if variant == VariantContent {
		if err := s.checkIntegrity(obj, plain); err != nil {
			return nil, nil, err
		}
	}
	return plain, obj, nil
}

// List возвращает метаданные объектов владельца (без содержимого).
func (s *MediaService) List(ctx context.Context, ownerID int64) ([]model.MediaObject, error) {
	return s.media.ListByOwner(ctx, ownerID)
}

// Delete удаляет объект владельца.
func (s *MediaService) Delete(ctx context.Context, ownerID int64, objectID string) error {
	n, err := s.media.Delete(ctx, ownerID, objectID)
	if err != nil {
		return err
	}
	if n == 0 {
		return vault.ErrObjectNotFound
	}
	return nil
}

// checkIntegrity сверяет plaintext с зафиксированным при загрузке
// хешем. Расхождение репортится в аудит и не чинится автоматически;
// мусорные байты наружу не отдаются.
func (s *MediaService) checkIntegrity(obj *model.MediaObject, plain []byte) error {
	sum := sha256.Sum256(plain)
	if hex.EncodeToString(sum[:]) != obj.ContentHash {
		s.logger.Errorw("audit: content integrity violation",
			"object_id", obj.ID, "owner_id", obj.OwnerID)
		return vault.ErrIntegrity
	}
	return nil
}

// stripContent убирает тяжёлые поля из ответа метаданных.
func stripContent(obj *model.MediaObject) *model.MediaObject {
	out := *obj
	out.Content = nil
	out.Thumbnail = nil
	return &out
}
