package handlers

import (
	"MediaKeeper/internal/config"
	"MediaKeeper/internal/middleware"
	"MediaKeeper/internal/service"
	"MediaKeeper/internal/vault"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// placeholderPNG — однопиксельная серая заглушка, отдаётся вместо
// превью зашифрованных объектов, когда расшифровка не запрошена:
// существование и форма зашифрованного контента в превью не светятся.
var placeholderPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAIAAACQd1PeAAAADElEQVR4nGJiYGAAAAAA//8DADQYAx6l0nChAAAAAElFTkSuQmCC")

// MediaHandler обрабатывает загрузку и выдачу медиафайлов.
type MediaHandler struct {
	MediaService *service.MediaService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

// NewMediaHandler создаёт хендлер media
func NewMediaHandler(mediaService *service.MediaService, logger *zap.SugaredLogger, cfg *config.Config) *MediaHandler {
	return &MediaHandler{MediaService: mediaService, Logger: logger, Config: cfg}
}

// uploadItemResponse — результат по одному файлу батча.
type uploadItemResponse struct {
	FileName  string `json:"file_name"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Upload принимает multipart-форму: части "file" (может быть несколько),
// опциональные "thumb" (по порядку соответствуют файлам), поля
// "encrypt" и "category". Сбой одного файла не валит батч: каждый
// объект получает собственный результат.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Лимит общего тела запроса
	maxFile := int64(h.Config.MediaMaxSizeMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFile*4+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	thumbs := r.MultipartForm.File["thumb"]
	encrypt := r.FormValue("encrypt") == "true"
	category := r.FormValue("category")
	token := middleware.VaultTokenFromRequest(r)

	results := make([]uploadItemResponse, 0, len(files))
	anyOK := false
	var firstErr error
	for i, fh := range files {
		item := uploadItemResponse{FileName: fh.Filename}

		content, err := readPart(fh, maxFile)
		if err != nil {
			h.Logger.Warnw("Upload: read file part", "file", fh.Filename, "error", err)
			item.Error = err.Error()
			results = append(results, item)
			continue
		}
		var thumb []byte
		if i < len(thumbs) {
			if thumb, err = readPart(thumbs[i], maxFile); err != nil {
				h.Logger.Warnw("Upload: read thumb part", "file", fh.Filename, "error", err)
				item.Error = err.Error()
				results = append(results, item)
				continue
			}
		}

		res, err := h.MediaService.Upload(r.Context(), userID, service.UploadRequest{
			FileName:  fh.Filename,
			MimeType:  fh.Header.Get("Content-Type"),
			Category:  category,
			Content:   content,
			Thumbnail: thumb,
			Encrypt:   encrypt,
			Token:     token,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			item.Error = err.Error()
			results = append(results, item)
			continue
		}
		item.ID = res.Object.ID
		item.Duplicate = res.Duplicate
		item.Encrypted = res.Object.IsEncrypted
		anyOK = true
		results = append(results, item)
	}

	w.Header().Set("Content-Type", "application/json")
	if anyOK {
		w.WriteHeader(http.StatusCreated)
	} else {
		// весь батч провалился: статус по первой ошибке
		status := http.StatusBadRequest
		if firstErr != nil {
			status = statusForError(firstErr)
		}
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
}

// readPart вычитывает одну часть формы с контролем размера.
// Дескриптор части закрывается на всех путях выхода.
func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, errors.New("payload too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}

// mediaItemResponse — метаданные объекта в листинге.
type mediaItemResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type,omitempty"`
	Category  string `json:"category,omitempty"`
	Size      int64  `json:"size"`
	Encrypted bool   `json:"encrypted"`
	CreatedAt string `json:"created_at"`
}

// List отдаёт метаданные объектов текущего пользователя.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	objs, err := h.MediaService.List(r.Context(), userID)
	if err != nil {
		h.Logger.Errorw("List: service error", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	items := make([]mediaItemResponse, 0, len(objs))
	for _, o := range objs {
		items = append(items, mediaItemResponse{
			ID:        o.ID,
			FileName:  o.FileName,
			MimeType:  o.MimeType,
			Category:  o.Category,
			Size:      o.Size,
			Encrypted: o.IsEncrypted,
			CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// Content отдаёт основное содержимое объекта. Расшифровка — только по
// явному ?decrypt=true и токену из заголовка Authorization.
func (h *MediaHandler) Content(w http.ResponseWriter, r *http.Request) {
	h.serveObject(w, r, service.VariantContent)
}

// Thumbnail отдаёт превью. Для зашифрованного объекта без запроса на
// расшифровку вместо ошибки уходит пиксель-заглушка.
func (h *MediaHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveObject(w, r, service.VariantThumbnail)
}

func (h *MediaHandler) serveObject(w http.ResponseWriter, r *http.Request, variant service.Variant) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	objectID := chi.URLParam(r, "id")
	wantDecrypt := r.URL.Query().Get("decrypt") == "true"
	token := middleware.VaultTokenFromRequest(r)

	data, obj, err := h.MediaService.Read(r.Context(), objectID, userID, wantDecrypt, token, variant)
	if err != nil {
		if variant == service.VariantThumbnail && errors.Is(err, vault.ErrContentRequiresDecryption) {
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(placeholderPNG)
			return
		}
		writeError(w, err)
		return
	}

	if obj.MimeType != "" {
		w.Header().Set("Content-Type", obj.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete удаляет объект пользователя.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.MediaService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
