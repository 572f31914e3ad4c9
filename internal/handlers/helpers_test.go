package handlers_test

import (
	"MediaKeeper/internal/config"
	"MediaKeeper/internal/handlers"
	"MediaKeeper/internal/middleware"
	"MediaKeeper/internal/model"
	"MediaKeeper/internal/repo"
	"MediaKeeper/internal/service"
	"MediaKeeper/internal/vault"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Local light mocks
type hMockUserRepo struct{ mock.Mock }

func (m *hMockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) SetPassphraseHash(ctx context.Context, userID int64, hash string) error {
	return m.Called(ctx, userID, hash).Error(0)
}

var _ repo.UserRepository = (*hMockUserRepo)(nil)

type hMockMediaRepo struct{ mock.Mock }

func (m *hMockMediaRepo) CreateIfAbsent(ctx context.Context, obj *model.MediaObject) (bool, *model.MediaObject, error) {
	args := m.Called(ctx, obj)
	var existing *model.MediaObject
	if v, ok := args.Get(1).(*model.MediaObject); ok {
		existing = v
	}
	return args.Bool(0), existing, args.Error(2)
}
func (m *hMockMediaRepo) GetByID(ctx context.Context, id string) (*model.MediaObject, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*model.MediaObject); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockMediaRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.MediaObject, error) {
	args := m.Called(ctx, ownerID)
	if v, ok := args.Get(0).([]model.MediaObject); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockMediaRepo) Delete(ctx context.Context, ownerID int64, id string) (int64, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.MediaRepository = (*hMockMediaRepo)(nil)

func testConfig() *config.Config {
	return &config.Config{AuthSecret: "test-secret", MediaMaxSizeMB: 1}
}

// newHandlersTestRouter собирает роутер на моках репозиториев.
func newHandlersTestRouter(t *testing.T) (http.Handler, *config.Config, *hMockUserRepo, *hMockMediaRepo, *vault.SessionStore) {
	t.Helper()
	cfg := testConfig()
	logger := zap.NewNop().Sugar()
	ur := &hMockUserRepo{}
	mr := &hMockMediaRepo{}
	sessions := vault.NewSessionStore(vault.DefaultTokenTTL, vault.DefaultSweepInterval, logger)

	userSvc := service.NewUserService(ur)
	vaultSvc := service.NewVaultService(ur, sessions, logger)
	mediaSvc := service.NewMediaService(mr, sessions, logger)
	h := handlers.NewHandler(userSvc, vaultSvc, mediaSvc, logger, cfg)
	return h.Router, cfg, ur, mr, sessions
}

// newFullStackRouter собирает роутер на настоящих репозиториях поверх
// in-memory SQLite: сквозные сценарии без моков.
func newFullStackRouter(t *testing.T) (http.Handler, *config.Config, *gorm.DB) {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file::memory:?cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.MediaObject{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM media_objects")
		db.Exec("DELETE FROM users")
	})

	cfg := testConfig()
	logger := zap.NewNop().Sugar()
	sessions := vault.NewSessionStore(30*time.Minute, 5*time.Minute, logger)
	userSvc := service.NewUserService(repo.NewUserRepository(db))
	vaultSvc := service.NewVaultService(repo.NewUserRepository(db), sessions, logger)
	mediaSvc := service.NewMediaService(repo.NewMediaRepository(db), sessions, logger)
	h := handlers.NewHandler(userSvc, vaultSvc, mediaSvc, logger, cfg)
	return h.Router, cfg, db
}

func addAuth(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// multipartBody собирает multipart-форму для загрузки медиа.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
