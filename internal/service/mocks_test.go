package service

import (
	"MediaKeeper/internal/model"
	"MediaKeeper/internal/repo"
	"context"

	"github.com/stretchr/testify/mock"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) SetPassphraseHash(ctx context.Context, userID int64, hash string) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.MediaRepository
type mockMediaRepo struct{ mock.Mock }

func (m *mockMediaRepo) CreateIfAbsent(ctx context.Context, obj *model.MediaObject) (bool, *model.MediaObject, error) {
	args := m.Called(ctx, obj)
	var existing *model.MediaObject
	if v, ok := args.Get(1).(*model.MediaObject); ok {
		existing = v
	}
	return args.Bool(0), existing, args.Error(2)
}

func (m *mockMediaRepo) GetByID(ctx context.Context, id string) (*model.MediaObject, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*model.MediaObject); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMediaRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.MediaObject, error) {
	args := m.Called(ctx, ownerID)
	if v, ok := args.Get(0).([]model.MediaObject); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMediaRepo) Delete(ctx context.Context, ownerID int64, id string) (int64, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.MediaRepository = (*mockMediaRepo)(nil)
