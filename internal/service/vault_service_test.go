package service

import (
	"MediaKeeper/internal/crypto"
	"MediaKeeper/internal/model"
	"MediaKeeper/internal/vault"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newVaultFixture() (*mockUserRepo, *vault.SessionStore, *VaultService) {
	m := new(mockUserRepo)
	sessions := vault.NewSessionStore(30*time.Minute, time.Minute, zap.NewNop().Sugar())
	return m, sessions, NewVaultService(m, sessions, zap.NewNop().Sugar())
}

func userWithVault(id int64, passphrase string) *model.User {
	hash, _ := crypto.HashPassphrase(passphrase)
	return &model.User{ID: id, Login: "u", PassphraseHash: &hash}
}

func TestVaultService_Setup(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects short passphrase", func(t *testing.T) {
		_, _, svc := newVaultFixture()
		err := svc.Setup(ctx, 1, "1234567")
		assert.ErrorIs(t, err, vault.ErrPassphraseTooShort)
	})

	t.Run("ok from NoVault state", func(t *testing.T) {
		m, _, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(1)).Return(&model.User{ID: 1}, nil).Once()
		m.On("SetPassphraseHash", mock.Anything, int64(1), mock.MatchedBy(func(h string) bool {
			// сохраняется проверяемый хеш, а не сырая фраза
			return h != "Tr0ub4dor&3" && crypto.VerifyPassphrase("Tr0ub4dor&3", h)
		})).Return(nil).Once()

		assert.NoError(t, svc.Setup(ctx, 1, "Tr0ub4dor&3"))
		m.AssertExpectations(t)
	})

	t.Run("conflict when already configured", func(t *testing.T) {
		m, _, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(1)).Return(userWithVault(1, "x-p@ss-w0rd"), nil).Once()

		err := svc.Setup(ctx, 1, "Tr0ub4dor&3")
		assert.ErrorIs(t, err, vault.ErrVaultExists)
		m.AssertExpectations(t)
	})
}

func TestVaultService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		m, _, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(1)).Return(&model.User{ID: 1}, nil).Once()

		err := svc.Status(ctx, 1)
		assert.ErrorIs(t, err, vault.ErrNoVault)
		assert.Equal(t, vault.KindNotFound, vault.KindOf(err))
		m.AssertExpectations(t)
	})

	t.Run("configured", func(t *testing.T) {
		m, _, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(1)).Return(userWithVault(1, "x-p@ss-w0rd"), nil).Once()

		assert.NoError(t, svc.Status(ctx, 1))
		m.AssertExpectations(t)
	})
}

func TestVaultService_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("ok and token resolves", func(t *testing.T) {
		m, sessions, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(5)).Return(userWithVault(5, "Tr0ub4dor&3"), nil).Once()

		token, exp, err := svc.Unlock(ctx, 5, "Tr0ub4dor&3")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, time.Minute)

		pass, err := sessions.Resolve(token, 5)
		assert.NoError(t, err)
		assert.Equal(t, "Tr0ub4dor&3", pass)
		m.AssertExpectations(t)
	})

	t.Run("wrong passphrase is generic denial", func(t *testing.T) {
		m, _, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(5)).Return(userWithVault(5, "Tr0ub4dor&3"), nil).Once()

		_, _, err := svc.Unlock(ctx, 5, "wrong")
		assert.ErrorIs(t, err, vault.ErrAccessDenied)
	})

	t.Run("no vault is the same generic denial", func(t *testing.T) {
		m, _, svc := newVaultFixture()
		m.On("GetUserByID", mock.Anything, int64(5)).Return(&model.User{ID: 5}, nil).Once()

		_, _, err := svc.Unlock(ctx, 5, "Tr0ub4dor&3")
		assert.ErrorIs(t, err, vault.ErrAccessDenied)
	})
}

func TestVaultService_Lock(t *testing.T) {
	m, sessions, svc := newVaultFixture()
	m.On("GetUserByID", mock.Anything, int64(5)).Return(userWithVault(5, "Tr0ub4dor&3"), nil).Once()

	token, _, err := svc.Unlock(context.Background(), 5, "Tr0ub4dor&3")
	assert.NoError(t, err)

	svc.Lock(token)
	_, err = sessions.Resolve(token, 5)
	assert.ErrorIs(t, err, vault.ErrTokenNotFound)
}
