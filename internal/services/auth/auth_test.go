package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/subtrack-app/subtrack-backend/internal/lib/jwt"
	"github.com/subtrack-app/subtrack-backend/internal/lib/password"
	"github.com/subtrack-app/subtrack-backend/internal/models"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, u *models.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) SaveDeviceToken(ctx context.Context, t *models.DeviceToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *RepoMock) RemoveDeviceToken(ctx context.Context, userUID, token string) error {
	return m.Called(ctx, userUID, token).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthService_Register(t *testing.T) {
	repo := new(RepoMock)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	svc := NewAuthService(repo, maker, newNoopLogger())

	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		// UID генерируется сервисом, пароль хранится только хэшем
		return u.UID != "" && u.Role == "user" &&
			u.Username == "alice" && u.Email == "alice@example.com" &&
			u.PasswordHash != "secret123" &&
			password.CompareHash(u.PasswordHash, "secret123") == nil
	})).Return("uid-1", nil).Once()

	uid, err := svc.Register(context.Background(), "alice@example.com", "alice", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	repo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	assert.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Username:     "alice",
		PasswordHash: hash,
		Role:         "user",
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		password   string
		wantErr    error
	}{
		{
			name: "success login",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
			},
			password: "secret123",
		},
		{
			name: "wrong password",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
			},
			password: "wrong",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name: "unknown user indistinguishable from wrong password",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(nil, storage.ErrNotFound).Once()
			},
			password: "secret123",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			maker := jwt.NewJWTMaker("test-secret", time.Hour)
			svc := NewAuthService(repo, maker, newNoopLogger())

			tt.setupMocks(repo)

			token, err := svc.Login(context.Background(), "alice", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)

				claims, err := svc.ValidateToken(token)
				assert.NoError(t, err)
				assert.Equal(t, "alice", claims.Username)
				assert.Equal(t, "uid-1", claims.UserUID)
				assert.Equal(t, "user", claims.Role)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_DeviceTokens(t *testing.T) {
	repo := new(RepoMock)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	svc := NewAuthService(repo, maker, newNoopLogger())

	repo.On("SaveDeviceToken", mock.Anything, mock.MatchedBy(func(d *models.DeviceToken) bool {
		return d.UserUID == "uid-1" && d.Token == "fcm-token" && d.Platform == "android"
	})).Return(nil).Once()
	repo.On("RemoveDeviceToken", mock.Anything, "uid-1", "fcm-token").Return(nil).Once()

	assert.NoError(t, svc.RegisterDevice(context.Background(), "uid-1", "fcm-token", "android"))
	assert.NoError(t, svc.UnregisterDevice(context.Background(), "uid-1", "fcm-token"))

	repo.AssertExpectations(t)
}

func TestAuthService_UnregisterDevice_NotFound(t *testing.T) {
	repo := new(RepoMock)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	svc := NewAuthService(repo, maker, newNoopLogger())

	repo.On("RemoveDeviceToken", mock.Anything, "uid-1", "gone").Return(storage.ErrNotFound).Once()

	err := svc.UnregisterDevice(context.Background(), "uid-1", "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	repo.AssertExpectations(t)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	repo := new(RepoMock)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	svc := NewAuthService(repo, maker, newNoopLogger())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	// Токен с другим секретом не проходит проверку подписи
	other := jwt.NewJWTMaker("other-secret", time.Hour)
	token, err := other.GenerateToken("alice", "user", "uid-1")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
