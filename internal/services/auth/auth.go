// Package services содержит бизнес-логику регистрации и аутентификации.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/subtrack-app/subtrack-backend/internal/lib/jwt"
	"github.com/subtrack-app/subtrack-backend/internal/lib/password"
	"github.com/subtrack-app/subtrack-backend/internal/models"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
// Несуществующий пользователь и неверный пароль наружу неразличимы.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserRepository описывает методы хранилища пользователей.
type UserRepository interface {
	RegisterUser(ctx context.Context, u *models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SaveDeviceToken(ctx context.Context, t *models.DeviceToken) error
	RemoveDeviceToken(ctx context.Context, userUID, token string) error
}

// AuthService реализует регистрацию, вход и проверку токенов.
type AuthService struct {
	repo  UserRepository
	maker jwt.Maker
	log   *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo UserRepository, maker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Register создаёт пользователя с ролью user и возвращает его uid.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "auth.Register"

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		UID:          uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         "user",
	}
	uid, err := s.repo.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пару логин/пароль и возвращает подписанный JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ValidateToken проверяет подпись и срок действия токена.
func (s *AuthService) ValidateToken(tokenStr string) (*jwt.CustomClaims, error) {
	return s.maker.ParseToken(tokenStr)
}

// RegisterDevice сохраняет push-токен устройства пользователя.
func (s *AuthService) RegisterDevice(ctx context.Context, userUID, token, platform string) error {
	const op = "auth.RegisterDevice"
	err := s.repo.SaveDeviceToken(ctx, &models.DeviceToken{
		UserUID:  userUID,
		Token:    token,
		Platform: platform,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UnregisterDevice удаляет push-токен устройства пользователя.
func (s *AuthService) UnregisterDevice(ctx context.Context, userUID, token string) error {
	const op = "auth.UnregisterDevice"
	if err := s.repo.RemoveDeviceToken(ctx, userUID, token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
