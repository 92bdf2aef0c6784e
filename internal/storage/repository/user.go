package repository

import (
	"context"
	"database/sql"

	"github.com/subtrack-app/subtrack-backend/internal/models"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
)

var userMapper = Mapper[*models.User]{
	Table:   "users",
	Columns: []string{"uid", "email", "username", "password_hash", "role"},
	Values: func(u *models.User) []any {
		return []any{u.UID, u.Email, u.Username, u.PasswordHash, u.Role}
	},
	Scan: func(row RowScanner) (*models.User, error) {
		var u models.User
		var updated sql.NullTime
		if err := row.Scan(&u.ID, &u.UID, &u.Email, &u.Username, &u.PasswordHash,
			&u.Role, &u.CreatedAt, &updated, &u.IsDeleted); err != nil {
			return nil, err
		}
		if updated.Valid {
			u.UpdatedAt = &updated.Time
		}
		return &u, nil
	},
}

var deviceTokenMapper = Mapper[*models.DeviceToken]{
	Table:   "device_tokens",
	Columns: []string{"user_uid", "token", "platform"},
	Values: func(d *models.DeviceToken) []any {
		return []any{d.UserUID, d.Token, d.Platform}
	},
	Scan: func(row RowScanner) (*models.DeviceToken, error) {
		var d models.DeviceToken
		if err := row.Scan(&d.ID, &d.UserUID, &d.Token, &d.Platform); err != nil {
			return nil, err
		}
		return &d, nil
	},
}

// Users — доступ к пользователям и их push-токенам.
type Users struct {
	p *Provider
}

// NewUsers создаёт репозиторий пользователей.
func NewUsers(p *Provider) *Users {
	return &Users{p: p}
}

// RegisterUser сохраняет нового пользователя и возвращает его uid.
func (r *Users) RegisterUser(ctx context.Context, u *models.User) (string, error) {
	uow := r.p.NewUnitOfWork()
	NewStore(uow, userMapper).Add(u)
	if err := uow.Commit(ctx); err != nil {
		return "", err
	}
	return u.UID, nil
}

// GetUserByUsername возвращает пользователя по имени или storage.ErrNotFound.
func (r *Users) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	st := NewStore(r.p.NewUnitOfWork(), userMapper)
	found, err := st.Find(ctx, Cond{Where: "username = $1", Args: []any{username}, Limit: 1}, false)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, storage.ErrNotFound
	}
	return found[0], nil
}

// SaveDeviceToken регистрирует push-токен устройства.
func (r *Users) SaveDeviceToken(ctx context.Context, t *models.DeviceToken) error {
	uow := r.p.NewUnitOfWork()
	NewLinkStore(uow, deviceTokenMapper).Add(t)
	return uow.Commit(ctx)
}

// RemoveDeviceToken физически удаляет push-токен: это связующая запись,
// аудита и логического удаления у неё нет.
func (r *Users) RemoveDeviceToken(ctx context.Context, userUID, token string) error {
	uow := r.p.NewUnitOfWork()
	st := NewLinkStore(uow, deviceTokenMapper)
	found, err := st.Find(ctx, Cond{Where: "user_uid = $1 AND token = $2", Args: []any{userUID, token}})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return storage.ErrNotFound
	}
	for _, t := range found {
		st.Remove(t)
	}
	return uow.Commit(ctx)
}
