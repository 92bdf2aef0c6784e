package models

// User — зарегистрированный пользователь приложения.
type User struct {
	Entity
	UID          string `json:"uid"`      // Внешний идентификатор (uuid)
	Email        string `json:"email"`    // Электронная почта
	Username     string `json:"username"` // Имя пользователя (уникальное)
	PasswordHash string `json:"-"`        // bcrypt-хэш пароля
	Role         string `json:"role"`     // admin или user
}

// DeviceToken — push-токен устройства пользователя. Связующая запись:
// аудит-полей не несёт и при отписке удаляется физически.
type DeviceToken struct {
	ID       int64  `json:"id"`
	UserUID  string `json:"user_uid"`
	Token    string `json:"token"`
	Platform string `json:"platform"` // ios или android
}

// EntityID возвращает идентификатор токена.
func (d *DeviceToken) EntityID() int64 { return d.ID }

// SetEntityID выставляет идентификатор после вставки.
func (d *DeviceToken) SetEntityID(id int64) { d.ID = id }
