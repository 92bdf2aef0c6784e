// Package models содержит доменные структуры трекера подписок:
// справочник сервисов, подписки пользователей, очередь уведомлений,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Entity — общая часть каждой хранимой записи: идентификатор и аудит-поля.
// CreatedAt выставляется один раз при первой записи, UpdatedAt — при каждой
// мутации, IsDeleted — признак логического удаления. Поля проставляются
// на границе хранилища (unit of work), а не в вызывающем коде.
type Entity struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"is_deleted"`
}

// EntityID возвращает идентификатор записи.
func (e *Entity) EntityID() int64 { return e.ID }

// SetEntityID выставляет идентификатор после вставки.
func (e *Entity) SetEntityID(id int64) { e.ID = id }

// StampCreated проставляет аудит-поля новой записи.
func (e *Entity) StampCreated(now time.Time) {
	e.CreatedAt = now
	e.UpdatedAt = nil
	e.IsDeleted = false
}

// StampUpdated проставляет время мутации.
func (e *Entity) StampUpdated(now time.Time) {
	t := now
	e.UpdatedAt = &t
}

// MarkDeleted помечает запись логически удалённой.
func (e *Entity) MarkDeleted(now time.Time) {
	e.IsDeleted = true
	e.StampUpdated(now)
}

// Deleted сообщает, удалена ли запись логически.
func (e *Entity) Deleted() bool { return e.IsDeleted }

// Keyed — минимальный контракт хранимой записи: целочисленный ключ.
// Его достаточно для связующих записей, которые удаляются физически.
type Keyed interface {
	EntityID() int64
	SetEntityID(int64)
}

// SoftDeletable — контракт записи с аудитом и логическим удалением.
// Remove для таких записей никогда не делает физический DELETE.
// Способность разрешается на этапе компиляции ограничением дженерика,
// а не проверкой типа во время выполнения.
type SoftDeletable interface {
	Keyed
	StampCreated(time.Time)
	StampUpdated(time.Time)
	MarkDeleted(time.Time)
	Deleted() bool
}
