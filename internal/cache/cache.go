// Package cache предоставляет кеш-порт сервисного слоя и две его реализации:
// внутрипроцессную (по умолчанию, свой кеш у каждого процесса) и redis.
// Значения сериализуются в JSON, чтобы обе реализации вели себя одинаково.
package cache

import "time"

// Priority — подсказка вытеснению при переполнении внутрипроцессного кеша.
// Redis-реализация подсказку игнорирует.
type Priority int

const (
	// PriorityNormal — обычные записи, вытесняются первыми.
	PriorityNormal Priority = iota
	// PriorityHigh — справочные данные и курсы валют, вытесняются в последнюю очередь.
	PriorityHigh
)

// Cache описывает методы кеширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение с временем жизни и обычным приоритетом.
	Set(key string, value any, expiration time.Duration) error
	// SetWithPriority сохраняет значение с подсказкой вытеснению.
	SetWithPriority(key string, value any, expiration time.Duration, priority Priority) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}
