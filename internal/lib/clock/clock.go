// Package clock предоставляет абстракцию над системным временем.
//
// Планировщик уведомлений и unit of work никогда не читают time.Now напрямую:
// им передаётся Clock, что позволяет подставлять фиксированное время в тестах.
package clock

import "time"

// Clock отдаёт текущее время.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System возвращает Clock поверх системных часов.
func System() Clock { return systemClock{} }

// Fixed возвращает Clock, который всегда отдаёт одно и то же время.
// Используется в тестах.
func Fixed(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }
