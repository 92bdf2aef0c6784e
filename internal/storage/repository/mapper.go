// Package repository реализует обобщённое хранилище с логическим удалением
// и unit of work поверх PostgreSQL. Каждая таблица описывается маппером,
// общий код отвечает за SQL, аудит-штампы и границу фиксации.
package repository

import (
	"fmt"
	"strings"
)

// RowScanner — общий интерфейс sql.Row и sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Mapper описывает соответствие типа записи и таблицы.
// Columns перечисляет колонки данных без id и аудит-колонок; Values отдаёт
// значения в том же порядке; Scan читает строку в порядке
// id, Columns..., created_at, updated_at, is_deleted (для LinkStore — без
// аудит-колонок).
type Mapper[T any] struct {
	Table   string
	Columns []string
	Values  func(T) []any
	Scan    func(RowScanner) (T, error)
}

// Cond — условие выборки: SQL-фрагмент с плейсхолдерами $1..$n и аргументы.
// Limit = 0 означает отсутствие ограничения.
type Cond struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

func placeholders(from, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("$%d", from+i))
	}
	return strings.Join(parts, ", ")
}

// buildTail собирает ORDER BY / LIMIT / OFFSET для Find.
func (c Cond) buildTail() string {
	var b strings.Builder
	if c.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", c.OrderBy)
	}
	if c.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", c.Limit)
	}
	if c.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", c.Offset)
	}
	return b.String()
}
