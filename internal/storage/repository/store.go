package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/models"
	"github.com/subtrack-app/subtrack-backend/internal/storage"
)

// Store — обобщённое хранилище записей с аудитом и логическим удалением.
// Мутации (Add/Update/Remove) только накапливаются в unit of work; в базу
// они попадают при Commit. Чтения выполняются сразу и по умолчанию
// не видят логически удалённые строки.
type Store[T models.SoftDeletable] struct {
	uow *UnitOfWork
	m   Mapper[T]
}

// NewStore создаёт стор для типа записи с соответствующим маппером.
func NewStore[T models.SoftDeletable](uow *UnitOfWork, m Mapper[T]) *Store[T] {
	return &Store[T]{uow: uow, m: m}
}

// Add ставит вставку записи в очередь. CreatedAt и IsDeleted будут
// проставлены на флаше, идентификатор — записан обратно в сущность.
func (s *Store[T]) Add(e T) {
	s.uow.stage(opInsert, func(ctx context.Context, q querier, now time.Time) error {
		e.StampCreated(now)
		return s.insert(ctx, q, e, now)
	})
}

// AddMany ставит в очередь вставку набора записей.
func (s *Store[T]) AddMany(es []T) {
	for _, e := range es {
		s.Add(e)
	}
}

// Update ставит обновление записи в очередь. UpdatedAt проставится на флаше.
func (s *Store[T]) Update(e T) {
	s.uow.stage(opUpdate, func(ctx context.Context, q querier, now time.Time) error {
		e.StampUpdated(now)
		return s.update(ctx, q, e, now)
	})
}

// Remove ставит в очередь логическое удаление: is_deleted = true,
// updated_at = now, физического DELETE не происходит.
func (s *Store[T]) Remove(e T) {
	s.uow.stage(opDelete, func(ctx context.Context, q querier, now time.Time) error {
		e.MarkDeleted(now)
		return s.update(ctx, q, e, now)
	})
}

// RemoveMany ставит в очередь логическое удаление набора записей.
func (s *Store[T]) RemoveMany(es []T) {
	for _, e := range es {
		s.Remove(e)
	}
}

// Find возвращает записи по условию. includeDeleted управляет видимостью
// логически удалённых строк и указывается явно на каждом вызове.
func (s *Store[T]) Find(ctx context.Context, cond Cond, includeDeleted bool) ([]T, error) {
	op := fmt.Sprintf("repository.%s.Find", s.m.Table)

	where := make([]string, 0, 2)
	if cond.Where != "" {
		where = append(where, cond.Where)
	}
	if !includeDeleted {
		where = append(where, "is_deleted = FALSE")
	}
	query := fmt.Sprintf("SELECT id, %s, created_at, updated_at, is_deleted FROM %s",
		strings.Join(s.m.Columns, ", "), s.m.Table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += cond.buildTail()

	rows, err := s.uow.querier().QueryContext(ctx, query, cond.Args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []T
	for rows.Next() {
		e, err := s.m.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetByID возвращает запись по идентификатору. Отсутствующая или логически
// удалённая запись — storage.ErrNotFound.
func (s *Store[T]) GetByID(ctx context.Context, id int64) (T, error) {
	op := fmt.Sprintf("repository.%s.GetByID", s.m.Table)
	var zero T

	query := fmt.Sprintf("SELECT id, %s, created_at, updated_at, is_deleted FROM %s WHERE id = $1 AND is_deleted = FALSE",
		strings.Join(s.m.Columns, ", "), s.m.Table)
	e, err := s.m.Scan(s.uow.querier().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// Exists сообщает, есть ли хотя бы одна неудалённая запись по условию.
func (s *Store[T]) Exists(ctx context.Context, cond Cond) (bool, error) {
	op := fmt.Sprintf("repository.%s.Exists", s.m.Table)

	where := "is_deleted = FALSE"
	if cond.Where != "" {
		where = cond.Where + " AND " + where
	}
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", s.m.Table, where)
	var exists bool
	if err := s.uow.querier().QueryRowContext(ctx, query, cond.Args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

func (s *Store[T]) insert(ctx context.Context, q querier, e T, now time.Time) error {
	columns := strings.Join(s.m.Columns, ", ")
	values := s.m.Values(e)
	n := len(values)
	query := fmt.Sprintf("INSERT INTO %s (%s, created_at, updated_at, is_deleted) VALUES (%s, $%d, NULL, FALSE) RETURNING id",
		s.m.Table, columns, placeholders(1, n), n+1)

	args := append(values, now)
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return err
	}
	e.SetEntityID(id)
	return nil
}

func (s *Store[T]) update(ctx context.Context, q querier, e T, now time.Time) error {
	values := s.m.Values(e)
	sets := make([]string, 0, len(s.m.Columns)+2)
	for i, col := range s.m.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
	}
	n := len(values)
	sets = append(sets,
		fmt.Sprintf("updated_at = $%d", n+1),
		fmt.Sprintf("is_deleted = $%d", n+2),
	)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", s.m.Table, strings.Join(sets, ", "), n+3)

	args := append(values, now, e.Deleted(), e.EntityID())
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// LinkStore — хранилище связующих записей без аудит-полей: device-токены
// и прочие таблицы-связки. Remove для них делает физический DELETE.
// Выбор Store или LinkStore задаётся ограничением типа на этапе компиляции.
type LinkStore[T models.Keyed] struct {
	uow *UnitOfWork
	m   Mapper[T]
}

// NewLinkStore создаёт стор связующих записей.
func NewLinkStore[T models.Keyed](uow *UnitOfWork, m Mapper[T]) *LinkStore[T] {
	return &LinkStore[T]{uow: uow, m: m}
}

// Add ставит вставку записи в очередь.
func (s *LinkStore[T]) Add(e T) {
	s.uow.stage(opInsert, func(ctx context.Context, q querier, _ time.Time) error {
		values := s.m.Values(e)
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
			s.m.Table, strings.Join(s.m.Columns, ", "), placeholders(1, len(values)))
		var id int64
		if err := q.QueryRowContext(ctx, query, values...).Scan(&id); err != nil {
			return err
		}
		e.SetEntityID(id)
		return nil
	})
}

// Remove ставит физическое удаление записи в очередь.
func (s *LinkStore[T]) Remove(e T) {
	s.uow.stage(opDelete, func(ctx context.Context, q querier, _ time.Time) error {
		query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.m.Table)
		_, err := q.ExecContext(ctx, query, e.EntityID())
		return err
	})
}

// Find возвращает записи по условию.
func (s *LinkStore[T]) Find(ctx context.Context, cond Cond) ([]T, error) {
	op := fmt.Sprintf("repository.%s.Find", s.m.Table)

	query := fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(s.m.Columns, ", "), s.m.Table)
	if cond.Where != "" {
		query += " WHERE " + cond.Where
	}
	query += cond.buildTail()

	rows, err := s.uow.querier().QueryContext(ctx, query, cond.Args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []T
	for rows.Next() {
		e, err := s.m.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
