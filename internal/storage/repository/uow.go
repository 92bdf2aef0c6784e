package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/subtrack-app/subtrack-backend/internal/lib/clock"
)

// querier — общий интерфейс *sql.DB и *sql.Tx: чтения внутри открытой
// явной транзакции видят её незафиксированные изменения.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type opKind string

const (
	opInsert opKind = "insert"
	opUpdate opKind = "update"
	opDelete opKind = "delete"
)

type stagedOp struct {
	kind  opKind
	apply func(ctx context.Context, q querier, now time.Time) error
}

// UnitOfWork накапливает изменения сторов и фиксирует их одной транзакцией.
// До Commit ни одна мутация не попадает в базу. Аудит-штампы (created_at,
// updated_at, is_deleted) проставляются на флаше по инжектированным часам,
// вызывающий код подделать их не может.
//
// Экземпляр не потокобезопасен: один unit of work на одну логическую
// операцию/запрос.
type UnitOfWork struct {
	db     *sql.DB
	clk    clock.Clock
	staged []stagedOp
	tx     *sql.Tx
}

// NewUnitOfWork создаёт unit of work поверх подключения и часов.
func NewUnitOfWork(db *sql.DB, clk clock.Clock) *UnitOfWork {
	return &UnitOfWork{db: db, clk: clk}
}

func (u *UnitOfWork) stage(kind opKind, apply func(ctx context.Context, q querier, now time.Time) error) {
	u.staged = append(u.staged, stagedOp{kind: kind, apply: apply})
}

func (u *UnitOfWork) querier() querier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// Pending возвращает число незафиксированных изменений.
func (u *UnitOfWork) Pending() int { return len(u.staged) }

// Commit записывает все накопленные изменения атомарно: либо ложатся все,
// либо ни одно. При открытой явной транзакции изменения пишутся в неё,
// а фиксирует их CommitTransaction. При ошибке накопленные изменения
// сохраняются, чтобы вызывающий мог повторить или откатить транзакцию.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	const op = "repository.Commit"
	if len(u.staged) == 0 {
		return nil
	}
	now := u.clk.Now().UTC()

	if u.tx != nil {
		if err := u.flush(ctx, u.tx, now); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		u.staged = nil
		return nil
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := u.flush(ctx, tx, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	u.staged = nil
	return nil
}

func (u *UnitOfWork) flush(ctx context.Context, q querier, now time.Time) error {
	for _, staged := range u.staged {
		if err := staged.apply(ctx, q, now); err != nil {
			return fmt.Errorf("%s: %w", staged.kind, err)
		}
	}
	return nil
}

// BeginTransaction открывает явную транзакцию для многошаговых операций,
// охватывающих несколько Commit. Повторный вызов при открытой транзакции —
// no-op: на unit of work не бывает больше одной активной транзакции.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	const op = "repository.BeginTransaction"
	if u.tx != nil {
		return nil
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u.tx = tx
	return nil
}

// CommitTransaction фиксирует явную транзакцию. При ошибке фиксации
// выполняется автоматический откат, после чего ошибка возвращается.
// Хэндл транзакции освобождается в любом исходе.
func (u *UnitOfWork) CommitTransaction() error {
	const op = "repository.CommitTransaction"
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RollbackTransaction откатывает явную транзакцию и освобождает хэндл.
// Вызов без открытой транзакции — no-op.
func (u *UnitOfWork) RollbackTransaction() error {
	const op = "repository.RollbackTransaction"
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Provider выдаёт unit of work на каждую логическую операцию.
type Provider struct {
	db  *sql.DB
	clk clock.Clock
}

// NewProvider создаёт Provider поверх подключения и часов.
func NewProvider(db *sql.DB, clk clock.Clock) *Provider {
	return &Provider{db: db, clk: clk}
}

// NewUnitOfWork возвращает свежий unit of work.
func (p *Provider) NewUnitOfWork() *UnitOfWork {
	return NewUnitOfWork(p.db, p.clk)
}
