package repository

import (
	"context"
	"database/sql"

	"github.com/subtrack-app/subtrack-backend/internal/models"
)

var catalogMapper = Mapper[*models.Catalog]{
	Table:   "catalogs",
	Columns: []string{"name", "logo_url", "color", "category", "requires_contract"},
	Values: func(c *models.Catalog) []any {
		return []any{c.Name, c.LogoURL, c.Color, c.Category, c.RequiresContract}
	},
	Scan: func(row RowScanner) (*models.Catalog, error) {
		var c models.Catalog
		var updated sql.NullTime
		if err := row.Scan(&c.ID, &c.Name, &c.LogoURL, &c.Color, &c.Category,
			&c.RequiresContract, &c.CreatedAt, &updated, &c.IsDeleted); err != nil {
			return nil, err
		}
		if updated.Valid {
			c.UpdatedAt = &updated.Time
		}
		return &c, nil
	},
}

var planMapper = Mapper[*models.Plan]{
	Table:   "plans",
	Columns: []string{"catalog_id", "name", "price", "currency", "billing_cycle_days"},
	Values: func(p *models.Plan) []any {
		return []any{p.CatalogID, p.Name, p.Price, p.Currency, p.BillingCycleDays}
	},
	Scan: func(row RowScanner) (*models.Plan, error) {
		var p models.Plan
		var updated sql.NullTime
		if err := row.Scan(&p.ID, &p.CatalogID, &p.Name, &p.Price, &p.Currency,
			&p.BillingCycleDays, &p.CreatedAt, &updated, &p.IsDeleted); err != nil {
			return nil, err
		}
		if updated.Valid {
			p.UpdatedAt = &updated.Time
		}
		return &p, nil
	},
}

// Catalogs — доступ к справочнику сервисов и тарифных планов.
// Справочник read-mostly: мутаций здесь нет, данные заливаются миграциями.
type Catalogs struct {
	p *Provider
}

// NewCatalogs создаёт репозиторий справочника.
func NewCatalogs(p *Provider) *Catalogs {
	return &Catalogs{p: p}
}

// ListAll возвращает все неудалённые записи справочника.
func (r *Catalogs) ListAll(ctx context.Context) ([]*models.Catalog, error) {
	st := NewStore(r.p.NewUnitOfWork(), catalogMapper)
	return st.Find(ctx, Cond{OrderBy: "name"}, false)
}

// GetByID возвращает запись справочника вместе с её тарифными планами.
func (r *Catalogs) GetByID(ctx context.Context, id int64) (*models.Catalog, error) {
	uow := r.p.NewUnitOfWork()
	catalog, err := NewStore(uow, catalogMapper).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plans, err := NewStore(uow, planMapper).Find(ctx,
		Cond{Where: "catalog_id = $1", Args: []any{id}, OrderBy: "price"}, false)
	if err != nil {
		return nil, err
	}
	catalog.Plans = plans
	return catalog, nil
}

// ListPlans возвращает тарифные планы сервиса.
func (r *Catalogs) ListPlans(ctx context.Context, catalogID int64) ([]*models.Plan, error) {
	st := NewStore(r.p.NewUnitOfWork(), planMapper)
	return st.Find(ctx, Cond{Where: "catalog_id = $1", Args: []any{catalogID}, OrderBy: "price"}, false)
}
