package models

// Catalog — запись справочника сервисов: Netflix, Spotify и т.п.
// Справочник заливается миграциями при деплое и почти не меняется,
// поэтому читается через кеш с длинным TTL.
type Catalog struct {
	Entity
	Name             string  `json:"name"`
	LogoURL          *string `json:"logo_url,omitempty"`
	Color            *string `json:"color,omitempty"`
	Category         string  `json:"category"`
	RequiresContract bool    `json:"requires_contract"`

	// Plans загружаются отдельным запросом, в таблице catalogs их нет.
	Plans []*Plan `json:"plans,omitempty"`
}

// Plan — тарифный план сервиса из справочника.
type Plan struct {
	Entity
	CatalogID        int64   `json:"catalog_id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	BillingCycleDays int     `json:"billing_cycle_days"`
}
