package models

import (
	"encoding/json"
	"time"
)

// UserSubscription — подписка пользователя: либо привязанная к записи
// справочника (CatalogID != nil), либо полностью кастомная.
// BillingDay — число месяца 1..31; если в месяце меньше дней, датой списания
// считается последний день месяца (см. пакет lib/billing).
type UserSubscription struct {
	Entity
	UserUID       string          `json:"user_uid"`
	CatalogID     *int64          `json:"catalog_id,omitempty"`
	Name          string          `json:"name"`
	Price         float64         `json:"price"`
	Currency      string          `json:"currency"`
	BillingDay    int             `json:"billing_day"`
	Category      string          `json:"category"`
	IsActive      bool            `json:"is_active"`
	ContractStart *time.Time      `json:"contract_start,omitempty"`
	ContractEnd   *time.Time      `json:"contract_end,omitempty"`
	SharedWith    []string        `json:"shared_with,omitempty"`
	UsageHistory  json.RawMessage `json:"usage_history,omitempty"`
}

// DummySubscription используется для приёма данных подписки из JSON-запроса
// до валидации и преобразования в UserSubscription. Даты приходят строками
// в формате 02-01-2006.
type DummySubscription struct {
	CatalogID     *int64   `json:"catalog_id,omitempty" validate:"omitempty,gt=0"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	Currency      string   `json:"currency" validate:"required,len=3"`
	BillingDay    int      `json:"billing_day" validate:"required,min=1,max=31"`
	Category      string   `json:"category" validate:"omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	ContractStart string   `json:"contract_start,omitempty" validate:"omitempty"`
	ContractEnd   string   `json:"contract_end,omitempty" validate:"omitempty"`
	SharedWith    []string `json:"shared_with,omitempty"`
}

// SubscriptionView — подписка, дополненная ближайшей датой списания,
// отдаётся в списках.
type SubscriptionView struct {
	*UserSubscription
	NextBillingDate time.Time `json:"next_billing_date"`
}
