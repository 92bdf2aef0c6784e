package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2026, time.January))
	assert.Equal(t, 28, DaysIn(2026, time.February))
	assert.Equal(t, 29, DaysIn(2028, time.February)) // високосный год
	assert.Equal(t, 30, DaysIn(2026, time.April))
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		month      time.Month
		billingDay int
		want       time.Time
	}{
		{
			name: "обычный день в длинном месяце",
			year: 2026, month: time.March, billingDay: 20,
			want: time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "31-е число прижимается к концу февраля",
			year: 2026, month: time.February, billingDay: 31,
			want: time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "31-е число прижимается к 30 апреля",
			year: 2026, month: time.April, billingDay: 31,
			want: time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "29 февраля в високосном году не прижимается",
			year: 2028, month: time.February, billingDay: 29,
			want: time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDate(tt.year, tt.month, tt.billingDay))
		})
	}
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		name       string
		from       time.Time
		billingDay int
		want       time.Time
	}{
		{
			name:       "день списания впереди в текущем месяце",
			from:       time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC),
			billingDay: 20,
			want:       time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "день списания уже прошёл — следующий месяц",
			from:       time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC),
			billingDay: 10,
			want:       time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "сегодняшняя дата списания считается прошедшей",
			from:       time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
			billingDay: 20,
			want:       time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "31-е число из января ведёт в конец февраля",
			from:       time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC),
			billingDay: 31,
			want:       time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDate(tt.from, tt.billingDay))
		})
	}
}
