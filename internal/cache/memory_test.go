package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	m := NewMemory()

	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	require.NoError(t, m.Set("subscription:1", payload{Name: "Netflix", Price: 15.99}, time.Minute))

	var got payload
	found, err := m.Get("subscription:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Netflix", got.Name)
	assert.Equal(t, 15.99, got.Price)

	found, err = m.Get("subscription:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Invalidate(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Set("key", "value", time.Minute))
	require.NoError(t, m.Invalidate("key"))

	var got string
	found, err := m.Get("key", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// Инвалидация отсутствующего ключа не ошибка
	assert.NoError(t, m.Invalidate("missing"))
}

func TestMemory_TTLBoundary(t *testing.T) {
	base := time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC)
	now := base
	m := NewMemory(WithNowFunc(func() time.Time { return now }))

	require.NoError(t, m.Set("key", "value", time.Minute))

	var got string

	// За мгновение до истечения запись ещё жива
	now = base.Add(time.Minute - time.Nanosecond)
	found, err := m.Get("key", &got)
	require.NoError(t, err)
	assert.True(t, found)

	// Ровно в момент истечения запись равносильна отсутствующей
	now = base.Add(time.Minute)
	found, err = m.Get("key", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_OverwriteResetsTTL(t *testing.T) {
	base := time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC)
	now := base
	m := NewMemory(WithNowFunc(func() time.Time { return now }))

	require.NoError(t, m.Set("key", "old", time.Minute))

	now = base.Add(50 * time.Second)
	require.NoError(t, m.Set("key", "new", time.Minute))

	// Старое окно истекло бы, но перезапись открыла новое
	now = base.Add(90 * time.Second)
	var got string
	found, err := m.Get("key", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "new", got)
}

func TestMemory_EvictionPrefersExpiredThenLowPriority(t *testing.T) {
	base := time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC)
	now := base
	m := NewMemory(WithMaxEntries(2), WithNowFunc(func() time.Time { return now }))

	require.NoError(t, m.Set("expired", "v", time.Second))
	require.NoError(t, m.SetWithPriority("rates", "v", time.Hour, PriorityHigh))

	// Истёкшая запись уходит первой
	now = base.Add(time.Minute)
	require.NoError(t, m.Set("normal", "v", time.Hour))

	var got string
	found, _ := m.Get("rates", &got)
	assert.True(t, found, "high priority entry must survive")
	found, _ = m.Get("expired", &got)
	assert.False(t, found)

	// Дальше вытесняется запись с обычным приоритетом
	require.NoError(t, m.Set("another", "v", time.Hour))
	found, _ = m.Get("rates", &got)
	assert.True(t, found, "high priority entry must survive over normal")
	found, _ = m.Get("normal", &got)
	assert.False(t, found)
}
