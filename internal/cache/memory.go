package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
	priority  Priority
}

// Memory — внутрипроцессный кеш: общая таблица ключ/значение с абсолютным
// сроком жизни записей. Создаётся один раз на старте процесса и передаётся
// через конструкторы сервисов. Потокобезопасен; гонка двух одновременных
// промахов по одному ключу разрешается как last write wins.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// MemoryOption настраивает Memory.
type MemoryOption func(*Memory)

// WithMaxEntries ограничивает размер кеша; 0 — без ограничения.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) { m.maxEntries = n }
}

// WithNowFunc подменяет источник времени. Используется в тестах
// для проверки границы TTL.
func WithNowFunc(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory создаёт внутрипроцессный кеш.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get возвращает живое значение по ключу. Запись с истёкшим TTL
// равносильна отсутствующей и удаляется лениво.
func (m *Memory) Get(key string, result any) (bool, error) {
	const op = "cache.Memory.Get"

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// перепроверка: запись могли успеть перезаписать свежим значением
		if cur, ok := m.entries[key]; ok && !m.now().Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение с обычным приоритетом.
func (m *Memory) Set(key string, value any, expiration time.Duration) error {
	return m.SetWithPriority(key, value, expiration, PriorityNormal)
}

// SetWithPriority сохраняет значение целиком: записи не обновляются частично,
// только перезаписываются.
func (m *Memory) SetWithPriority(key string, value any, expiration time.Duration, priority Priority) error {
	const op = "cache.Memory.Set"

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		if _, exists := m.entries[key]; !exists {
			m.evictLocked()
		}
	}
	m.entries[key] = memoryEntry{
		payload:   payload,
		expiresAt: m.now().Add(expiration),
		priority:  priority,
	}
	return nil
}

// Invalidate удаляет значение из кеша по ключу.
func (m *Memory) Invalidate(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// evictLocked освобождает одно место: сначала любая истёкшая запись,
// иначе запись с наименьшим приоритетом и ближайшим сроком жизни.
func (m *Memory) evictLocked() {
	now := m.now()
	var victim string
	var victimEntry memoryEntry
	found := false
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			return
		}
		if !found ||
			entry.priority < victimEntry.priority ||
			(entry.priority == victimEntry.priority && entry.expiresAt.Before(victimEntry.expiresAt)) {
			victim, victimEntry, found = key, entry, true
		}
	}
	if found {
		delete(m.entries, victim)
	}
}
