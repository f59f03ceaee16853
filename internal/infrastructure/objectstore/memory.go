package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore - хранилище объектов в памяти процесса (тесты, пробные запуски).
// Фильтрация на стороне хранилища не поддерживается.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Item),
	}
}

func (m *MemoryStore) List(ctx context.Context, collection string, limit int, newestFirst bool) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("list "+collection, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.collections[collection]
	limit = normalizeLimit(limit)

	items := make([]Item, 0, min(limit, len(stored)))
	for i := range stored {
		idx := i
		if newestFirst {
			idx = len(stored) - 1 - i
		}
		if len(items) == limit {
			break
		}
		items = append(items, stored[idx])
	}

	return items, nil
}

func (m *MemoryStore) Create(ctx context.Context, collection string, data any) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, transportError("create "+collection, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Item{}, fmt.Errorf("ошибка сериализации объекта: %w", err)
	}

	item := Item{
		ID:        uuid.NewString(),
		Data:      raw,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], item)
	m.mu.Unlock()

	return item, nil
}

// Count возвращает число объектов в коллекции
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}
