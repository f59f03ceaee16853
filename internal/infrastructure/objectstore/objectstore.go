// Package objectstore даёт единый доступ list/create к именованным коллекциям
// удалённого хранилища объектов.
package objectstore

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultListLimit - потолок выборки для запросов "получить всё и отфильтровать".
// Все запросы верхнего уровня корректны, только пока коллекция не превышает лимит.
const DefaultListLimit = 1000

const (
	CollectionUser  = "user"
	CollectionVideo = "video"
)

// Item - объект коллекции в том виде, в каком его вернуло хранилище
type Item struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
}

// Store - минимальный контракт хранилища объектов
type Store interface {
	List(ctx context.Context, collection string, limit int, newestFirst bool) ([]Item, error)
	Create(ctx context.Context, collection string, data any) (Item, error)
}

// Finder реализуют хранилища, умеющие фильтровать на своей стороне.
// Результат упорядочен от новых к старым.
type Finder interface {
	Find(ctx context.Context, collection string, filter Filter, limit int) ([]Item, error)
}

// Filter - условия равенства по строковым полям верхнего уровня
type Filter map[string]string

// Matches проверяет данные объекта на соответствие фильтру.
func (f Filter) Matches(data json.RawMessage) bool {
	if len(f) == 0 {
		return true
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}

	for key, want := range f {
		got, ok := fields[key].(string)
		if !ok || got != want {
			return false
		}
	}

	return true
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
