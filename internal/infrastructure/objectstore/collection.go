package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Object - типизированный объект коллекции
type Object[T any] struct {
	ID   string
	Data T
}

// Collection - типизированная обёртка над Store для одной коллекции
type Collection[T any] struct {
	store Store
	name  string
	limit int
}

// NewCollection создаёт доступ к коллекции name. limit <= 0 означает DefaultListLimit.
func NewCollection[T any](store Store, name string, limit int) *Collection[T] {
	return &Collection[T]{
		store: store,
		name:  name,
		limit: normalizeLimit(limit),
	}
}

// List возвращает до limit объектов коллекции
func (c *Collection[T]) List(ctx context.Context, limit int, newestFirst bool) ([]Object[T], error) {
	items, err := c.store.List(ctx, c.name, limit, newestFirst)
	if err != nil {
		return nil, err
	}
	return decodeItems[T](c.name, items)
}

// Create добавляет объект, идентификатор назначает хранилище
func (c *Collection[T]) Create(ctx context.Context, data T) (Object[T], error) {
	item, err := c.store.Create(ctx, c.name, data)
	if err != nil {
		return Object[T]{}, err
	}

	var out T
	if len(item.Data) == 0 {
		return Object[T]{ID: item.ID, Data: data}, nil
	}
	if err := json.Unmarshal(item.Data, &out); err != nil {
		return Object[T]{}, serverError("create "+c.name, fmt.Errorf("разбор объекта %s: %w", item.ID, err))
	}

	return Object[T]{ID: item.ID, Data: out}, nil
}

// Find отбирает объекты по фильтру. Если хранилище не умеет фильтровать само,
// выбирается до limit новейших объектов и фильтр применяется на клиенте.
func (c *Collection[T]) Find(ctx context.Context, filter Filter) ([]Object[T], error) {
	if finder, ok := c.store.(Finder); ok {
		items, err := finder.Find(ctx, c.name, filter, c.limit)
		if err != nil {
			return nil, err
		}
		return decodeItems[T](c.name, items)
	}

	items, err := c.store.List(ctx, c.name, c.limit, true)
	if err != nil {
		return nil, err
	}

	matched := make([]Item, 0, len(items))
	for _, item := range items {
		if filter.Matches(item.Data) {
			matched = append(matched, item)
		}
	}

	return decodeItems[T](c.name, matched)
}

// All возвращает до limit новейших объектов коллекции
func (c *Collection[T]) All(ctx context.Context) ([]Object[T], error) {
	return c.List(ctx, c.limit, true)
}

func decodeItems[T any](collection string, items []Item) ([]Object[T], error) {
	objects := make([]Object[T], 0, len(items))
	for _, item := range items {
		var data T
		if err := json.Unmarshal(item.Data, &data); err != nil {
			return nil, serverError("list "+collection, fmt.Errorf("разбор объекта %s: %w", item.ID, err))
		}
		objects = append(objects, Object[T]{ID: item.ID, Data: data})
	}
	return objects, nil
}
