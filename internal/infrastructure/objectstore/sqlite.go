package objectstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore - локальное хранилище объектов на SQLite.
// Фильтрует на своей стороне через json_extract.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS objects (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			collection TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_objects_collection ON objects(collection, seq);
	`)

	return err
}

func (s *SQLiteStore) List(ctx context.Context, collection string, limit int, newestFirst bool) ([]Item, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data, created_at FROM objects WHERE collection = ? ORDER BY seq "+order+" LIMIT ?",
		collection, normalizeLimit(limit))
	if err != nil {
		return nil, transportError("list "+collection, err)
	}
	defer rows.Close()

	return scanSQLiteItems(collection, rows)
}

func (s *SQLiteStore) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Item, error) {
	query := "SELECT id, data, created_at FROM objects WHERE collection = ?"
	args := []interface{}{collection}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		sb.WriteString(" AND json_extract(data, ?) = ?")
		args = append(args, "$."+key, filter[key])
	}
	query += sb.String() + " ORDER BY seq DESC LIMIT ?"
	args = append(args, normalizeLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transportError("find "+collection, err)
	}
	defer rows.Close()

	return scanSQLiteItems(collection, rows)
}

func (s *SQLiteStore) Create(ctx context.Context, collection string, data any) (Item, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Item{}, fmt.Errorf("ошибка сериализации объекта: %w", err)
	}

	item := Item{
		ID:        uuid.NewString(),
		Data:      raw,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO objects (id, collection, data, created_at) VALUES (?, ?, ?, ?)",
		item.ID, collection, string(raw), item.CreatedAt.UnixNano())
	if err != nil {
		return Item{}, transportError("create "+collection, err)
	}

	return item, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteItems(collection string, rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var (
			item      Item
			data      string
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &data, &createdAt); err != nil {
			return nil, serverError("list "+collection, fmt.Errorf("ошибка сканирования объекта: %w", err))
		}
		item.Data = json.RawMessage(data)
		item.CreatedAt = time.Unix(0, createdAt).UTC()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, transportError("list "+collection, err)
	}

	return items, nil
}
