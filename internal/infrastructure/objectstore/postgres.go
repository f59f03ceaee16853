package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidshare/internal/infrastructure/migration"
)

// PostgresConfig - параметры хранилища объектов на PostgreSQL
type PostgresConfig struct {
	DatabaseURI    string
	MigrationsPath string
}

// PostgresStore хранит объекты в jsonb-колонке и фильтрует по ним на стороне БД
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	mg := migration.NewMigration(migration.Config{
		DatabaseURI: cfg.DatabaseURI,
		Migrations:  cfg.MigrationsPath,
	}, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string, limit int, newestFirst bool) ([]Item, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, data::text, created_at FROM objects
		 WHERE collection = $1 ORDER BY seq `+order+` LIMIT $2`,
		collection, normalizeLimit(limit))
	if err != nil {
		return nil, transportError("list "+collection, err)
	}

	return collectPostgresItems(collection, rows)
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Item, error) {
	query, args := buildFindQuery(collection, filter, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, transportError("find "+collection, err)
	}

	return collectPostgresItems(collection, rows)
}

// buildFindQuery собирает запрос с парой плейсхолдеров (ключ, значение) на каждое
// поле фильтра. Ключи сортируются, чтобы текст запроса был стабильным.
func buildFindQuery(collection string, filter Filter, limit int) (string, []any) {
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(`SELECT id::text, data::text, created_at FROM objects WHERE collection = $1`)
	args := []any{collection}
	for _, key := range keys {
		args = append(args, key, filter[key])
		sb.WriteString(" AND data ->> $" + strconv.Itoa(len(args)-1) + " = $" + strconv.Itoa(len(args)))
	}
	args = append(args, normalizeLimit(limit))
	sb.WriteString(" ORDER BY seq DESC LIMIT $" + strconv.Itoa(len(args)))

	return sb.String(), args
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data any) (Item, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Item{}, fmt.Errorf("ошибка сериализации объекта: %w", err)
	}

	item := Item{ID: uuid.NewString(), Data: raw}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO objects (id, collection, data) VALUES ($1, $2, $3::jsonb) RETURNING created_at`,
		item.ID, collection, string(raw)).Scan(&item.CreatedAt)
	if err != nil {
		return Item{}, transportError("create "+collection, err)
	}

	return item, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func collectPostgresItems(collection string, rows pgx.Rows) ([]Item, error) {
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item Item
			data string
		)
		if err := rows.Scan(&item.ID, &data, &item.CreatedAt); err != nil {
			return nil, serverError("list "+collection, fmt.Errorf("ошибка сканирования объекта: %w", err))
		}
		item.Data = json.RawMessage(data)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, transportError("list "+collection, err)
	}

	return items, nil
}
