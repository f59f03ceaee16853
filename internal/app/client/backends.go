package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/slog"

	"vidshare/internal/app/client/config"
	"vidshare/internal/domain/session"
	"vidshare/internal/domain/upload"
	"vidshare/internal/infrastructure/objectstore"
	"vidshare/internal/infrastructure/sessionstore"
	"vidshare/internal/infrastructure/transfer"
)

// Backends - внешние зависимости приложения
type Backends struct {
	Store        objectstore.Store
	SessionStore session.Store
	// Transferer может быть nil, тогда загрузка недоступна
	Transferer upload.Transferer
	// Closers закрываются в Close в обратном порядке
	Closers []io.Closer
}

// OpenBackends создаёт хранилища и транспорт загрузки по конфигурации
func OpenBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) (Backends, error) {
	var b Backends

	if err := os.MkdirAll(cfg.ConfigDir, 0700); err != nil {
		return b, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	store, err := openObjectStore(ctx, cfg, log)
	if err != nil {
		return b, err
	}
	b.Store = store
	if c, ok := store.(io.Closer); ok {
		b.Closers = append(b.Closers, c)
	}

	sessions, err := openSessionStore(cfg)
	if err != nil {
		b.close(log)
		return Backends{}, err
	}
	b.SessionStore = sessions
	if c, ok := sessions.(io.Closer); ok {
		b.Closers = append(b.Closers, c)
	}

	if cfg.UploadConfigured() {
		t, err := openTransferer(ctx, cfg, log)
		if err != nil {
			b.close(log)
			return Backends{}, err
		}
		b.Transferer = t
	}

	return b, nil
}

func openObjectStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (objectstore.Store, error) {
	sc := cfg.Store

	switch sc.Backend {
	case config.StoreHTTP:
		return objectstore.NewHTTPStore(objectstore.HTTPConfig{
			BaseURL: sc.URL,
			APIKey:  sc.APIKey,
			Timeout: sc.Timeout,
			RPS:     sc.RPS,
		}, log)

	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.SQLitePath), 0700); err != nil {
			return nil, fmt.Errorf("ошибка создания директории базы: %w", err)
		}
		return objectstore.NewSQLiteStore(sc.SQLitePath)

	case config.StorePostgres:
		return objectstore.NewPostgresStore(ctx, objectstore.PostgresConfig{
			DatabaseURI:    sc.DatabaseURI,
			MigrationsPath: sc.MigrationsPath,
		})

	case config.StoreDynamoDB:
		return objectstore.NewDynamoStore(ctx, objectstore.DynamoConfig{
			Table:           sc.DynamoTable,
			Region:          sc.AWS.Region,
			Endpoint:        sc.AWS.Endpoint,
			AccessKeyID:     sc.AWS.AccessKeyID,
			SecretAccessKey: sc.AWS.SecretAccessKey,
		})

	case config.StoreMemory:
		log.Warn("Используется хранилище в памяти, данные не сохранятся между запусками")
		return objectstore.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("неизвестное хранилище объектов %q", sc.Backend)
	}
}

func openSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case config.SessionSQLite:
		return sessionstore.NewSQLiteStore(cfg.Session.DBPath)
	case config.SessionFile, "":
		return sessionstore.NewFileStore(cfg.Session.Dir), nil
	default:
		return nil, fmt.Errorf("неизвестное хранилище сессии %q", cfg.Session.Backend)
	}
}

func openTransferer(ctx context.Context, cfg *config.Config, log *slog.Logger) (upload.Transferer, error) {
	switch cfg.Upload.Backend {
	case config.UploadS3:
		aws := cfg.Store.AWS
		return transfer.NewS3Transferer(ctx, transfer.S3Config{
			Bucket:          cfg.Upload.S3Bucket,
			Region:          aws.Region,
			Endpoint:        aws.Endpoint,
			PublicBaseURL:   cfg.Upload.S3PublicBaseURL,
			AccessKeyID:     aws.AccessKeyID,
			SecretAccessKey: aws.SecretAccessKey,
		}, log)
	default:
		return transfer.NewHTTPTransferer(transfer.HTTPConfig{
			URL:    cfg.Upload.URL,
			APIKey: cfg.Upload.APIKey,
		}, log)
	}
}

func (b Backends) close(log *slog.Logger) error {
	var firstErr error
	for i := len(b.Closers) - 1; i >= 0; i-- {
		if err := b.Closers[i].Close(); err != nil {
			log.Warn("Ошибка закрытия ресурса", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
