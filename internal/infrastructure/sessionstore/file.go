package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vidshare/internal/domain/session"
)

const (
	sessionFileName    = "session.json"
	sessionPermissions = 0600
)

// FileStore хранит сессию JSON-файлом в каталоге конфигурации
type FileStore struct {
	path string
}

// NewFileStore создаёт хранилище в каталоге dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, sessionFileName)}
}

// Path возвращает путь к файлу сессии
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(_ context.Context) (session.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return session.Session{}, session.ErrNoSession
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("ошибка чтения сессии: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, fmt.Errorf("%w: %w", session.ErrCorruptSession, err)
	}

	return sess, nil
}

func (f *FileStore) Save(_ context.Context, sess session.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("ошибка создания каталога сессии: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить половину JSON
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, sessionPermissions); err != nil {
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}

	return nil
}

func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	return nil
}
