package user

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"vidshare/internal/infrastructure/objectstore"
)

type Repository interface {
	// FindByIdentity ищет запись по паре (username, studentId)
	FindByIdentity(ctx context.Context, username, studentID string) (Record, error)
	Create(ctx context.Context, creds Credentials) (Record, error)
	List(ctx context.Context) ([]Record, error)
}

// RepoOptions - настройки репозитория пользователей
type RepoOptions struct {
	// HashPasswords включает хранение bcrypt-хэшей вместо открытого текста
	HashPasswords bool
	// ListLimit - потолок выборки коллекции, 0 - objectstore.DefaultListLimit
	ListLimit int
}

func NewRepo(store objectstore.Store, opts RepoOptions, log *slog.Logger) Repository {
	return &repository{
		users: objectstore.NewCollection[Record](store, objectstore.CollectionUser, opts.ListLimit),
		opts:  opts,
		log:   log,
	}
}

type repository struct {
	users *objectstore.Collection[Record]
	opts  RepoOptions
	log   *slog.Logger
}

func (r *repository) FindByIdentity(ctx context.Context, username, studentID string) (Record, error) {
	found, err := r.users.Find(ctx, objectstore.Filter{
		"username":  username,
		"studentId": studentID,
	})
	if err != nil {
		return Record{}, err
	}

	if len(found) == 0 {
		return Record{}, ErrNotFound
	}
	if len(found) > 1 {
		// Возможна гонка регистрации из двух клиентов: берём самую новую запись
		r.log.Warn("Найдено несколько пользователей с одинаковыми данными",
			"username", username,
			"student_id", studentID,
			"count", len(found),
		)
	}

	return toRecord(found[0]), nil
}

func (r *repository) Create(ctx context.Context, creds Credentials) (Record, error) {
	password := creds.Password
	if r.opts.HashPasswords {
		hash, err := HashPassword(password)
		if err != nil {
			return Record{}, err
		}
		password = hash
	}

	created, err := r.users.Create(ctx, Record{
		Username:  creds.Username,
		StudentID: creds.StudentID,
		Password:  password,
	})
	if err != nil {
		return Record{}, fmt.Errorf("создание пользователя: %w", err)
	}

	return toRecord(created), nil
}

func (r *repository) List(ctx context.Context) ([]Record, error) {
	objects, err := r.users.All(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		records = append(records, toRecord(obj))
	}
	return records, nil
}

func toRecord(obj objectstore.Object[Record]) Record {
	rec := obj.Data
	rec.ID = obj.ID
	return rec
}
