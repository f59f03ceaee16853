package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"vidshare/internal/domain/session"
	"vidshare/internal/domain/user"
	"vidshare/internal/infrastructure/objectstore"
)

type Repository interface {
	// ListForUser возвращает видео пользователя в порядке хранилища (новые первыми)
	ListForUser(ctx context.Context, userID string) ([]Record, error)
	// ListAllUsers возвращает всех пользователей, кроме администратора
	ListAllUsers(ctx context.Context) ([]user.Record, error)
	// Register сохраняет запись о загруженном видео от имени сессии
	Register(ctx context.Context, sess session.Session, title, url string) (Record, error)
}

// Option настраивает репозиторий
type Option func(*repository)

// WithClock подменяет источник времени для UploadDate
func WithClock(now func() time.Time) Option {
	return func(r *repository) {
		r.now = now
	}
}

// WithListLimit задаёт потолок выборки коллекции
func WithListLimit(limit int) Option {
	return func(r *repository) {
		r.limit = limit
	}
}

func NewRepo(store objectstore.Store, users user.Repository, log *slog.Logger, opts ...Option) Repository {
	r := &repository{
		users: users,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.videos = objectstore.NewCollection[Record](store, objectstore.CollectionVideo, r.limit)
	return r
}

type repository struct {
	videos *objectstore.Collection[Record]
	users  user.Repository
	log    *slog.Logger
	now    func() time.Time
	limit  int
}

func (r *repository) ListForUser(ctx context.Context, userID string) ([]Record, error) {
	if userID == "" {
		return nil, ErrNoOwner
	}

	found, err := r.videos.Find(ctx, objectstore.Filter{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("список видео пользователя: %w", err)
	}

	records := make([]Record, 0, len(found))
	for _, obj := range found {
		records = append(records, toRecord(obj))
	}

	r.log.Debug("Получен список видео", "user_id", userID, "count", len(records))
	return records, nil
}

func (r *repository) ListAllUsers(ctx context.Context) ([]user.Record, error) {
	all, err := r.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("список пользователей: %w", err)
	}

	users := make([]user.Record, 0, len(all))
	for _, u := range all {
		if user.IsReservedIdentity(u.Username, u.StudentID) {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *repository) Register(ctx context.Context, sess session.Session, title, url string) (Record, error) {
	if sess.UserID == "" {
		return Record{}, ErrNoOwner
	}

	title = strings.TrimSpace(title)
	if title == "" || url == "" {
		return Record{}, fmt.Errorf("%w: название и адрес обязательны", ErrInvalidInput)
	}

	created, err := r.videos.Create(ctx, Record{
		UserID:     sess.UserID,
		Username:   sess.Username,
		StudentID:  sess.StudentID,
		Title:      title,
		URL:        url,
		UploadDate: r.now().UTC(),
	})
	if err != nil {
		r.log.Error("Ошибка сохранения видео", "user_id", sess.UserID, "url", url, "error", err)
		return Record{}, fmt.Errorf("сохранение видео: %w", err)
	}

	rec := toRecord(created)
	r.log.Info("Видео зарегистрировано", "video_id", rec.ID, "user_id", rec.UserID, "title", rec.Title)
	return rec, nil
}

func toRecord(obj objectstore.Object[Record]) Record {
	rec := obj.Data
	rec.ID = obj.ID
	return rec
}
