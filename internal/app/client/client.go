package client

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"vidshare/internal/app/client/config"
	"vidshare/internal/domain/session"
	"vidshare/internal/domain/upload"
	"vidshare/internal/domain/user"
	"vidshare/internal/domain/video"
)

// App связывает сессию, репозитории и конвейер загрузки для команд CLI
type App struct {
	config   *config.Config
	log      *slog.Logger
	backends Backends

	users    user.Repository
	videos   video.Repository
	sessions *session.Manager
	pipeline *upload.Pipeline
}

// New открывает хранилища по конфигурации и собирает приложение
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	backends, err := OpenBackends(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилищ: %w", err)
	}
	return NewWithBackends(cfg, backends, log), nil
}

// NewWithBackends собирает приложение поверх готовых хранилищ
func NewWithBackends(cfg *config.Config, b Backends, log *slog.Logger) *App {
	users := user.NewRepo(b.Store, user.RepoOptions{
		HashPasswords: cfg.HashPasswords,
		ListLimit:     cfg.Store.ListLimit,
	}, log)
	videos := video.NewRepo(b.Store, users, log, video.WithListLimit(cfg.Store.ListLimit))

	app := &App{
		config:   cfg,
		log:      log,
		backends: b,
		users:    users,
		videos:   videos,
		sessions: session.NewManager(users, b.SessionStore, log),
	}

	if b.Transferer != nil {
		app.pipeline = upload.NewPipeline(b.Transferer, videos, log, upload.WithTimeout(cfg.Upload.Timeout))
	}

	return app
}

// Close освобождает соединения с хранилищами
func (a *App) Close() error {
	return a.backends.close(a.log)
}

// Login выполняет вход или регистрацию
func (a *App) Login(ctx context.Context, creds user.Credentials) (session.LoginResult, error) {
	return a.sessions.Login(ctx, creds)
}

// Restore восстанавливает сессию для экрана view
func (a *App) Restore(ctx context.Context, view session.View) (session.RestoreResult, error) {
	return a.sessions.Restore(ctx, view)
}

// Logout завершает сессию
func (a *App) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

// CurrentSession возвращает активную сессию, восстанавливая её при необходимости
func (a *App) CurrentSession(ctx context.Context) (session.Session, error) {
	if sess, ok := a.sessions.Current(); ok {
		return sess, nil
	}

	result, err := a.sessions.Restore(ctx, "")
	if err != nil {
		return session.Session{}, err
	}
	if !result.Authenticated {
		return session.Session{}, ErrNotAuthenticated
	}
	return result.Session, nil
}

// MyVideos возвращает видео текущего пользователя
func (a *App) MyVideos(ctx context.Context) ([]video.Record, error) {
	sess, err := a.requireRole(ctx, session.RoleRegularUser)
	if err != nil {
		return nil, err
	}
	return a.videos.ListForUser(ctx, sess.UserID)
}

// Users возвращает список пользователей. Только для администратора.
func (a *App) Users(ctx context.Context) ([]user.Record, error) {
	if _, err := a.requireRole(ctx, session.RoleAdministrator); err != nil {
		return nil, err
	}
	return a.videos.ListAllUsers(ctx)
}

// UserVideos возвращает видео выбранного пользователя. Пустой userID выбирает
// первого пользователя из списка. Только для администратора.
func (a *App) UserVideos(ctx context.Context, userID string) (user.Record, []video.Record, error) {
	users, err := a.Users(ctx)
	if err != nil {
		return user.Record{}, nil, err
	}
	if len(users) == 0 {
		return user.Record{}, nil, ErrNoUsers
	}

	selected := users[0]
	if userID != "" {
		found := false
		for _, u := range users {
			if u.ID == userID {
				selected, found = u, true
				break
			}
		}
		if !found {
			return user.Record{}, nil, fmt.Errorf("%w: %s", user.ErrNotFound, userID)
		}
	}

	videos, err := a.videos.ListForUser(ctx, selected.ID)
	if err != nil {
		return user.Record{}, nil, err
	}
	return selected, videos, nil
}

// UploadRequest - параметры загрузки из CLI
type UploadRequest struct {
	Path       string
	Title      string
	OnProgress func(percent int)
}

// StartUpload открывает файл и запускает загрузку от имени текущего пользователя
func (a *App) StartUpload(ctx context.Context, req UploadRequest) (*upload.Transfer, error) {
	if a.pipeline == nil {
		return nil, ErrUploadNotConfigured
	}

	sess, err := a.requireRole(ctx, session.RoleRegularUser)
	if err != nil {
		return nil, err
	}

	src, err := upload.OpenFile(req.Path)
	if err != nil {
		return nil, err
	}

	t, err := a.pipeline.Start(ctx, upload.Request{
		Session:    sess,
		Source:     src,
		Title:      req.Title,
		OnProgress: req.OnProgress,
	})
	if err != nil {
		src.Close()
		return nil, err
	}

	go func() {
		<-t.Done()
		if err := src.Close(); err != nil {
			a.log.Warn("Ошибка закрытия файла", "path", req.Path, "error", err)
		}
	}()

	return t, nil
}

// Upload загружает файл и ждёт завершения
func (a *App) Upload(ctx context.Context, req UploadRequest) (video.Record, error) {
	t, err := a.StartUpload(ctx, req)
	if err != nil {
		return video.Record{}, err
	}
	return t.Wait()
}

// RetryRegistration повторяет регистрацию уже загруженного файла
func (a *App) RetryRegistration(ctx context.Context, title, url string) (video.Record, error) {
	sess, err := a.requireRole(ctx, session.RoleRegularUser)
	if err != nil {
		return video.Record{}, err
	}
	return a.videos.Register(ctx, sess, title, url)
}

func (a *App) requireRole(ctx context.Context, role session.Role) (session.Session, error) {
	sess, err := a.CurrentSession(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if sess.Role != role {
		return session.Session{}, fmt.Errorf("%w: требуется роль %s", ErrForbidden, role)
	}
	return sess, nil
}
