package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"vidshare/internal/domain/user"
)

// RegistrationNotifyDelay - пауза перед переходом на главный экран после регистрации,
// чтобы пользователь успел увидеть уведомление
const RegistrationNotifyDelay = time.Second

// LoginResult - итог успешного входа
type LoginResult struct {
	Session Session
	Next    View
	// Created - учётная запись создана при этом входе
	Created bool
	// NotifyDelay - сколько показывать уведомление перед переходом на Next
	NotifyDelay time.Duration
}

// RestoreResult - итог восстановления сессии при запуске
type RestoreResult struct {
	Session       Session
	Authenticated bool
	// Redirect - экран для перехода, пусто если текущий экран подходит
	Redirect View
}

// Manager ведёт жизненный цикл сессии: вход, восстановление, выход.
// Держит единственный на процесс слот активной сессии.
type Manager struct {
	users     user.Repository
	validator user.Validator
	store     Store
	log       *slog.Logger

	mu      sync.RWMutex
	state   State
	current *Session
}

func NewManager(users user.Repository, store Store, log *slog.Logger) *Manager {
	if store == nil {
		panic("session: store must not be nil")
	}
	return &Manager{
		users:     users,
		validator: user.NewCredentialsValidator(),
		store:     store,
		log:       log,
	}
}

// State возвращает текущее состояние
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current возвращает активную сессию
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Login выполняет вход. Учётная запись администратора проверяется локально
// до обращения к хранилищу; неизвестная пара (username, studentId) регистрируется.
//
// Попытка входа завершает предыдущую сессию: сохранённая сессия удаляется
// до обращения к хранилищу, при неудаче клиент остаётся без сессии.
//
// Проверка "найти, затем создать" не атомарна: два клиента могут одновременно
// создать две записи с одной парой. Хранилище не даёт операции compare-and-set.
func (m *Manager) Login(ctx context.Context, creds user.Credentials) (LoginResult, error) {
	creds = creds.Normalize()
	if err := m.validator.Validate(creds); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := m.begin(ctx); err != nil {
		return LoginResult{}, err
	}

	if creds.IsAdmin() {
		sess := Session{
			Username:  creds.Username,
			StudentID: creds.StudentID,
			Role:      RoleAdministrator,
		}
		if err := m.establish(ctx, sess); err != nil {
			return LoginResult{}, err
		}
		m.log.Info("Вход администратора выполнен")
		return LoginResult{Session: sess, Next: ViewAdmin}, nil
	}

	// Пара администратора с другим паролем не регистрируется как обычный пользователь
	if user.IsReservedIdentity(creds.Username, creds.StudentID) {
		m.setState(StateUnauthenticated, nil)
		m.log.Warn("Неверный пароль администратора")
		return LoginResult{}, ErrInvalidCredentials
	}

	rec, err := m.users.FindByIdentity(ctx, creds.Username, creds.StudentID)
	switch {
	case err == nil:
		if !user.PasswordMatches(rec.Password, creds.Password) {
			m.setState(StateUnauthenticated, nil)
			m.log.Info("Неверный пароль", "username", creds.Username, "student_id", creds.StudentID)
			return LoginResult{}, ErrInvalidCredentials
		}

		sess := regularSession(rec)
		if err := m.establish(ctx, sess); err != nil {
			return LoginResult{}, err
		}
		m.log.Info("Вход выполнен успешно", "username", rec.Username, "user_id", rec.ID)
		return LoginResult{Session: sess, Next: ViewHome}, nil

	case errors.Is(err, user.ErrNotFound):
		created, err := m.users.Create(ctx, creds)
		if err != nil {
			m.setState(StateUnauthenticated, nil)
			m.log.Error("Ошибка регистрации пользователя", "username", creds.Username, "error", err)
			return LoginResult{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}

		sess := regularSession(created)
		if err := m.establish(ctx, sess); err != nil {
			return LoginResult{}, err
		}
		m.log.Info("Пользователь зарегистрирован", "username", created.Username, "user_id", created.ID)
		return LoginResult{
			Session:     sess,
			Next:        ViewHome,
			Created:     true,
			NotifyDelay: RegistrationNotifyDelay,
		}, nil

	default:
		m.setState(StateUnauthenticated, nil)
		m.log.Error("Ошибка поиска пользователя", "username", creds.Username, "error", err)
		return LoginResult{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
}

// Restore читает сохранённую сессию при запуске. current - экран, который
// собирается показать клиент; при несовпадении роли возвращается Redirect.
func (m *Manager) Restore(ctx context.Context, current View) (RestoreResult, error) {
	sess, err := m.store.Load(ctx)
	if err == nil {
		if verr := sess.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", ErrCorruptSession, verr)
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrNoSession):
		m.setState(StateUnauthenticated, nil)
		return RestoreResult{Redirect: redirectFrom(current, ViewLogin)}, nil
	case errors.Is(err, ErrCorruptSession):
		m.log.Warn("Сохранённая сессия повреждена, удаляем", "error", err)
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.log.Warn("Не удалось удалить повреждённую сессию", "error", cerr)
		}
		m.setState(StateUnauthenticated, nil)
		return RestoreResult{Redirect: redirectFrom(current, ViewLogin)}, nil
	default:
		return RestoreResult{}, fmt.Errorf("ошибка чтения сессии: %w", err)
	}

	m.setState(StateAuthenticated, &sess)

	result := RestoreResult{Session: sess, Authenticated: true}
	if current != ViewLogin && current != "" {
		result.Redirect = redirectFrom(current, sess.HomeView())
	}

	return result, nil
}

// Logout удаляет сохранённую сессию. Слот в памяти очищается в любом случае.
func (m *Manager) Logout(ctx context.Context) error {
	m.setState(StateUnauthenticated, nil)

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}

	m.log.Info("Выход выполнен")
	return nil
}

func (m *Manager) begin(ctx context.Context) error {
	m.setState(StateAuthenticating, nil)
	if err := m.store.Clear(ctx); err != nil {
		m.setState(StateUnauthenticated, nil)
		return fmt.Errorf("%w: ошибка удаления прежней сессии: %w", ErrLoginFailed, err)
	}
	return nil
}

func (m *Manager) establish(ctx context.Context, sess Session) error {
	if err := m.store.Save(ctx, sess); err != nil {
		m.setState(StateUnauthenticated, nil)
		return fmt.Errorf("%w: ошибка сохранения сессии: %w", ErrLoginFailed, err)
	}
	m.setState(StateAuthenticated, &sess)
	return nil
}

func (m *Manager) setState(state State, sess *Session) {
	m.mu.Lock()
	m.state = state
	m.current = sess
	m.mu.Unlock()
}

func regularSession(rec user.Record) Session {
	return Session{
		UserID:    rec.ID,
		Username:  rec.Username,
		StudentID: rec.StudentID,
		Role:      RoleRegularUser,
	}
}

func redirectFrom(current, target View) View {
	if current == target {
		return ""
	}
	return target
}
