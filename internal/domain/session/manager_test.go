package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"vidshare/internal/domain/user"
	"vidshare/internal/infrastructure/objectstore"
)

// countingStore считает обращения к хранилищу объектов
type countingStore struct {
	objectstore.Store
	calls atomic.Int32
}

func (c *countingStore) List(ctx context.Context, collection string, limit int, newestFirst bool) ([]objectstore.Item, error) {
	c.calls.Add(1)
	return c.Store.List(ctx, collection, limit, newestFirst)
}

func (c *countingStore) Create(ctx context.Context, collection string, data any) (objectstore.Item, error) {
	c.calls.Add(1)
	return c.Store.Create(ctx, collection, data)
}

// MockUserRepository is a mock implementation of user.Repository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIdentity(ctx context.Context, username, studentID string) (user.Record, error) {
	args := m.Called(ctx, username, studentID)
	return args.Get(0).(user.Record), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, creds user.Credentials) (user.Record, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(user.Record), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]user.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]user.Record), args.Error(1)
}

// failingStore - хранилище сессии, которое не может ничего сохранить
type failingStore struct {
	MemoryStore
	err error
}

func (f *failingStore) Save(context.Context, Session) error { return f.err }
func (f *failingStore) Clear(context.Context) error         { return f.err }

type fixture struct {
	objects  *objectstore.MemoryStore
	counting *countingStore
	store    *MemoryStore
	manager  *Manager
}

func newFixture() *fixture {
	objects := objectstore.NewMemoryStore()
	counting := &countingStore{Store: objects}
	store := NewMemoryStore()
	users := user.NewRepo(counting, user.RepoOptions{}, slog.Default())

	return &fixture{
		objects:  objects,
		counting: counting,
		store:    store,
		manager:  NewManager(users, store, slog.Default()),
	}
}

func TestManager_Login_RegistersNewUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, ViewHome, result.Next)
	assert.Equal(t, RegistrationNotifyDelay, result.NotifyDelay)
	assert.Equal(t, RoleRegularUser, result.Session.Role)
	assert.NotEmpty(t, result.Session.UserID)
	assert.Equal(t, 1, f.objects.Count(objectstore.CollectionUser))
	assert.Equal(t, StateAuthenticated, f.manager.State())

	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Session, persisted)
}

func TestManager_Login_ExistingUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	creds := user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"}

	first, err := f.manager.Login(ctx, creds)
	require.NoError(t, err)
	require.NoError(t, f.manager.Logout(ctx))

	second, err := f.manager.Login(ctx, creds)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Zero(t, second.NotifyDelay)
	assert.Equal(t, first.Session.UserID, second.Session.UserID)
	assert.Equal(t, 1, f.objects.Count(objectstore.CollectionUser))
}

func TestManager_Login_WrongPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, f.manager.Logout(ctx))

	_, err = f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "PW"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateUnauthenticated, f.manager.State())
	assert.Equal(t, 1, f.objects.Count(objectstore.CollectionUser))

	_, err = f.store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Login_Admin(t *testing.T) {
	f := newFixture()

	result, err := f.manager.Login(context.Background(), user.Credentials{
		Username:  user.AdminUsername,
		StudentID: user.AdminStudentID,
		Password:  user.AdminPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, RoleAdministrator, result.Session.Role)
	assert.Empty(t, result.Session.UserID)
	assert.Equal(t, ViewAdmin, result.Next)
	assert.Equal(t, int32(0), f.counting.calls.Load(), "вход администратора не должен обращаться к хранилищу")

	current, ok := f.manager.Current()
	require.True(t, ok)
	assert.True(t, current.IsAdmin())
}

func TestManager_Login_Validation(t *testing.T) {
	tests := []struct {
		name  string
		creds user.Credentials
	}{
		{name: "empty username", creds: user.Credentials{StudentID: "1234", Password: "pw"}},
		{name: "empty password", creds: user.Credentials{Username: "alice", StudentID: "1234"}},
		{name: "short student id", creds: user.Credentials{Username: "alice", StudentID: "12", Password: "pw"}},
		{name: "admin with short student id", creds: user.Credentials{Username: "admin", StudentID: "000", Password: "adminstrator"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.manager.Login(context.Background(), tt.creds)

			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, user.ErrInvalidInput)
			assert.Equal(t, int32(0), f.counting.calls.Load())
			assert.Equal(t, StateUnauthenticated, f.manager.State())
		})
	}
}

func TestManager_Login_StoreFailures(t *testing.T) {
	storeErr := errors.Join(objectstore.ErrTransport, errors.New("dns failure"))
	creds := user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"}

	t.Run("lookup fails", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByIdentity", mock.Anything, "alice", "1234").Return(user.Record{}, storeErr)
		m := NewManager(repo, NewMemoryStore(), slog.Default())

		_, err := m.Login(context.Background(), creds)

		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.ErrorIs(t, err, objectstore.ErrTransport)
		assert.Equal(t, StateUnauthenticated, m.State())
		repo.AssertExpectations(t)
	})

	t.Run("create fails", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByIdentity", mock.Anything, "alice", "1234").Return(user.Record{}, user.ErrNotFound)
		repo.On("Create", mock.Anything, creds).Return(user.Record{}, storeErr)
		m := NewManager(repo, NewMemoryStore(), slog.Default())

		_, err := m.Login(context.Background(), creds)

		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.Equal(t, StateUnauthenticated, m.State())
		_, ok := m.Current()
		assert.False(t, ok)
		repo.AssertExpectations(t)
	})

	t.Run("session cannot be persisted", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByIdentity", mock.Anything, "alice", "1234").Return(user.Record{ID: "u1", Username: "alice", StudentID: "1234", Password: "pw"}, nil)
		m := NewManager(repo, &failingStore{err: errors.New("disk full")}, slog.Default())

		_, err := m.Login(context.Background(), creds)

		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.Equal(t, StateUnauthenticated, m.State())
	})
}

func TestManager_Restore(t *testing.T) {
	regular := Session{UserID: "u1", Username: "alice", StudentID: "1234", Role: RoleRegularUser}
	admin := Session{Username: "admin", StudentID: "0000", Role: RoleAdministrator}

	tests := []struct {
		name         string
		stored       *Session
		current      View
		wantAuth     bool
		wantRedirect View
	}{
		{name: "no session on home", current: ViewHome, wantRedirect: ViewLogin},
		{name: "no session on login", current: ViewLogin, wantRedirect: ""},
		{name: "user on home", stored: &regular, current: ViewHome, wantAuth: true},
		{name: "user on admin", stored: &regular, current: ViewAdmin, wantAuth: true, wantRedirect: ViewHome},
		{name: "admin on home", stored: &admin, current: ViewHome, wantAuth: true, wantRedirect: ViewAdmin},
		{name: "admin on admin", stored: &admin, current: ViewAdmin, wantAuth: true},
		{name: "user on login", stored: &regular, current: ViewLogin, wantAuth: true},
		{name: "user without id", stored: &Session{Username: "alice", StudentID: "1234"}, current: ViewHome, wantRedirect: ViewLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.stored != nil {
				require.NoError(t, f.store.Save(context.Background(), *tt.stored))
			}

			result, err := f.manager.Restore(context.Background(), tt.current)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAuth, result.Authenticated)
			assert.Equal(t, tt.wantRedirect, result.Redirect)
			if tt.wantAuth {
				assert.Equal(t, *tt.stored, result.Session)
				assert.Equal(t, StateAuthenticated, f.manager.State())
			} else {
				assert.Equal(t, StateUnauthenticated, f.manager.State())
			}
		})
	}
}

func TestManager_Restore_CorruptSessionIsCleared(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.Save(context.Background(), Session{Username: "alice", StudentID: "1234"}))

	_, err := f.manager.Restore(context.Background(), ViewHome)
	require.NoError(t, err)

	_, err = f.store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Logout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, f.manager.Logout(ctx))
	assert.Equal(t, StateUnauthenticated, f.manager.State())
	_, ok := f.manager.Current()
	assert.False(t, ok)

	_, err = f.store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	// повторный выход не ошибка
	assert.NoError(t, f.manager.Logout(ctx))
}

func TestManager_Logout_StoreFailure(t *testing.T) {
	m := NewManager(new(MockUserRepository), &failingStore{err: errors.New("read-only fs")}, slog.Default())

	err := m.Logout(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateUnauthenticated, m.State())
}

func TestManager_Login_FailureEndsPreviousSession(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		creds user.Credentials
		want  error
	}{
		{
			name:  "wrong password",
			creds: user.Credentials{Username: "alice", StudentID: "1234", Password: "nope"},
			want:  ErrInvalidCredentials,
		},
		{
			name:  "admin identity wrong password",
			creds: user.Credentials{Username: user.AdminUsername, StudentID: user.AdminStudentID, Password: "guess"},
			want:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
			require.NoError(t, err)
			_, err = f.manager.Login(ctx, user.Credentials{Username: "bob", StudentID: "5678", Password: "pw"})
			require.NoError(t, err)

			_, err = f.manager.Login(ctx, tt.creds)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, StateUnauthenticated, f.manager.State())

			restored, err := f.manager.Restore(ctx, ViewHome)
			require.NoError(t, err)
			assert.False(t, restored.Authenticated)
			assert.Equal(t, ViewLogin, restored.Redirect)
			assert.Equal(t, StateUnauthenticated, f.manager.State())
		})
	}
}

func TestManager_Login_ValidationKeepsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
	require.NoError(t, err)

	_, err = f.manager.Login(ctx, user.Credentials{Username: "", StudentID: "1234", Password: "pw"})
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, StateAuthenticated, f.manager.State())
	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Session, persisted)
}

func TestManager_Login_ReservedIdentityWrongPassword(t *testing.T) {
	f := newFixture()

	_, err := f.manager.Login(context.Background(), user.Credentials{
		Username:  user.AdminUsername,
		StudentID: user.AdminStudentID,
		Password:  "guess",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, int32(0), f.counting.calls.Load())
	assert.Equal(t, 0, f.objects.Count(objectstore.CollectionUser))
}

func TestManager_Login_TrimsIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.manager.Login(ctx, user.Credentials{Username: " alice ", StudentID: "1234 ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Session.Username)

	second, err := f.manager.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, first.Session.UserID, second.Session.UserID)
}
