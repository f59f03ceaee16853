package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// fakeService - упрощённый сервис хранилища объектов для тестов
type fakeService struct {
	mu      sync.Mutex
	objects map[string][]wireItem
	seq     int
	auth    string
	status  int
}

func newFakeService() *fakeService {
	return &fakeService{objects: make(map[string][]wireItem)}
}

func (f *fakeService) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/collections/{name}/objects", f.list)
	r.Post("/collections/{name}/objects", f.create)
	return r
}

func (f *fakeService) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.auth = r.Header.Get("Authorization")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "storage unavailable"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	stored := f.objects[chi.URLParam(r, "name")]

	items := make([]wireItem, 0, len(stored))
	for i := range stored {
		idx := i
		if r.URL.Query().Get("order") == "desc" {
			idx = len(stored) - 1 - i
		}
		if len(items) == limit {
			break
		}
		items = append(items, stored[idx])
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func (f *fakeService) create(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	var body struct {
		ObjectData json.RawMessage `json:"objectData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.seq++
	item := wireItem{
		ObjectID:   fmt.Sprintf("obj-%d", f.seq),
		ObjectData: body.ObjectData,
		CreatedAt:  time.Now().UTC(),
	}
	name := chi.URLParam(r, "name")
	f.objects[name] = append(f.objects[name], item)

	_ = json.NewEncoder(w).Encode(item)
}

func newTestHTTPStore(t *testing.T, srv *httptest.Server, apiKey string) *HTTPStore {
	t.Helper()
	store, err := NewHTTPStore(HTTPConfig{BaseURL: srv.URL, APIKey: apiKey, Timeout: time.Second}, slog.Default())
	require.NoError(t, err)
	return store
}

func TestHTTPStore_CreateAndList(t *testing.T) {
	fake := newFakeService()
	srv := httptest.NewServer(fake.router())
	defer srv.Close()

	store := newTestHTTPStore(t, srv, "secret")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		item, err := store.Create(ctx, CollectionVideo, map[string]string{"title": fmt.Sprintf("v%d", i)})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("obj-%d", i), item.ID)
	}

	items, err := store.List(ctx, CollectionVideo, 2, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "obj-3", items[0].ID)
	assert.Equal(t, "obj-2", items[1].ID)
	assert.JSONEq(t, `{"title":"v3"}`, string(items[0].Data))
	assert.Equal(t, "Bearer secret", fake.auth)

	items, err = store.List(ctx, CollectionVideo, 10, false)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "obj-1", items[0].ID)
}

func TestHTTPStore_ServerError(t *testing.T) {
	fake := newFakeService()
	fake.status = http.StatusServiceUnavailable
	srv := httptest.NewServer(fake.router())
	defer srv.Close()

	store := newTestHTTPStore(t, srv, "")

	_, err := store.List(context.Background(), CollectionUser, 10, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "storage unavailable", statusErr.Message)

	_, err = store.Create(context.Background(), CollectionUser, map[string]string{"a": "b"})
	assert.ErrorIs(t, err, ErrServer)
}

func TestHTTPStore_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	store := newTestHTTPStore(t, srv, "")
	srv.Close()

	_, err := store.List(context.Background(), CollectionUser, 10, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrServer)
}

func TestHTTPStore_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	store := newTestHTTPStore(t, srv, "")

	_, err := store.List(context.Background(), CollectionUser, 10, true)
	assert.ErrorIs(t, err, ErrServer)
}

func TestHTTPStore_CreateWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"objectData":{}}`))
	}))
	defer srv.Close()

	store := newTestHTTPStore(t, srv, "")

	_, err := store.Create(context.Background(), CollectionUser, map[string]string{})
	assert.ErrorIs(t, err, ErrServer)
}

func TestNewHTTPStore_RequiresURL(t *testing.T) {
	_, err := NewHTTPStore(HTTPConfig{}, slog.Default())
	assert.Error(t, err)
}
