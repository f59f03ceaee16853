package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"vidshare/internal/domain/upload"
)

type received struct {
	filename    string
	contentType string
	content     []byte
	auth        string
}

func newUploadServer(t *testing.T, respond func(w http.ResponseWriter)) (*httptest.Server, *received) {
	t.Helper()
	got := &received{}

	r := chi.NewRouter()
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		got.auth = r.Header.Get("Authorization")

		file, header, err := r.FormFile(DefaultFieldName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		got.filename = header.Filename
		got.contentType = header.Header.Get("Content-Type")
		got.content, _ = io.ReadAll(file)

		respond(w)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, got
}

func jsonResponse(status int, body any) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func source(content []byte) upload.Source {
	return upload.Source{
		Name:        "clip.mp4",
		ContentType: "video/mp4",
		Size:        int64(len(content)),
		Reader:      bytes.NewReader(content),
	}
}

func TestHTTPTransferer_Success(t *testing.T) {
	srv, got := newUploadServer(t, jsonResponse(http.StatusOK, map[string]string{"url": "https://cdn.example.com/clip.mp4"}))

	transferer, err := NewHTTPTransferer(HTTPConfig{URL: srv.URL + "/upload", APIKey: "secret"}, slog.Default())
	require.NoError(t, err)

	content := bytes.Repeat([]byte("v"), 300*1024)
	var (
		mu   sync.Mutex
		sent []int64
	)
	url, err := transferer.Transfer(context.Background(), source(content), func(n int64) {
		mu.Lock()
		sent = append(sent, n)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/clip.mp4", url)
	assert.Equal(t, "clip.mp4", got.filename)
	assert.Equal(t, "video/mp4", got.contentType)
	assert.Equal(t, content, got.content)
	assert.Equal(t, "Bearer secret", got.auth)

	require.NotEmpty(t, sent)
	assert.Equal(t, int64(len(content)), sent[len(sent)-1])
	for i := 1; i < len(sent); i++ {
		assert.Greater(t, sent[i], sent[i-1])
	}
}

func TestHTTPTransferer_ResponseErrors(t *testing.T) {
	tests := []struct {
		name    string
		respond func(w http.ResponseWriter)
		wantErr error
	}{
		{
			name:    "ok without url",
			respond: jsonResponse(http.StatusOK, map[string]string{"status": "stored"}),
			wantErr: upload.ErrResponse,
		},
		{
			name: "ok with html body",
			respond: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("<html>done</html>"))
			},
			wantErr: upload.ErrResponse,
		},
		{
			name:    "server error",
			respond: jsonResponse(http.StatusInternalServerError, map[string]string{"error": "disk full"}),
			wantErr: upload.ErrServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newUploadServer(t, tt.respond)
			transferer, err := NewHTTPTransferer(HTTPConfig{URL: srv.URL + "/upload"}, slog.Default())
			require.NoError(t, err)

			_, err = transferer.Transfer(context.Background(), source([]byte("data")), nil)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPTransferer_StatusCode(t *testing.T) {
	srv, _ := newUploadServer(t, jsonResponse(http.StatusBadGateway, map[string]string{"error": "upstream"}))
	transferer, err := NewHTTPTransferer(HTTPConfig{URL: srv.URL + "/upload"}, slog.Default())
	require.NoError(t, err)

	_, err = transferer.Transfer(context.Background(), source([]byte("data")), nil)

	var statusErr *upload.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "upstream")
}

func TestHTTPTransferer_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	transferer, err := NewHTTPTransferer(HTTPConfig{URL: addr + "/upload"}, slog.Default())
	require.NoError(t, err)

	_, err = transferer.Transfer(context.Background(), source([]byte("data")), nil)

	assert.ErrorIs(t, err, upload.ErrTransport)
}

func TestHTTPTransferer_CanceledContext(t *testing.T) {
	srv, _ := newUploadServer(t, jsonResponse(http.StatusOK, map[string]string{"url": "x"}))
	transferer, err := NewHTTPTransferer(HTTPConfig{URL: srv.URL + "/upload"}, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = transferer.Transfer(ctx, source([]byte("data")), nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPTransferer_RequiresURL(t *testing.T) {
	_, err := NewHTTPTransferer(HTTPConfig{}, slog.Default())
	assert.Error(t, err)
}
