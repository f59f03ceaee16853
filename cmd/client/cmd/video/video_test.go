package video

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"vidshare/cmd/client/cmd/types"
	"vidshare/internal/app/client"
	"vidshare/internal/app/client/config"
	"vidshare/internal/domain/session"
	"vidshare/internal/domain/user"
	"vidshare/internal/domain/video"
	"vidshare/internal/infrastructure/objectstore"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	err := PrintTable(&buf, []video.Record{
		{ID: "v1", Title: "clip", URL: "https://cdn.example.com/clip.mp4", UploadDate: time.Now()},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "НАЗВАНИЕ")
	assert.Contains(t, out, "clip")
	assert.Contains(t, out, "https://cdn.example.com/clip.mp4")
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintTable(&buf, nil))
	assert.Equal(t, "Видео пока нет\n", buf.String())
}

func TestDrawProgress(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{percent: 0, want: "\r[..............................]   0%"},
		{percent: 50, want: "\r[###############...............]  50%"},
		{percent: 100, want: "\r[##############################] 100%"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		drawProgress(&buf, tt.percent)
		assert.Equal(t, tt.want, buf.String())
	}
}

func TestJSONRecords_IncludesID(t *testing.T) {
	records := JSONRecords([]video.Record{{ID: "v1", Title: "clip"}})

	require.Len(t, records, 1)
	assert.Equal(t, "v1", records[0]["id"])
	assert.Equal(t, "clip", records[0]["title"])
}

func TestRegisterCmd(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreMemory}}
	app := client.NewWithBackends(cfg, client.Backends{
		Store:        objectstore.NewMemoryStore(),
		SessionStore: session.NewMemoryStore(),
	}, slog.Default())
	t.Cleanup(func() { app.Close() })

	ctx := context.WithValue(context.Background(), types.ClientAppKey, app)
	registerTitle, registerURL = "clip", "https://cdn.example.com/clip.mp4"

	var out bytes.Buffer
	RegisterCmd.SetOut(&out)
	RegisterCmd.SetContext(ctx)

	err := RegisterCmd.RunE(RegisterCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.Contains(t, err.Error(), "ошибка регистрации видео")

	_, err = app.Login(ctx, user.Credentials{Username: "alice", StudentID: "1234", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, RegisterCmd.RunE(RegisterCmd, nil))
	assert.Contains(t, out.String(), "Видео «clip» зарегистрировано")
}
