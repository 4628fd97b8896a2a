package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		ServerHost:          "127.0.0.1",
		ServerPort:          "0",
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		MediaDir:            t.TempDir(),
		MediaBaseURL:        "/media",
		RecipeCreationLimit: 20,
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	db := testhelpers.NewSQLiteDB(t)

	server := New(cfg, db, nil, service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL))
	require.NotNil(t, server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestHealthDegradedWhenDatabaseIsClosed(t *testing.T) {
	cfg := testConfig(t)
	db := testhelpers.NewSQLiteDB(t)
	server := New(cfg, db, nil, service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestServesLocalMedia(t *testing.T) {
	cfg := testConfig(t)
	db := testhelpers.NewSQLiteDB(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.MediaDir, "pic.png"), []byte("png"), 0o644))

	server := New(cfg, db, nil, service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/pic.png", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

func TestStartStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	db := testhelpers.NewSQLiteDB(t)
	server := New(cfg, db, nil, service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
