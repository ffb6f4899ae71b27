package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault/internal/service"
)

func buildTestRouter(connection *service.ConnectionService, buffers *service.BufferService, open VaultOpener) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	healthHandler := NewHealthHandler(connection)
	fileHandler := NewFileHandler(connection)
	contentHandler := NewContentHandler(connection, buffers)
	connectionHandler := NewConnectionHandler(connection, open)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/files", fileHandler.List)
	router.GET("/content/:hash", contentHandler.Read)
	router.GET("/buffers/:key", contentHandler.ReadBuffer)
	router.POST("/repo/disconnect", connectionHandler.Disconnect)
	router.GET("/repo/status", connectionHandler.Status)

	return router
}

func performRequest(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoutesWithoutConnection(t *testing.T) {
	connection := service.NewConnectionService(nil)
	buffers := service.NewBufferService(time.Minute, time.Minute, nil, nil)
	router := buildTestRouter(connection, buffers, func(ctx context.Context, dsn string) (*service.VaultService, error) {
		return nil, nil
	})

	t.Run("health is always up", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("ready requires a connection", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/ready")
		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("file routes fail uniformly", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/files")
		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
		require.Contains(t, resp.Body.String(), "UPSTREAM_DISCONNECTED")
	})

	t.Run("status reports disconnected", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/repo/status")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"connected":false`)
	})

	t.Run("disconnect without connection errors", func(t *testing.T) {
		resp := performRequest(router, http.MethodPost, "/repo/disconnect")
		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

func TestBufferRoutes(t *testing.T) {
	connection := service.NewConnectionService(nil)
	buffers := service.NewBufferService(time.Minute, time.Minute, nil, nil)
	router := buildTestRouter(connection, buffers, nil)

	t.Run("unknown key is 404", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/buffers/nope")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("one-shot payload served once", func(t *testing.T) {
		key := buffers.PutOnce([]byte("rendered"), "image/png")

		resp := performRequest(router, http.MethodGet, "/buffers/"+key)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "image/png", resp.Header().Get("Content-Type"))
		require.Equal(t, "rendered", resp.Body.String())

		resp = performRequest(router, http.MethodGet, "/buffers/"+key)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("buffered content served without a vault", func(t *testing.T) {
		// Content delivery falls back to the buffer before touching the
		// repository, so a buffered hash survives a disconnect.
		buffers.Put("cafe01", []byte("bytes"), "application/octet-stream")

		resp := performRequest(router, http.MethodGet, "/content/cafe01")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "bytes", resp.Body.String())
	})
}
