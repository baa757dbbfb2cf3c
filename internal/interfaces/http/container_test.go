package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/axonect/quotacycle/internal/infrastructure/config"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	sharedconfig "github.com/axonect/quotacycle/internal/shared/config"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContainer(t *testing.T) (*Container, *miniredis.Miniredis) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Server:   sharedconfig.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: "test"},
		Database: sharedconfig.DatabaseConfig{Driver: "sqlite", Database: dsn},
		Redis:    sharedconfig.RedisConfig{Host: mr.Host(), Port: port},
		Renewal:  sharedconfig.RenewalConfig{Enabled: true, Cron: "30 0 * * *", PageSize: 100, RunTimeout: time.Minute},
		Reaper:   sharedconfig.ReaperConfig{Enabled: true, Cron: "0 2 * * *", PageSize: 100},
		Notification: sharedconfig.NotificationConfig{
			Enabled:   false,
			Cron:      "0 9 * * *",
			PageSize:  100,
			Transport: "log",
		},
		ReferenceCache: sharedconfig.ReferenceCacheConfig{Enabled: true, Prefix: "ref:", PlanTTL: time.Minute},
		SessionCache:   sharedconfig.SessionCacheConfig{ReadTimeout: time.Second, WriteTimeout: time.Second},
		Metrics:        sharedconfig.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	c, err := NewContainer(db, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	return c, mr
}

func serve(c *Container, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestContainer_Routes(t *testing.T) {
	c, mr := newTestContainer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/api/delete/expired", http.StatusOK},
		{http.MethodGet, "/api/delete/expired", http.StatusOK},
		{http.MethodPost, "/api/services/recurrent/reactivate", http.StatusOK},
		{http.MethodGet, "/api/notification", http.StatusOK},
		{http.MethodGet, "/api/failures", http.StatusOK},
		{http.MethodGet, "/api/failures/retryable", http.StatusOK},
		{http.MethodPatch, "/api/failures/99/status", http.StatusBadRequest},
		{http.MethodGet, "/cache/names", http.StatusOK},
		{http.MethodGet, "/cache/statistics", http.StatusOK},
		{http.MethodGet, "/cache/plan/size", http.StatusOK},
		{http.MethodGet, "/cache/widgets/size", http.StatusNotFound},
		{http.MethodGet, "/cache/session/contains/alice", http.StatusOK},
		{http.MethodDelete, "/cache/plan/PLAN-MONTHLY", http.StatusOK},
		{http.MethodDelete, "/cache/plan/key/PLAN-MONTHLY", http.StatusOK},
		{http.MethodDelete, "/cache/user/alice", http.StatusOK},
		{http.MethodDelete, "/cache/bucket/DATA-DAY", http.StatusOK},
		{http.MethodDelete, "/cache/template", http.StatusOK},
		{http.MethodDelete, "/cache", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(c, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	mr.SetError("LOADING")
	w := serve(c, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestContainer_MetricsEndpoint(t *testing.T) {
	c, _ := newTestContainer(t)

	require.Equal(t, http.StatusOK, serve(c, http.MethodPost, "/api/delete/expired").Code)

	w := serve(c, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quotacycle_job_runs_total{job="reaper",result="success"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestContainer_JobsAndScheduler(t *testing.T) {
	c, _ := newTestContainer(t)

	for _, name := range []string{"renewal", "reaper", "notification"} {
		job, ok := c.Job(name)
		require.True(t, ok, name)
		n, err := job.Execute(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	_, ok := c.Job("backup")
	assert.False(t, ok)

	// notification is disabled in the test config
	assert.Len(t, c.Scheduler().Jobs(), 2)
}

func TestContainer_RenewalResponseShape(t *testing.T) {
	c, _ := newTestContainer(t)

	w := serve(c, http.MethodGet, "/api/services/recurrent/reactivate")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			BatchID   string `json:"batch_id"`
			Processed int    `json:"processed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.BatchID)
	assert.Zero(t, resp.Data.Processed)
}
