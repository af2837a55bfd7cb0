package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/ArowuTest/masterstudent-moderation/internal/handlers"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories/memory"
	"github.com/ArowuTest/masterstudent-moderation/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopForwarder struct{}

func (nopForwarder) Forward(context.Context, models.SyncRequest) {}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := services.HashPassword("correct horse")
	require.NoError(t, err)
	store := memory.NewStore()
	store.PutAdmin(&models.AdminUser{ID: "1", Email: "admin@masterstudent.com", Password: hash, Role: models.RoleAdmin})

	cfg := &config.Config{}
	cfg.JWT.Secret = "routes-secret"

	binding := repositories.NewBinding(store)
	audit := services.NewAuditService(binding)
	ledger := services.NewLedgerService(binding, nopForwarder{})
	return SetupRouter(cfg, HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(services.NewAuthService(store, cfg.JWT.Secret, time.Hour)),
		AdminHandler:      handlers.NewAdminHandler(services.NewDashboardService(binding, audit), ledger),
		ModerationHandler: handlers.NewModerationHandler(services.NewModerationService(binding, ledger, audit, nil)),
		SystemHandler:     handlers.NewSystemHandler(binding, nil),
	})
}

func login(t *testing.T, r *gin.Engine, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email":"admin@masterstudent.com","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginThenModerate(t *testing.T) {
	r := newRouter(t)

	w := login(t, r, "correct horse")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/notes/2/approve", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"coinReward":20`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actor":"admin@masterstudent.com"`)
}

func TestLoginWrongPassword(t *testing.T) {
	r := newRouter(t)
	w := login(t, r, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid credentials"}`, w.Body.String())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := newRouter(t)
	for _, path := range []string{"/api/v1/admin/stats", "/api/v1/admin/users", "/api/v1/admin/notes", "/api/v1/admin/storage"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "moderation_")
}
