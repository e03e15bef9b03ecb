package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
	"github.com/SscSPs/splitsettle/internal/handlers"
	"github.com/SscSPs/splitsettle/internal/platform/config"
)

func newEngine(t *testing.T, cfg *config.Config, balance *MockBalanceService, metrics http.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	container := &portssvc.ServiceContainer{Balance: balance, Settlement: new(MockSettlementService)}
	require.NoError(t, handlers.RegisterRoutes(r, cfg, container, metrics))
	return r
}

func TestRegisterRoutes_PublicEndpoints(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", RateLimit: "100-M"}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("splitsettle_up 1\n"))
	})
	r := newEngine(t, cfg, new(MockBalanceService), metrics)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "splitsettle_up")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/groups/g1/balances", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRoutes_CORS(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", RateLimit: "100-M", CORSAllowedOrigins: []string{"https://app.example.com"}}
	r := newEngine(t, cfg, new(MockBalanceService), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/groups/g1/balances", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterRoutes_WritesAreRateLimited(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret-key-that-is-long-enough", RateLimit: "1-M"}
	balance := new(MockBalanceService)
	balance.On("NotifyExpensesChanged", mock.Anything, "g1").Return(nil).Once()
	r := newEngine(t, cfg, balance, nil)

	s := &HandlerTestSuite{jwtSecret: cfg.JWTSecret}
	s.SetT(t)
	token := s.generateTestToken("alice")

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/g1/invalidate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
	balance.AssertExpectations(t)
}

func TestRegisterRoutes_InvalidRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	err := handlers.RegisterRoutes(gin.New(), &config.Config{JWTSecret: "s", RateLimit: "lots"}, &portssvc.ServiceContainer{}, nil)
	assert.Error(t, err)
}

func TestRegisterRoutes_LedgerWritesAreMounted(t *testing.T) {
	r := newEngine(t, &config.Config{JWTSecret: "secret", RateLimit: "100-M"}, new(MockBalanceService), nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/groups/g1/expenses"},
		{http.MethodPost, "/api/v1/groups/g1/expenses"},
		{http.MethodPut, "/api/v1/expenses/e1"},
		{http.MethodDelete, "/api/v1/expenses/e1"},
		{http.MethodPut, "/api/v1/groups/g1"},
		{http.MethodPut, "/api/v1/users/me"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}
