package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"member-finance/internal/adapter/http/middleware"
	redisStore "member-finance/internal/adapter/storage/redis"
	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"
	"member-finance/internal/core/ports/mocks"
	"member-finance/internal/metrics"
	"member-finance/internal/service"
	"member-finance/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerFixture struct {
	router    *gin.Engine
	finance   *mocks.MockFinanceService
	dashboard *mocks.MockDashboardService
	members   *mocks.MockMemberRepository
	token     string
}

func newRouterFixture(t *testing.T, store *redisStore.RateLimitStore) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	tokens := service.NewJWTTokenService("router-test-secret", time.Hour, "member-finance")
	token, _, err := tokens.Generate(uuid.New())
	require.NoError(t, err)

	f := &routerFixture{
		finance:   mocks.NewMockFinanceService(ctrl),
		dashboard: mocks.NewMockDashboardService(ctrl),
		members:   mocks.NewMockMemberRepository(ctrl),
		token:     token,
	}
	f.router = SetupRouter(RouterDeps{
		FinanceSvc:     f.finance,
		DashboardSvc:   f.dashboard,
		MemberRepo:     f.members,
		TokenSvc:       tokens,
		RateLimitStore: store,
		HealthCheckers: []ports.HealthChecker{fakeChecker{name: "postgres"}},
		Logger:         zerolog.Nop(),
	})
	gin.SetMode(gin.TestMode)
	return f
}

func (f *routerFixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthIsPublic(t *testing.T) {
	f := newRouterFixture(t, nil)

	w := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MetricsExposed(t *testing.T) {
	metrics.Init()
	f := newRouterFixture(t, nil)

	f.do(http.MethodGet, "/health", "")
	w := f.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "member_finance_http_requests_total"))
}

func TestRouter_APIRequiresToken(t *testing.T) {
	f := newRouterFixture(t, nil)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/transactions"},
		{http.MethodPost, "/api/v1/transactions"},
		{http.MethodDelete, "/api/v1/transactions/" + uuid.New().String()},
		{http.MethodGet, "/api/v1/balances/cash"},
		{http.MethodGet, "/api/v1/balances/bank"},
		{http.MethodPost, "/api/v1/balances/bank"},
		{http.MethodGet, "/api/v1/balances/bank/history"},
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodGet, "/api/v1/members"},
	}

	for _, p := range paths {
		w := f.do(p.method, p.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)

		w = f.do(p.method, p.path, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)
	}
}

func TestRouter_AuthenticatedRequestReachesHandler(t *testing.T) {
	f := newRouterFixture(t, nil)

	f.finance.EXPECT().GetLatestBankBalance(gomock.Any()).Return(domain.KnownBankBalance(nil))

	w := f.do(http.MethodGet, "/api/v1/balances/bank", f.token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"known":true`)
}

func TestRouter_RateLimitsWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newRouterFixture(t, redisStore.NewRateLimitStore(client))
	limit := int(middleware.DefaultRateLimitRules()["bank_balance"].Limit)

	f.dashboard.EXPECT().UpdateBankBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.QueryError(errors.New("insert failed"))).Times(limit)

	for i := 0; i < limit; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/balances/bank", strings.NewReader(`{"amount":1}`))
		req.Header.Set("Authorization", "Bearer "+f.token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/balances/bank", strings.NewReader(`{"amount":1}`))
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
