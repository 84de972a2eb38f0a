package handler

import (
	"member-finance/internal/adapter/http/middleware"
	redisStore "member-finance/internal/adapter/storage/redis"
	"member-finance/internal/core/ports"
	"member-finance/internal/metrics"
	"member-finance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	FinanceSvc     ports.FinanceService
	DashboardSvc   ports.DashboardService
	Forms          *service.TransactionForms // nil = one registry over DashboardSvc
	MemberRepo     ports.MemberRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	forms := deps.Forms
	if forms == nil {
		forms = service.NewTransactionForms(deps.DashboardSvc, deps.Logger)
	}

	transactionHandler := NewTransactionHandler(deps.FinanceSvc, deps.DashboardSvc, forms, deps.MemberRepo)
	balanceHandler := NewBalanceHandler(deps.FinanceSvc, deps.DashboardSvc)
	dashboardHandler := NewDashboardHandler(deps.DashboardSvc)
	memberHandler := NewMemberHandler(deps.MemberRepo)

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	transactions := v1.Group("/transactions")
	{
		transactions.GET("", rl("read"), transactionHandler.List)
		transactions.POST("", rl("transactions"), transactionHandler.Create)
		transactions.DELETE("/:id", rl("transactions"), transactionHandler.Delete)
	}

	balances := v1.Group("/balances")
	{
		balances.GET("/cash", rl("read"), balanceHandler.Cash)
		balances.GET("/bank", rl("read"), balanceHandler.Bank)
		balances.POST("/bank", rl("bank_balance"), balanceHandler.UpdateBank)
		balances.GET("/bank/history", rl("read"), balanceHandler.History)
	}

	v1.GET("/dashboard", rl("read"), dashboardHandler.Get)
	v1.GET("/members", rl("read"), memberHandler.List)

	return r
}
