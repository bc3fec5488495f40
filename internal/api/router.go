package api

import (
	"net/http"

	"dairyflow/internal/metrics"
	"dairyflow/internal/middleware"
	"dairyflow/internal/service"
	"dairyflow/pkg/constraints"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes builds the mock backend. Everything lives under /api except
// health and metrics.
func RegisterRoutes(authHandler *AuthHandler, companyHandler *CompanyHandler, farm *service.FarmService, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.CorsMiddleware(),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
	)
	r.SetTrustedProxies(nil)
	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
	})

	r.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	writeLimiter := limiter.Middleware()

	// Public auth routes
	public := r.Group("/api")
	{
		public.POST(constraints.PathLogin, writeLimiter, authHandler.Login)
		public.POST(constraints.PathRegisterCompany, writeLimiter, authHandler.RegisterCompany)
		public.POST(constraints.PathRegisterEmployee, writeLimiter, authHandler.RegisterEmployee)
		public.POST(constraints.PathRefresh, authHandler.Refresh)
	}

	protected := r.Group("/api")
	protected.Use(middleware.JWTMiddleware(authHandler.svc))
	{
		protected.PUT(constraints.PathChangePassword, writeLimiter, authHandler.ChangePassword)

		NewRecordHandler(farm.Cows).register(protected, constraints.PathCows, writeLimiter)
		NewRecordHandler(farm.Milkings).register(protected, constraints.PathMilkings, writeLimiter)
		NewRecordHandler(farm.Quality).register(protected, constraints.PathQualityTests, writeLimiter)
		NewRecordHandler(farm.Inventory).register(protected, constraints.PathInventory, writeLimiter)
		NewRecordHandler(farm.Deliveries).register(protected, constraints.PathDeliveries, writeLimiter)

		protected.GET(constraints.PathCompanyMe, companyHandler.Me)
		protected.GET(constraints.PathDashboardSummary, companyHandler.Summary)
		protected.GET(constraints.PathDashboardProduction, companyHandler.Production)
	}

	owner := protected.Group("")
	owner.Use(middleware.RequireUserType(constraints.UserTypeCompany))
	{
		owner.PUT(constraints.PathCompanyMe, writeLimiter, companyHandler.UpdateMe)
		owner.POST(constraints.PathCompanyGenerateCode, writeLimiter, companyHandler.GenerateCode)
		NewRecordHandler(farm.Employees).register(owner, constraints.PathEmployees, writeLimiter)
	}
	return r
}
