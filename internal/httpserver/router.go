package httpserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// buildRouter wires the full API surface.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.Use(corsMiddleware(corsOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	auth := authHandler{users: deps.UserSvc}
	users := usersHandler{users: deps.UserSvc}
	catalog := catalogHandler{categories: deps.CategorySvc, brands: deps.BrandSvc, products: deps.ProductSvc}
	carts := cartsHandler{carts: deps.CartSvc}
	orders := ordersHandler{orders: deps.OrderSvc}
	reports := reportsHandler{reports: deps.ReportSvc}
	recommend := recommendHandler{recommender: deps.RecommendSvc}

	requireAuth := authRequired(deps.UserSvc)
	optionalAuth := authOptional(deps.UserSvc)
	requireStaff := staffRequired()

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", auth.register)
		authGroup.POST("/login", auth.login)
		authGroup.POST("/refresh", auth.refresh)
		authGroup.POST("/logout", requireAuth, auth.logout)
		authGroup.GET("/profile", requireAuth, auth.profile)
		authGroup.PUT("/profile", requireAuth, auth.updateProfile)
		authGroup.POST("/change-password", requireAuth, auth.changePassword)
	}

	usersGroup := api.Group("/users", requireAuth, requireStaff)
	{
		usersGroup.GET("", users.list)
		usersGroup.GET("/:id", users.get)
		usersGroup.PUT("/:id", users.update)
		usersGroup.DELETE("/:id", users.delete)
	}

	categories := api.Group("/categories", requireAuth, requireStaff)
	{
		categories.POST("", catalog.createCategory)
		categories.GET("", catalog.listCategories)
		categories.GET("/:id", catalog.getCategory)
		categories.PUT("/:id", catalog.updateCategory)
		categories.DELETE("/:id", catalog.deleteCategory)
	}

	brands := api.Group("/brands", requireAuth, requireStaff)
	{
		brands.POST("", catalog.createBrand)
		brands.GET("", catalog.listBrands)
		brands.GET("/:id", catalog.getBrand)
		brands.PUT("/:id", catalog.updateBrand)
		brands.DELETE("/:id", catalog.deleteBrand)
	}

	products := api.Group("/products", requireAuth, requireStaff)
	{
		products.POST("", catalog.createProduct)
		products.GET("", catalog.listProducts)
		products.GET("/:id", catalog.getProduct)
		products.PUT("/:id", catalog.updateProduct)
		products.DELETE("/:id", catalog.deleteProduct)
	}

	public := api.Group("/public")
	{
		public.GET("/products", catalog.publicProducts)
		public.GET("/products/:slug", catalog.publicProductBySlug)
		public.GET("/categories", catalog.publicCategories)
		public.GET("/categories/:slug/products", catalog.publicProductsByCategory)
	}

	cartsGroup := api.Group("/carts")
	{
		cartsGroup.GET("/me", requireAuth, carts.mine)
		cartsGroup.POST("/items", requireAuth, carts.addItem)
		cartsGroup.POST("/sync", requireAuth, carts.sync)
		cartsGroup.DELETE("/items", requireAuth, carts.removeItem)
		cartsGroup.DELETE("/me/items", requireAuth, carts.clear)

		cartsGroup.GET("", requireAuth, requireStaff, carts.list)
		cartsGroup.GET("/:id", requireAuth, requireStaff, carts.get)
		cartsGroup.DELETE("/:id", requireAuth, requireStaff, carts.delete)
	}

	ordersGroup := api.Group("/orders")
	{
		ordersGroup.POST("", optionalAuth, orders.create)
		ordersGroup.GET("/me", requireAuth, orders.mine)
		ordersGroup.GET("/:id", optionalAuth, orders.get)
		ordersGroup.GET("", requireAuth, requireStaff, orders.list)
		ordersGroup.PATCH("/:id/status", requireAuth, requireStaff, orders.updateStatus)
	}

	reportGroup := api.Group("/report", requireAuth, requireStaff)
	{
		reportGroup.GET("/summary", reports.summary)
		reportGroup.GET("/revenue", reports.revenue)
		reportGroup.GET("/top-products", reports.topProducts)
		reportGroup.GET("/statuses", reports.statuses)
		reportGroup.GET("/payment-methods", reports.paymentMethods)
		reportGroup.GET("/customers", reports.customers)
		reportGroup.GET("/conversion", reports.conversion)
		reportGroup.GET("/order-values", reports.orderValues)
		reportGroup.GET("/locations", reports.locations)
		reportGroup.GET("/dashboard", reports.dashboard)
	}

	api.POST("/gemini/recommend", recommend.recommend)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
