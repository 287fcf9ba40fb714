// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/interfaces/http/handlers"
	"github.com/threadline/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupCatalogRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, redisClient, cfg)
	SetupContactRoutes(rg, db, cfg)
	SetupAdminRoutes(rg, db, redisClient, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/session", authHandler.Session)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupCatalogRoutes sets up the public product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:productId", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:productId", cartHandler.RemoveCartItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up checkout, order, and shipping routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(db, redisClient, cfg)
	shippingHandler := handlers.NewShippingHandler(db, cfg)

	shippingGroup := rg.Group("/shipping")
	{
		shippingGroup.GET("/methods", shippingHandler.GetShippingMethods)
		shippingGroup.GET("/methods/:id/quote", shippingHandler.GetShippingQuote)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("", checkoutHandler.Submit)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", invoiceHandler.DownloadInvoice)
	}
}

// SetupContactRoutes sets up the public contact form route
func SetupContactRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	contactHandler := handlers.NewContactHandler(db, cfg)

	rg.POST("/contact", contactHandler.Submit)
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	customerHandler := handlers.NewCustomerHandler(db, redisClient, cfg)
	contactHandler := handlers.NewContactHandler(db, cfg)
	uploadHandler := handlers.NewUploadHandler(db, cfg)
	shippingHandler := handlers.NewShippingHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware(db))
	{
		// Product management
		products := admin.Group("/products")
		{
			products.GET("", productHandler.AdminGetProducts)
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		// Category management
		categories := admin.Group("/categories")
		{
			categories.GET("", categoryHandler.AdminGetCategories)
			categories.POST("", categoryHandler.AdminCreateCategory)
			categories.PUT("/:id", categoryHandler.AdminUpdateCategory)
			categories.DELETE("/:id", categoryHandler.AdminDeleteCategory)
		}

		// Order management
		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/:id", orderHandler.AdminGetOrder)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
		}

		// Customer management
		customers := admin.Group("/customers")
		{
			customers.GET("", customerHandler.AdminGetCustomers)
			customers.GET("/:id", customerHandler.AdminGetCustomer)
			customers.PUT("/:id/role", customerHandler.AdminUpdateCustomerRole)
		}

		// Contact inbox
		messages := admin.Group("/contact/messages")
		{
			messages.GET("", contactHandler.AdminGetMessages)
			messages.PUT("/:id/resolve", contactHandler.AdminResolveMessage)
			messages.DELETE("/:id", contactHandler.AdminDeleteMessage)
		}

		// Shipping management
		shippingMethods := admin.Group("/shipping/methods")
		{
			shippingMethods.GET("", shippingHandler.AdminGetShippingMethods)
			shippingMethods.POST("", shippingHandler.AdminCreateShippingMethod)
			shippingMethods.PUT("/:id", shippingHandler.AdminUpdateShippingMethod)
			shippingMethods.DELETE("/:id", shippingHandler.AdminDeleteShippingMethod)
		}

		// File uploads
		uploads := admin.Group("/uploads")
		{
			uploads.GET("", uploadHandler.AdminGetUploads)
			uploads.POST("/:bucket", uploadHandler.AdminUploadFile)
			uploads.DELETE("/:id", uploadHandler.AdminDeleteUpload)
		}
	}
}
