// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lojinha/loja-backend/internal/config"
	"github.com/lojinha/loja-backend/internal/handlers"
	"github.com/lojinha/loja-backend/internal/middleware"
	"github.com/lojinha/loja-backend/internal/services"
	"github.com/lojinha/loja-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	authorizationService := services.NewAuthorizationService()
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, &cfg.JWT)
	userService := services.NewUserService(db, authorizationService)
	productService := services.NewProductService(db, authorizationService)
	categoryService := services.NewCategoryService(db, authorizationService)
	addressService := services.NewAddressService(db, authorizationService)
	cartService := services.NewCartService(db, authorizationService)
	orderService := services.NewOrderService(db, authorizationService)
	ratingService := services.NewRatingService(db, authorizationService)
	paymentService := services.NewPaymentService(db, cfg, authorizationService)
	adminService := services.NewAdminService(db, authorizationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, storageService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	addressHandler := handlers.NewAddressHandler(addressService)
	cartHandler := handlers.NewCartHandler(cartService, orderService)
	orderHandler := handlers.NewOrderHandler(orderService, paymentService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	adminHandler := handlers.NewAdminHandler(adminService, paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Upload endpoints share one throttle tier
	uploadLimit := middleware.UploadRateLimit(cfg.RateLimit)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit(cfg.RateLimit))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			// Shopping cart of the acting user
			cart := users.Group("/me/shopping-cart")
			{
				cart.GET("", cartHandler.GetMyCart)
				cart.POST("", cartHandler.CreateMyCart)
				cart.POST("/items", cartHandler.AddItems)
				cart.DELETE("/items", cartHandler.RemoveItem)
				cart.POST("/finish", cartHandler.Checkout)
			}

			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.PUT("/:id/password", userHandler.ChangePassword)
			users.POST("/:id/seller", userHandler.PromoteToSeller)
			users.POST("/:id/avatar", uploadLimit, userHandler.UploadAvatar)
			users.GET("/:id/addresses", addressHandler.ListUserAddresses)
			users.GET("/:id/orders", orderHandler.ListUserOrders)
			users.PUT("/:id/disable", userHandler.DisableUser)
			users.PUT("/:id/enable", userHandler.EnableUser)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.ListProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/ratings", ratingHandler.ListProductRatings)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.PUT("/:id", productHandler.UpdateProduct)
				protected.POST("/:id/images", uploadLimit, productHandler.UploadImage)
				protected.POST("/:id/ratings", ratingHandler.RateProduct)
				protected.PUT("/:id/disable", productHandler.DisableProduct)
				protected.PUT("/:id/enable", productHandler.EnableProduct)
			}
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:id", categoryHandler.GetCategory)

			protected := categories.Group("")
			protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				protected.POST("", categoryHandler.CreateCategory)
				protected.PUT("/:id", categoryHandler.UpdateCategory)
				protected.PUT("/:id/disable", categoryHandler.DisableCategory)
				protected.PUT("/:id/enable", categoryHandler.EnableCategory)
			}
		}

		// Address routes
		addresses := v1.Group("/addresses")
		addresses.Use(middleware.AuthRequired())
		{
			addresses.POST("", addressHandler.CreateAddress)
			addresses.GET("/:id", addressHandler.GetAddress)
			addresses.PUT("/:id", addressHandler.UpdateAddress)
			addresses.PUT("/:id/disable", addressHandler.DisableAddress)
			addresses.PUT("/:id/enable", addressHandler.EnableAddress)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("/tracking/:code", orderHandler.GetOrderByTrackingCode)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/status", orderHandler.UpdateStatus)
			orders.POST("/:id/payment-intent", orderHandler.CreatePaymentIntent)
			orders.POST("/payments/confirm", orderHandler.ConfirmPayment)
			orders.PUT("/:id/disable", orderHandler.DisableOrder)
			orders.PUT("/:id/enable", orderHandler.EnableOrder)
		}

		// Shopping cart lifecycle
		carts := v1.Group("/shopping-carts")
		carts.Use(middleware.AuthRequired())
		{
			carts.PUT("/:id/disable", cartHandler.DisableCart)
			carts.PUT("/:id/enable", cartHandler.EnableCart)
		}

		// Rating routes
		ratings := v1.Group("/ratings")
		ratings.Use(middleware.AuthRequired())
		{
			ratings.PUT("/:id", ratingHandler.UpdateRating)
			ratings.PUT("/:id/disable", ratingHandler.DisableRating)
			ratings.PUT("/:id/enable", ratingHandler.EnableRating)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			admin.POST("/orders/:id/refund", adminHandler.RefundOrder)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
