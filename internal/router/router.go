// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/config"
	"github.com/agrimart/agrimart-backend/internal/handlers"
	"github.com/agrimart/agrimart-backend/internal/middleware"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	paymentService := services.NewStripePaymentService(cfg)

	authService := services.NewAuthService(db, notificationService)
	catalogService := services.NewCatalogService(db)
	walletService := services.NewWalletService(db)
	orderService := services.NewOrderService(db, catalogService, paymentService, notificationService)
	businessService := services.NewBusinessService(db, notificationService)
	preHarvestService := services.NewPreHarvestService(db, walletService, notificationService, cfg.Payment.DepositPercent)
	farmService := services.NewFarmService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	b2bHandler := handlers.NewB2BHandler(businessService, catalogService, orderService, authService)
	preHarvestHandler := handlers.NewPreHarvestHandler(preHarvestService, authService, storageService)
	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(businessService, orderService)
	farmHandler := handlers.NewFarmHandler(farmService)

	// Set JWT config
	utils.SetJWTConfig(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Storefront catalog
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
		}

		// Orders (retail and guest checkout)
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.OptionalAuth(), middleware.CheckoutRateLimit(), orderHandler.PlaceOrder)
			orders.GET("/track/:number", orderHandler.TrackOrder)

			protected := orders.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("", orderHandler.MyOrders)
				protected.GET("/:id", orderHandler.GetOrder)
			}
		}

		// B2B portal
		b2b := v1.Group("/b2b")
		{
			b2b.POST("/register", middleware.AuthRateLimit(), b2bHandler.Register)

			protected := b2b.Group("")
			protected.Use(middleware.AuthRequired(), middleware.BusinessRequired())
			{
				protected.GET("/profile", b2bHandler.Profile)
				protected.GET("/catalog", b2bHandler.Catalog)
				protected.POST("/orders", middleware.CheckoutRateLimit(), b2bHandler.PlaceOrder)
				protected.GET("/orders", b2bHandler.Orders)
				protected.GET("/orders/:id", b2bHandler.Order)
			}
		}

		// Pre-harvest marketplace
		preHarvest := v1.Group("/pre-harvest")
		{
			preHarvest.GET("/listings", preHarvestHandler.GetListings)
			preHarvest.GET("/listings/:id", preHarvestHandler.GetListing)

			protected := preHarvest.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/listings", preHarvestHandler.CreateListing)
				protected.PUT("/listings/:id", preHarvestHandler.UpdateListing)
				protected.DELETE("/listings/:id", preHarvestHandler.CancelListing)
				protected.POST("/listings/:id/images", middleware.UploadRateLimit(), preHarvestHandler.UploadListingImage)
				protected.GET("/listings/:id/bookings", preHarvestHandler.ListingBookings)
				protected.GET("/my-listings", preHarvestHandler.MyListings)
				protected.GET("/analytics", preHarvestHandler.Analytics)

				protected.POST("/listings/:id/bookings", middleware.CheckoutRateLimit(), preHarvestHandler.CreateBooking)
				protected.GET("/bookings/:id", preHarvestHandler.GetBooking)
				protected.POST("/bookings/:id/confirm", preHarvestHandler.ConfirmBooking)
				protected.POST("/bookings/:id/cancel", preHarvestHandler.CancelBooking)
				protected.POST("/bookings/:id/complete", preHarvestHandler.CompleteBooking)
				protected.GET("/my-bookings", preHarvestHandler.MyBookings)
			}
		}

		// Farms and crop-investment projects
		farms := v1.Group("/farms")
		farms.Use(middleware.AuthRequired())
		{
			farms.POST("", farmHandler.CreateFarm)
			farms.GET("", farmHandler.MyFarms)
			farms.GET("/enums", farmHandler.FarmEnums)
			farms.GET("/statistics", farmHandler.Statistics)
		}

		projects := v1.Group("/projects")
		{
			projects.GET("", farmHandler.Projects)
			projects.GET("/:id", farmHandler.GetProject)
		}

		investments := v1.Group("/investments")
		investments.Use(middleware.AuthRequired())
		{
			investments.POST("", farmHandler.Invest)
			investments.GET("", farmHandler.MyInvestments)
		}

		// Wallet
		wallet := v1.Group("/wallet")
		wallet.Use(middleware.AuthRequired())
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.POST("/add-funds", walletHandler.AddFunds)
			wallet.POST("/withdraw", walletHandler.Withdraw)
			wallet.POST("/transfer", walletHandler.Transfer)
			wallet.GET("/transactions", walletHandler.Transactions)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			adminBusinesses := admin.Group("/businesses")
			{
				adminBusinesses.GET("", adminHandler.ListBusinesses)
				adminBusinesses.POST("/:id/approve", adminHandler.ApproveBusiness)
				adminBusinesses.POST("/:id/reject", adminHandler.RejectBusiness)
				adminBusinesses.PUT("/:id/pricing", adminHandler.SetBusinessPricing)
				adminBusinesses.DELETE("/:id/pricing/:productId", adminHandler.RemoveBusinessPricing)
			}

			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", productHandler.CreateProduct)
				adminProducts.PUT("/:id", productHandler.UpdateProduct)
				adminProducts.DELETE("/:id", productHandler.DeleteProduct)
				adminProducts.POST("/:id/images", middleware.UploadRateLimit(), productHandler.UploadProductImage)
			}

			admin.POST("/projects", farmHandler.CreateProject)

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", adminHandler.ListOrders)
				adminOrders.PUT("/:id/status", adminHandler.UpdateOrderStatus)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
