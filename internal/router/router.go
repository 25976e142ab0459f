package router

import (
	"fmt"
	"strings"

	"github.com/choviet-next/internal/cache"
	"github.com/choviet-next/internal/config"
	accounthandlers "github.com/choviet-next/internal/http/handlers/account"
	publichandlers "github.com/choviet-next/internal/http/handlers/public"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/登录态分组）
	publicHandler := publichandlers.New(c)
	accountHandler := accounthandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cv"
	}
	redisClient := cache.Client()
	authRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:auth", redisPrefix),
		WindowSeconds: cfg.Security.AuthRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AuthRateLimit.MaxAttempts,
		Message:       "too many authentication attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// API 路由组
	api := r.Group("/api")
	{
		// 认证接口（登录注册限流）
		auth := api.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, authRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, authRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/forgot-password", RateLimitMiddleware(redisClient, authRule, KeyByIPAndJSONField("email")), publicHandler.ForgotPassword)
			auth.POST("/reset-password", publicHandler.ResetPassword)
		}

		// 公开接口
		api.GET("/categories", publicHandler.ListCategories)
		api.GET("/products", publicHandler.ListProducts)
		api.GET("/products/:id", publicHandler.GetProduct)

		// 网关回调（公开，必须在鉴权组之外）
		api.GET("/payment/vnpay/ipn", publicHandler.VNPayIPN)
		api.GET("/payment/vnpay/return", publicHandler.VNPayReturn)

		// 登录态接口
		user := api.Group("")
		user.Use(JWTAuthMiddleware(cfg.JWT.SecretKey))
		{
			user.GET("/profile", accountHandler.GetProfile)
			user.PUT("/profile", accountHandler.UpdateProfile)
			user.PUT("/profile/password", accountHandler.ChangePassword)

			user.GET("/cart", accountHandler.GetCart)
			user.POST("/cart", accountHandler.AddCartItem)
			user.PUT("/cart/items/:id", accountHandler.UpdateCartItem)
			user.DELETE("/cart/items/:id", accountHandler.RemoveCartItem)
			user.DELETE("/cart", accountHandler.ClearCart)

			user.POST("/orders", accountHandler.CreateOrder)
			user.GET("/orders/:id", accountHandler.GetOrder)
			user.GET("/orders/buyer/my-orders", accountHandler.ListBuyerOrders)
			user.PUT("/orders/:id/confirm-delivery", accountHandler.ConfirmDelivery)
			user.PUT("/orders/:id/cancel-buyer", accountHandler.CancelOrderByBuyer)

			user.POST("/payment/vnpay/create", accountHandler.CreateVNPayPayment)
			user.GET("/orders/:id/payments", accountHandler.ListOrderPayments)

			user.POST("/upload/image", accountHandler.UploadImage)

			// 卖家接口
			seller := user.Group("")
			seller.Use(RequireSeller())
			{
				seller.GET("/orders/seller/my-orders", accountHandler.ListSellerOrders)
				seller.PUT("/orders/:id/confirm", accountHandler.ConfirmOrder)
				seller.PUT("/orders/:id/start-processing", accountHandler.StartProcessing)
				seller.PUT("/orders/:id/start-shipping", accountHandler.StartShipping)
				seller.PUT("/orders/:id/cancel-seller", accountHandler.CancelOrderBySeller)
				seller.GET("/orders/seller/stats", accountHandler.GetOrderStats)
				seller.GET("/orders/seller/revenue-stats", accountHandler.GetRevenueStats)

				seller.GET("/seller/products", accountHandler.ListSellerProducts)
				seller.POST("/seller/products", accountHandler.CreateProduct)
				seller.PUT("/seller/products/:id", accountHandler.UpdateProduct)
				seller.DELETE("/seller/products/:id", accountHandler.DeleteProduct)
			}
		}
	}

	return r
}
