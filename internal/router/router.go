package router

import (
	"fmt"
	"strings"

	"github.com/kosku-next/internal/cache"
	"github.com/kosku-next/internal/config"
	adminhandlers "github.com/kosku-next/internal/http/handlers/admin"
	publichandlers "github.com/kosku-next/internal/http/handlers/public"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ks"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}
	couponRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:coupon_check", redisPrefix),
		WindowSeconds: cfg.Security.CouponRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CouponRateLimit.MaxAttempts,
		Message:       "优惠码校验过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.POST("/coupons/check", RateLimitMiddleware(redisClient, couponRule, KeyByIPAndJSONField("code")), publicHandler.CheckCoupon)
			public.GET("/rooms/:id/promotions", publicHandler.ListRoomPromotions)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 促销管理
				authorized.GET("/promotions", adminHandler.ListPromotions)
				authorized.GET("/promotions/:id", adminHandler.GetPromotion)
				authorized.POST("/promotions", adminHandler.CreatePromotion)
				authorized.PUT("/promotions/:id", adminHandler.UpdatePromotion)
				authorized.DELETE("/promotions/:id", adminHandler.DeletePromotion)

				// 范围/规则/动作子资源
				authorized.POST("/promotions/:id/scopes", adminHandler.AddScope)
				authorized.PUT("/promotions/:id/scopes/:scope_id", adminHandler.UpdateScope)
				authorized.DELETE("/promotions/:id/scopes/:scope_id", adminHandler.DeleteScope)
				authorized.POST("/promotions/:id/rules", adminHandler.AddRule)
				authorized.DELETE("/promotions/:id/rules/:rule_id", adminHandler.DeleteRule)
				authorized.POST("/promotions/:id/actions", adminHandler.AddAction)
				authorized.DELETE("/promotions/:id/actions/:action_id", adminHandler.DeleteAction)

				// 优惠码管理
				authorized.GET("/promotions/:id/coupons", adminHandler.ListCoupons)
				authorized.POST("/promotions/:id/coupons", adminHandler.CreateCoupon)
				authorized.PUT("/promotions/:id/coupons/:coupon_id", adminHandler.UpdateCoupon)
				authorized.DELETE("/promotions/:id/coupons/:coupon_id", adminHandler.DeleteCoupon)
				authorized.POST("/promotions/:id/coupons/:coupon_id/recount", adminHandler.RecountCoupon)

				// 核销账本
				authorized.GET("/redemptions", adminHandler.ListRedemptions)
				authorized.POST("/redemptions/:token/release", adminHandler.ReleaseRedemption)

				// 账单折扣
				authorized.POST("/invoices/:id/promotions/evaluate", adminHandler.EvaluateInvoice)
				authorized.POST("/invoices/:id/promotions/apply", adminHandler.ApplyInvoicePromotions)

				// 物业主数据
				authorized.GET("/buildings", adminHandler.ListBuildings)
				authorized.POST("/buildings", adminHandler.CreateBuilding)
				authorized.GET("/floors", adminHandler.ListFloors)
				authorized.POST("/floors", adminHandler.CreateFloor)
				authorized.GET("/room-types", adminHandler.ListRoomTypes)
				authorized.POST("/room-types", adminHandler.CreateRoomType)
				authorized.GET("/rooms", adminHandler.ListRooms)
				authorized.POST("/rooms", adminHandler.CreateRoom)
			}
		}
	}

	return r
}
