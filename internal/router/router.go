package router

import (
	"fmt"
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/cache"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/config"
	publichandlers "github.com/wallgreat218-lgtm/zenvora-store/internal/http/handlers/public"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/http/response"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the HTTP surface.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "zv"
	}
	redisClient := cache.Client()
	placeOrderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:place_order", redisPrefix),
		WindowSeconds: cfg.Security.PlaceOrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PlaceOrderRateLimit.MaxAttempts,
		Message:       "too many order attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:slug", publicHandler.GetProduct)

			public.GET("/cart", publicHandler.GetCart)
			public.GET("/cart/count", publicHandler.GetCartCount)
			public.GET("/cart/events", publicHandler.CartEvents)
			public.POST("/cart/items", publicHandler.AddCartItem)
			public.PUT("/cart/items", publicHandler.SetCartQuantity)
			public.DELETE("/cart/items", publicHandler.RemoveCartItem)
			public.DELETE("/cart", publicHandler.ClearCart)

			co := public.Group("/checkout")
			{
				co.POST("/session", publicHandler.BeginCheckout)
				co.GET("/session", publicHandler.GetCheckoutState)
				co.PUT("/address", publicHandler.UpdateAddress)
				co.PUT("/shipping", publicHandler.UpdateShipping)
				co.PUT("/payment", publicHandler.UpdatePayment)
				co.POST("/next", publicHandler.NextStep)
				co.POST("/back", publicHandler.BackStep)
				co.POST("/goto", publicHandler.GotoStep)
				co.POST("/place-order",
					RateLimitMiddleware(redisClient, placeOrderRule, KeyByCartToken(publichandlers.CartTokenHeader)),
					publicHandler.PlaceOrder,
				)
			}

			public.GET("/orders/:reference", publicHandler.GetOrder)
		}
	}

	return r
}
