package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"install-schedule-backend/config"
	"install-schedule-backend/internal/mw"
	"install-schedule-backend/internal/negotiation"
	"install-schedule-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, svc *negotiation.Service, webpushOptions *webpush.Options, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	handler := NewHandler(s, svc, webpushOptions, cacheStore)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Bookings
		api.POST("/bookings", handler.PostBooking)
		api.GET("/bookings/:booking_id", caching, handler.GetBookingSummary)

		// Schedule negotiation
		api.POST("/bookings/:booking_id/proposals", handler.PostProposal)
		api.GET("/bookings/:booking_id/proposals", caching, handler.GetHistory)
		api.GET("/bookings/:booking_id/negotiation", caching, handler.GetActive)
		api.PATCH("/proposals/:id/response", handler.RespondProposal)
		api.DELETE("/proposals/:id", handler.DeleteProposal)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
