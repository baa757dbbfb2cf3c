package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axonect/quotacycle/internal/interfaces/http/middleware"
)

func (c *Container) setupRoutes() {
	r := c.engine
	h := c.hdlrs
	log := c.log.Named("http")

	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.ErrorHandler(log))

	r.GET("/health", h.healthHandler.Health)
	if mc := c.cfg.Metrics; mc.Enabled {
		r.GET(mc.Path, gin.WrapH(c.MetricsHandler()))
	}

	api := r.Group("/api")
	{
		api.Match([]string{http.MethodGet, http.MethodPost}, "/services/recurrent/reactivate", h.jobHandler.RunRenewal)
		api.Match([]string{http.MethodGet, http.MethodPost}, "/delete/expired", h.jobHandler.RunReaper)
		api.Match([]string{http.MethodGet, http.MethodPost}, "/notification", h.jobHandler.RunNotifications)

		failures := api.Group("/failures")
		{
			failures.GET("", h.failureHandler.ListFailures)
			failures.GET("/retryable", h.failureHandler.ListRetryable)
			failures.PATCH("/:id/status", h.failureHandler.UpdateStatus)
		}
	}

	caches := r.Group("/cache")
	{
		caches.GET("/names", h.cacheHandler.Names)
		caches.GET("/statistics", h.cacheHandler.Statistics)
		caches.GET("/:name/size", h.cacheHandler.Size)
		caches.GET("/:name/keys", h.cacheHandler.Keys)
		caches.GET("/:name/contains/:key", h.cacheHandler.Contains)

		caches.DELETE("", h.cacheHandler.ClearAll)
		caches.DELETE("/:name", h.cacheHandler.Clear)
		caches.DELETE("/:name/key/:key", h.cacheHandler.EvictKey)
		caches.DELETE("/plan/:planId", h.cacheHandler.EvictPlan)
		caches.DELETE("/user/:userName", h.cacheHandler.EvictUser)
		caches.DELETE("/bucket/:bucketId", h.cacheHandler.EvictBucket)
	}
}
