package main

import (
	"context"
	"net/http"

	"exotel-connector/internal/auth"
	"exotel-connector/internal/exotel"
	"exotel-connector/internal/httpapi"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type deps struct {
	auth       *auth.Manager
	reconciler *exotel.Reconciler
	client     httpapi.ExotelAPI
	ready      func(ctx context.Context) error
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic.
func registerRoutes(r *gin.Engine, d deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if d.ready != nil {
			if err := d.ready(c.Request.Context()); err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhooks (public, no session).
	exotel.WebhookHandler{Reconciler: d.reconciler}.Register(r.Group("/webhooks/exotel"))

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.auth))
	httpapi.Handlers{Exotel: d.client}.Register(v1)
}
