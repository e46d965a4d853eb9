package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/manager/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	// Public modules are mounted directly under /api/v1.
	Public []Module

	// Protected modules are mounted under /api/v1 behind AuthGuard.
	Protected []Module

	// AuthGuard protects the Protected modules. Required when any are set.
	AuthGuard gin.HandlerFunc

	DB *gorm.DB
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Public)+len(deps.Protected) == 0 {
		return errors.New("at least one module is required")
	}
	if len(deps.Protected) > 0 && deps.AuthGuard == nil {
		return errors.New("auth guard is required for protected modules")
	}

	// Health check
	r.GET("/health", healthHandler(deps.DB))

	api := r.Group("/api/v1")
	for i, m := range deps.Public {
		if m == nil {
			return fmt.Errorf("public module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	if len(deps.Protected) > 0 {
		protected := r.Group("/api/v1")
		protected.Use(deps.AuthGuard)
		for i, m := range deps.Protected {
			if m == nil {
				return fmt.Errorf("protected module at index %d is nil", i)
			}
			m.RegisterRoutes(protected)
		}
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if db == nil {
			dbStatus = "error"
		} else if sqlDB, err := db.DB(); err != nil {
			dbStatus = "error"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				dbStatus = "error"
			}
		}

		if dbStatus != "ok" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

// noRouteHandler returns a JSON 404 for unknown paths.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}
