// Package router builds the gin engine from the composed App.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "leadnest/internal/http"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"
	"leadnest/platform/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New wires global middleware, health and metrics endpoints and every module.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	if app.Registry != nil {
		engine.Use(httpkit.Metrics(metrics.NewHTTPMetrics(app.Registry)))
		engine.GET("/metrics", gin.WrapH(metrics.Handler(app.Registry)))
	}

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := app.Health.Ping(ctx); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	authMiddleware := httpkit.AuthRequired(app.Config)
	protected := api.Group("")
	protected.Use(authMiddleware)
	tenantScoped := protected.Group("")
	tenantScoped.Use(tenant.Required(app.Members))
	cron := api.Group("/cron")
	cron.Use(httpkit.CronSecret(app.Config))

	rc := &apphttp.RouterContext{
		Engine:          engine,
		API:             api,
		Protected:       protected,
		Tenant:          tenantScoped,
		Cron:            cron,
		Config:          app.Config,
		AuthMiddleware:  authMiddleware,
		AuthRateLimiter: httpkit.NewAuthRateLimiter(app.Logger),
	}

	for _, mod := range app.Modules {
		mod.RegisterRoutes(rc)
		app.Logger.Info("registered module routes", "module", mod.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderBusinessID, httpkit.HeaderBusinessSlug, httpkit.HeaderRequestID},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = cfg.GetCORSOrigins()
	return c
}
