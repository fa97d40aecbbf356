package api

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"flowdocs/pkg/logger"
)

// Checker reports the liveness of one backing store.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// SetupRouter configures and returns the gin engine. checks maps component
// names to their liveness checks; any failing check degrades /health to 503.
func SetupRouter(h *Handler, jwtSecret string, log *logger.Logger, checks map[string]Checker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())

	// An unhandled panic in the pipeline becomes a logged stack trace and a
	// generic apology, never a blank 500.
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithPayload(map[string]interface{}{
			"panic": recovered,
			"stack": string(debug.Stack()),
		}).Error("unhandled panic in request handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"answer":     "Something went wrong. Please try again later.",
			"references": []interface{}{},
		})
	}))

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		components := gin.H{}
		for name, check := range checks {
			if err := check.HealthCheck(c.Request.Context()); err != nil {
				log.WithError(err).Warn("health check failed: " + name)
				status = http.StatusServiceUnavailable
				components[name] = err.Error()
				continue
			}
			components[name] = "ok"
		}
		body := gin.H{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(components) > 0 {
			body["components"] = components
		}
		c.JSON(status, body)
	})

	authMiddleware := AuthMiddleware(jwtSecret)

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		authed := apiV1.Group("")
		authed.Use(authMiddleware)
		{
			authed.GET("/search", h.SearchPage)
			authed.POST("/search", h.SearchQuery)

			authed.POST("/folders", h.CreateFolder)
			authed.POST("/folders/subcategories", h.AddSubcategory)
			authed.DELETE("/folders/:id", h.DeleteFolder)

			authed.POST("/folders/:id/documents", h.UploadDocument)
			authed.DELETE("/documents/:id", h.DeleteDocument)

			authed.GET("/users", h.ListUsers)
			authed.POST("/users/:id/toggle", h.ToggleUserActive)
			authed.DELETE("/users/:id", h.DeleteUser)
		}
	}

	return r
}
