package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/enterprise-insights/gh-inventory/internal/storage"
)

// NewRouter builds the gin engine with all inventory routes registered.
func NewRouter(store storage.Storage, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORS())

	h := NewHandler(store)

	r.GET("/health", h.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/orgs", h.ListOrganizations)
		v1.GET("/orgs/:org/repos", h.ListRepositories)
		v1.GET("/runs", h.ListRuns)
	}

	return r
}
