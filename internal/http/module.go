package http

import (
	"trashtrack_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is an HTTP-facing feature (maps, reports, notifications) that
// mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what the router hands each Module.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind AuthRequired.
	Protected      *gin.RouterGroup
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
}
