package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/manager/internal/pkg"
)

// Module implements the app.Module interface for the auth domain.
type Module struct {
	handler *Handler
}

// NewModule creates a new auth Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers auth API routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	authGroup.POST("/login", m.handler.Login)
}

// Middleware returns a gin middleware that rejects requests lacking a valid
// bearer token issued by the given TokenManager.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		if _, err := tokens.Parse(token); err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{
		Code:    http.StatusUnauthorized,
		Message: message,
		Data:    nil,
	})
}
