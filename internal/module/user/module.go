package user

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for the user domain.
type Module struct {
	handler *Handler
}

// NewModule creates a new user Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers user API routes on the given group. Callers are
// expected to pass a group that already carries the auth middleware.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	users.POST("", m.handler.Create)
	users.PUT("/:id", m.handler.Update)
	users.DELETE("/:id", m.handler.Remove)
	users.GET("", m.handler.GetAll)
	users.GET("/:id", m.handler.Get)
	users.GET("/by-email", m.handler.GetByEmail)
	users.GET("/search/name", m.handler.SearchByName)
	users.GET("/search/email", m.handler.SearchByEmail)
}
