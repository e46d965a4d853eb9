package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/manager/internal/pkg"
)

// Handler handles REST API requests for authentication.
type Handler struct {
	svc Service
}

// NewHandler creates a new auth Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	tokenResp, err := h.svc.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, tokenResp)
}
