package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/manager/internal/domain"
	"github.com/simp-lee/manager/internal/pkg"
)

// Handler handles REST API requests for the user resource.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/v1/users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	dto, err := h.svc.Create(c.Request.Context(), &UserDTO{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "user created",
		Data:    dto,
	})
}

// Update handles PUT /api/v1/users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req UpdateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	dto, err := h.svc.Update(c.Request.Context(), &UserDTO{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, dto)
}

// Remove handles DELETE /api/v1/users/:id.
func (h *Handler) Remove(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Get handles GET /api/v1/users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	dto, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if dto == nil {
		pkg.NotFound(c, "user not found")
		return
	}

	pkg.Success(c, dto)
}

// GetAll handles GET /api/v1/users.
func (h *Handler) GetAll(c *gin.Context) {
	dtos, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, dtos)
}

// GetByEmail handles GET /api/v1/users/by-email?email=.
func (h *Handler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "email query parameter is required", nil))
		return
	}

	dto, err := h.svc.GetByEmail(c.Request.Context(), email)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if dto == nil {
		pkg.NotFound(c, "user not found")
		return
	}

	pkg.Success(c, dto)
}

// SearchByName handles GET /api/v1/users/search/name?q=.
func (h *Handler) SearchByName(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "q query parameter is required", nil))
		return
	}

	dtos, err := h.svc.SearchByName(c.Request.Context(), q)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, dtos)
}

// SearchByEmail handles GET /api/v1/users/search/email?q=.
func (h *Handler) SearchByEmail(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "q query parameter is required", nil))
		return
	}

	dtos, err := h.svc.SearchByEmail(c.Request.Context(), q)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, dtos)
}

// parseID extracts and validates the :id path parameter.
func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return uint(id), nil
}
