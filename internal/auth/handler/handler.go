package handler

import (
	"errors"
	"net/http"
	"time"

	"novahub_backend/internal/auth/service"
	"novahub_backend/internal/auth/transport"
	"novahub_backend/platform/httpkit"
	"novahub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-up", h.SignUp)
	rg.POST("/sign-in", h.SignIn)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/sign-out", h.SignOut)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req transport.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), req.Nombre, req.Email, req.Password)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, profileResponse(user.ID, user.Nombre, user.Email, user.Roles, user.CreatedAt))
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	access, refresh, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpkit.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	httpkit.OK(c, transport.AuthResponse{AccessToken: access, RefreshToken: refresh})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	access, refresh, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			httpkit.Error(c, http.StatusUnauthorized, "refresh token expired", nil)
		default:
			httpkit.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
		}
		return
	}

	httpkit.OK(c, transport.AuthResponse{AccessToken: access, RefreshToken: refresh})
}

func (h *Handler) SignOut(c *gin.Context) {
	var req transport.SignOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := c.Get(httpkit.ContextUserIDKey)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	user, err := h.svc.GetMe(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, profileResponse(user.ID, user.Nombre, user.Email, user.Roles, user.CreatedAt))
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]transport.ProfileResponse, 0, len(users))
	for _, u := range users {
		out = append(out, profileResponse(u.ID, u.Nombre, u.Email, u.Roles, u.CreatedAt))
	}
	httpkit.OK(c, out)
}

func (h *Handler) SetUserRoles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	var req struct {
		Roles []string `json:"roles" validate:"required,min=1,dive,oneof=member admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.SetUserRoles(c.Request.Context(), id, req.Roles); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "roles updated"})
}

func profileResponse(id uuid.UUID, nombre, email string, roles []string, createdAt time.Time) transport.ProfileResponse {
	return transport.ProfileResponse{
		ID:        id,
		Nombre:    nombre,
		Email:     email,
		Roles:     roles,
		CreatedAt: createdAt,
	}
}
