package projects

import (
	"net/http"

	"novahub_backend/platform/httpkit"
	"novahub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type createProjectRequest struct {
	Nombre      string  `json:"nombre" validate:"required,min=2,max=200"`
	Descripcion *string `json:"descripcion,omitempty" validate:"omitempty,max=2000"`
}

type addMemberRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Rol    string    `json:"rol" validate:"required,oneof=owner member"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	project, err := h.svc.Create(c.Request.Context(), req.Nombre, req.Descripcion, identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, project)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	projects, err := h.svc.ListForUser(c.Request.Context(), identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, projects)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid project id", nil)
		return
	}

	project, err := h.svc.Get(c.Request.Context(), id, identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, project)
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid project id", nil)
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	project, err := h.svc.Update(c.Request.Context(), id, identity.UserID(), req.Nombre, req.Descripcion)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, project)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid project id", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, identity.UserID()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) AddMember(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid project id", nil)
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.AddMember(c.Request.Context(), id, identity.UserID(), req.UserID, req.Rol); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "member added"})
}

func (h *Handler) ListMembers(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid project id", nil)
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), id, identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, members)
}
