package tasks

import (
	"net/http"
	"time"

	"novahub_backend/platform/httpkit"
	"novahub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type createTaskRequest struct {
	ProjectID   uuid.UUID  `json:"projectId" validate:"required"`
	Titulo      string     `json:"titulo" validate:"required,min=1,max=300"`
	Descripcion *string    `json:"descripcion,omitempty" validate:"omitempty,max=5000"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type updateTaskRequest struct {
	Titulo      string     `json:"titulo" validate:"required,min=1,max=300"`
	Descripcion *string    `json:"descripcion,omitempty" validate:"omitempty,max=5000"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pendiente en_progreso completada"`
}

type completeTaskRequest struct {
	Feedback string `json:"feedback" validate:"required,min=1,max=5000"`
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

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, err := h.svc.Create(c.Request.Context(), identity.UserID(), CreateParams{
		ProjectID:   req.ProjectID,
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, task)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "projectId query parameter is required", nil)
		return
	}

	out, err := h.svc.List(c.Request.Context(), identity.UserID(), projectID, Status(c.Query("status")))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}

	task, err := h.svc.Get(c.Request.Context(), identity.UserID(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, task)
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, err := h.svc.Update(c.Request.Context(), identity.UserID(), id, req.Titulo, req.Descripcion, req.AssignedTo, req.DueDate)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, task)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), identity.UserID(), id, Status(req.Status))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, task)
}

func (h *Handler) Complete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}

	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, insight, err := h.svc.CompleteWithFeedback(c.Request.Context(), identity.UserID(), id, req.Feedback)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"task": task, "insight": insight})
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}
