package kpis

import (
	"net/http"

	"novahub_backend/platform/httpkit"
	"novahub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "Invalid request"
	msgValidationFailed = "Validation failed"
)

type createKPIRequest struct {
	ProjectID uuid.UUID `json:"projectId" validate:"required"`
	Tipo      string    `json:"tipo" validate:"required,max=100"`
	Valor     float64   `json:"valor" validate:"gte=0"`
	Periodo   string    `json:"periodo" validate:"required,max=20"`
	Evidencia *string   `json:"evidencia" validate:"omitempty,max=2000"`
}

type validateKPIRequest struct {
	Approved *bool `json:"approved"`
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

	var req createKPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	kpi, err := h.svc.Create(c.Request.Context(), identity.UserID(), Input{
		ProjectID: req.ProjectID,
		Tipo:      req.Tipo,
		Valor:     req.Valor,
		Periodo:   req.Periodo,
		Evidencia: req.Evidencia,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, kpi)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	kpiID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid kpi id")
		return
	}

	kpi, err := h.svc.Get(c.Request.Context(), identity.UserID(), kpiID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, kpi)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "projectId query parameter is required")
		return
	}

	kpis, err := h.svc.List(c.Request.Context(), identity.UserID(), projectID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"kpis": kpis, "count": len(kpis)})
}

func (h *Handler) ListPending(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "projectId query parameter is required")
		return
	}

	kpis, err := h.svc.ListPendingForValidation(c.Request.Context(), identity.UserID(), projectID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"kpis": kpis, "count": len(kpis)})
}

func (h *Handler) Validate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	kpiID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid kpi id")
		return
	}

	// Empty body means approval.
	var req validateKPIRequest
	_ = c.ShouldBindJSON(&req)
	approve := req.Approved == nil || *req.Approved

	kpi, err := h.svc.Validate(c.Request.Context(), identity.UserID(), kpiID, approve)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, kpi)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	kpiID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid kpi id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID(), kpiID); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
