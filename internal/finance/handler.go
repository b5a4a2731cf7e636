package finance

import (
	"net/http"

	"novahub_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "Invalid request"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Sync(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "projectId query parameter is required")
		return
	}

	result, err := h.svc.Sync(c.Request.Context(), identity.UserID(), projectID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Dashboard(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "projectId query parameter is required")
		return
	}

	summary, err := h.svc.Dashboard(c.Request.Context(), identity.UserID(), projectID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
