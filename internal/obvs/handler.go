package obvs

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

	maxEvidenceSizeBytes = 10 << 20
)

type participantRequest struct {
	UserID     uuid.UUID `json:"userId" validate:"required"`
	Porcentaje float64   `json:"porcentaje" validate:"required,gt=0,lte=100"`
}

type createOBVRequest struct {
	ProjectID      uuid.UUID            `json:"projectId" validate:"required"`
	Titulo         string               `json:"titulo" validate:"required,min=3,max=200"`
	Descripcion    *string              `json:"descripcion" validate:"omitempty,max=2000"`
	Cantidad       float64              `json:"cantidad" validate:"required,gt=0"`
	PrecioUnitario float64              `json:"precioUnitario" validate:"required,gt=0"`
	Costes         float64              `json:"costes" validate:"gte=0"`
	Participants   []participantRequest `json:"participants" validate:"required,min=1,dive"`
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

	var req createOBVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	participants := make([]Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, Participant{UserID: p.UserID, Porcentaje: p.Porcentaje})
	}

	obv, err := h.svc.Create(c.Request.Context(), identity.UserID(), Input{
		ProjectID:      req.ProjectID,
		Titulo:         req.Titulo,
		Descripcion:    req.Descripcion,
		Cantidad:       req.Cantidad,
		PrecioUnitario: req.PrecioUnitario,
		Costes:         req.Costes,
		Participants:   participants,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, obv)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	obvID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid obv id")
		return
	}

	obv, participants, err := h.svc.Get(c.Request.Context(), identity.UserID(), obvID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obv": obv, "participants": participants})
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

	obvs, err := h.svc.List(c.Request.Context(), identity.UserID(), projectID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obvs": obvs, "count": len(obvs)})
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	obvID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid obv id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID(), obvID); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Validate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	obvID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid obv id")
		return
	}

	// Empty body means approval.
	req := struct {
		Approved *bool `json:"approved"`
	}{}
	_ = c.ShouldBindJSON(&req)
	approve := req.Approved == nil || *req.Approved

	obv, err := h.svc.Validate(c.Request.Context(), identity.UserID(), obvID, approve)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, obv)
}

func (h *Handler) UploadEvidence(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	obvID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid obv id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "file field is required")
		return
	}
	if fileHeader.Size > maxEvidenceSizeBytes {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "file exceeds maximum size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "could not read uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	key, err := h.svc.UploadEvidence(c.Request.Context(), identity.UserID(), obvID, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"evidenceKey": key})
}

func (h *Handler) EvidenceURL(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	obvID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid obv id")
		return
	}

	url, err := h.svc.EvidenceURL(c.Request.Context(), identity.UserID(), obvID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, url)
}
