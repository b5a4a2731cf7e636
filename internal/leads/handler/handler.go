package handler

import (
	"context"
	"net/http"
	"strings"

	"novahub_backend/internal/leads/domain"
	"novahub_backend/internal/leads/pitch"
	"novahub_backend/internal/leads/repository"
	"novahub_backend/internal/leads/scoring"
	"novahub_backend/internal/leads/service"
	"novahub_backend/internal/leads/transport"
	"novahub_backend/platform/httpkit"
	"novahub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// UserReader resolves a user's display name for pitch signatures.
type UserReader interface {
	GetUserName(ctx context.Context, id uuid.UUID) (string, error)
}

// PitchMailer sends a generated pitch to the lead's email address.
type PitchMailer interface {
	SendPitch(ctx context.Context, to, subject, body string) error
}

type Handler struct {
	svc     *service.Service
	scorer  *scoring.Service
	pitcher *pitch.Generator
	users   UserReader
	mailer  PitchMailer
	val     *validator.Validator
	baseURL string
}

func New(svc *service.Service, scorer *scoring.Service, pitcher *pitch.Generator, users UserReader, mailer PitchMailer, val *validator.Validator, baseURL string) *Handler {
	return &Handler{
		svc:     svc,
		scorer:  scorer,
		pitcher: pitcher,
		users:   users,
		mailer:  mailer,
		val:     val,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), identity.UserID(), repository.CreateParams{
		ProjectID:       req.ProjectID,
		Nombre:          req.Nombre,
		Empresa:         req.Empresa,
		Email:           req.Email,
		Telefono:        req.Telefono,
		Etapa:           domain.Etapa(req.Etapa),
		ValorPotencial:  req.ValorPotencial,
		Engagement:      req.Engagement,
		LastContactDate: req.LastContactDate,
		Notas:           req.Notas,
		OwnerID:         req.OwnerID,
		CreatedBy:       identity.UserID(),
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, lead)
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

	filter := repository.ListFilter{
		Etapa:  domain.Etapa(c.Query("etapa")),
		Search: c.Query("q"),
	}

	leads, err := h.svc.List(c.Request.Context(), identity.UserID(), projectID, filter)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), identity.UserID(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), identity.UserID(), id, repository.UpdateParams{
		Nombre:          req.Nombre,
		Empresa:         req.Empresa,
		Email:           req.Email,
		Telefono:        req.Telefono,
		ValorPotencial:  req.ValorPotencial,
		Engagement:      req.Engagement,
		LastContactDate: req.LastContactDate,
		Notas:           req.Notas,
		OwnerID:         req.OwnerID,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.UserID(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) ChangeStage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	var req transport.ChangeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.ChangeStage(c.Request.Context(), identity.UserID(), id, domain.Etapa(req.Etapa))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) StatusHistory(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	history, err := h.svc.StatusHistory(c.Request.Context(), identity.UserID(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, history)
}

// Score computes the lead's priority score and stores the result in the
// lead's metadata. The full breakdown is returned to the caller.
func (h *Handler) Score(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	// Membership check happens here; the scorer itself is project-agnostic.
	if _, err := h.svc.Get(c.Request.Context(), identity.UserID(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	result, err := h.scorer.Score(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GeneratePitch(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	var req transport.GeneratePitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), identity.UserID(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	senderNombre, err := h.users.GetUserName(c.Request.Context(), identity.UserID())
	if err != nil {
		senderNombre = ""
	}

	empresa := ""
	if lead.Empresa != nil {
		empresa = *lead.Empresa
	}
	generated, err := h.pitcher.Generate(c.Request.Context(), pitch.Input{
		LeadNombre:     lead.Nombre,
		LeadEmpresa:    empresa,
		Etapa:          lead.Etapa,
		ValorPotencial: lead.ValorPotencial,
		TemplateType:   req.TemplateType,
		Tone:           req.Tone,
		SenderNombre:   senderNombre,
		Contexto:       req.Contexto,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	sent := false
	if req.Send {
		if lead.Email == nil || *lead.Email == "" {
			httpkit.Error(c, http.StatusBadRequest, "lead has no email address", nil)
			return
		}
		if err := h.mailer.SendPitch(c.Request.Context(), *lead.Email, generated.Subject, generated.Body); err != nil {
			httpkit.HandleError(c, err)
			return
		}
		sent = true
	}

	httpkit.OK(c, transport.PitchResponse{
		LeadID:  lead.ID,
		Subject: generated.Subject,
		Body:    generated.Body,
		Source:  generated.Source,
		Sent:    sent,
	})
}

// ShareQR renders a QR code PNG pointing at the lead's detail page, for
// quick handoff between devices during events or site visits.
func (h *Handler) ShareQR(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	if _, err := h.svc.Get(c.Request.Context(), identity.UserID(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	png, err := qrcode.Encode(h.baseURL+"/leads/"+id.String(), qrcode.Medium, 256)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
