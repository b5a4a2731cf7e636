package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	ProjectID       uuid.UUID  `json:"projectId" validate:"required"`
	Nombre          string     `json:"nombre" validate:"required,min=2,max=200"`
	Empresa         *string    `json:"empresa,omitempty" validate:"omitempty,max=200"`
	Email           *string    `json:"email,omitempty" validate:"omitempty,email"`
	Telefono        *string    `json:"telefono,omitempty" validate:"omitempty,max=32"`
	Etapa           string     `json:"etapa,omitempty"`
	ValorPotencial  float64    `json:"valorPotencial" validate:"gte=0"`
	Engagement      *int       `json:"engagement,omitempty" validate:"omitempty,gte=0,lte=10"`
	LastContactDate *time.Time `json:"lastContactDate,omitempty"`
	Notas           *string    `json:"notas,omitempty" validate:"omitempty,max=5000"`
	OwnerID         *uuid.UUID `json:"ownerId,omitempty"`
}

type UpdateLeadRequest struct {
	Nombre          string     `json:"nombre" validate:"required,min=2,max=200"`
	Empresa         *string    `json:"empresa,omitempty" validate:"omitempty,max=200"`
	Email           *string    `json:"email,omitempty" validate:"omitempty,email"`
	Telefono        *string    `json:"telefono,omitempty" validate:"omitempty,max=32"`
	ValorPotencial  float64    `json:"valorPotencial" validate:"gte=0"`
	Engagement      *int       `json:"engagement,omitempty" validate:"omitempty,gte=0,lte=10"`
	LastContactDate *time.Time `json:"lastContactDate,omitempty"`
	Notas           *string    `json:"notas,omitempty" validate:"omitempty,max=5000"`
	OwnerID         *uuid.UUID `json:"ownerId,omitempty"`
}

type ChangeStageRequest struct {
	Etapa string `json:"etapa" validate:"required"`
}

type GeneratePitchRequest struct {
	TemplateType string `json:"templateType" validate:"required,oneof=cold_outreach follow_up proposal meeting_request"`
	Tone         string `json:"tone,omitempty" validate:"omitempty,oneof=professional casual friendly formal"`
	Contexto     string `json:"contexto,omitempty" validate:"omitempty,max=2000"`
	Send         bool   `json:"send,omitempty"`
}

type PitchResponse struct {
	LeadID  uuid.UUID `json:"leadId"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Source  string    `json:"source"`
	Sent    bool      `json:"sent"`
}
