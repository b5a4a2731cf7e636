// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"novahub_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	ProjectID uuid.UUID  `json:"projectId"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	Nombre    string     `json:"nombre"`
	Empresa   string     `json:"empresa,omitempty"`
	Etapa     string     `json:"etapa"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published when a lead moves through the pipeline.
type LeadStageChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	ProjectID uuid.UUID `json:"projectId"`
	FromEtapa string    `json:"fromEtapa"`
	ToEtapa   string    `json:"toEtapa"`
	ChangedBy uuid.UUID `json:"changedBy"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// LeadScored is published after a lead score has been computed and persisted.
type LeadScored struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	ProjectID      uuid.UUID  `json:"projectId"`
	OwnerID        *uuid.UUID `json:"ownerId,omitempty"`
	Nombre         string     `json:"nombre"`
	TotalScore     int        `json:"totalScore"`
	Classification string     `json:"classification"`
}

func (e LeadScored) EventName() string { return "leads.lead.scored" }

// =============================================================================
// Tasks Domain Events
// =============================================================================

// TaskCompleted is published when a task is finished with feedback.
type TaskCompleted struct {
	BaseEvent
	TaskID    uuid.UUID `json:"taskId"`
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	Titulo    string    `json:"titulo"`
}

func (e TaskCompleted) EventName() string { return "tasks.task.completed" }

// =============================================================================
// OBV Domain Events
// =============================================================================

// OBVCreated is published when a business objective is registered.
type OBVCreated struct {
	BaseEvent
	OBVID     uuid.UUID `json:"obvId"`
	ProjectID uuid.UUID `json:"projectId"`
	CreatedBy uuid.UUID `json:"createdBy"`
	Titulo    string    `json:"titulo"`
	Margen    float64   `json:"margen"`
}

func (e OBVCreated) EventName() string { return "obvs.obv.created" }

// OBVValidated is published when a peer resolves an OBV validation.
type OBVValidated struct {
	BaseEvent
	OBVID       uuid.UUID `json:"obvId"`
	ProjectID   uuid.UUID `json:"projectId"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	ValidatedBy uuid.UUID `json:"validatedBy"`
	Titulo      string    `json:"titulo"`
	Approved    bool      `json:"approved"`
}

func (e OBVValidated) EventName() string { return "obvs.obv.validated" }

// =============================================================================
// KPI Domain Events
// =============================================================================

// KPIValidated is published when a KPI record receives a peer validation.
type KPIValidated struct {
	BaseEvent
	KPIID       uuid.UUID `json:"kpiId"`
	ProjectID   uuid.UUID `json:"projectId"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	ValidatedBy uuid.UUID `json:"validatedBy"`
	Tipo        string    `json:"tipo"`
	Approved    bool      `json:"approved"`
}

func (e KPIValidated) EventName() string { return "kpis.kpi.validated" }

// =============================================================================
// Finance Domain Events
// =============================================================================

// StripeSyncCompleted is published after a transaction sync run finishes.
type StripeSyncCompleted struct {
	BaseEvent
	ProjectID    uuid.UUID `json:"projectId"`
	Synced       int       `json:"synced"`
	TotalRevenue float64   `json:"totalRevenue"`
	MRR          float64   `json:"mrr"`
}

func (e StripeSyncCompleted) EventName() string { return "finance.stripe.sync_completed" }
