// Package scoring computes lead priority scores from four weighted factors:
// contact recency, potential deal value, engagement level and pipeline stage.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"novahub_backend/internal/events"
	"novahub_backend/internal/leads/domain"
	"novahub_backend/internal/leads/repository"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	// Factor ceilings. The four together cap the total at 100.
	maxRecencyScore    = 25
	maxValueScore      = 30
	maxEngagementScore = 20
	maxStageScore      = 25

	// defaultEngagement applies when a lead has no recorded engagement level.
	defaultEngagement = 5
)

// Breakdown holds the four factor sub-scores.
type Breakdown struct {
	RecencyScore    int `json:"recency_score"`
	ValueScore      int `json:"value_score"`
	EngagementScore int `json:"engagement_score"`
	StageScore      int `json:"stage_score"`
}

// Result is the full scoring outcome for a single lead.
type Result struct {
	LeadID         uuid.UUID             `json:"lead_id"`
	Score          int                   `json:"score"`
	Classification domain.Classification `json:"classification"`
	NextAction     string                `json:"next_action"`
	Reasoning      string                `json:"reasoning"`
	Breakdown      Breakdown             `json:"score_breakdown"`
	ScoredAt       time.Time             `json:"scored_at"`
}

// Repo is the subset of the leads repository the scorer needs.
type Repo interface {
	Get(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	WriteScore(ctx context.Context, id uuid.UUID, score int, classification domain.Classification, scoredAt time.Time) error
	ListOpenLeadIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Service struct {
	repo Repo
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

func New(repo Repo, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log.WithModule("leads.scoring"),
		now:  time.Now,
	}
}

// Score computes and persists the score for one lead. The breakdown is
// returned even though only the total, classification and timestamp are
// written back to the lead's metadata.
func (s *Service) Score(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.repo.Get(ctx, leadID)
	if err != nil {
		return Result{}, err
	}

	result := s.compute(lead)
	if err := s.repo.WriteScore(ctx, leadID, result.Score, result.Classification, result.ScoredAt); err != nil {
		return Result{}, err
	}

	s.bus.Publish(ctx, events.LeadScored{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		ProjectID:      lead.ProjectID,
		OwnerID:        lead.OwnerID,
		Nombre:         lead.Nombre,
		TotalScore:     result.Score,
		Classification: string(result.Classification),
	})
	s.log.Info("lead scored",
		"leadId", leadID,
		"score", result.Score,
		"classification", result.Classification,
	)

	return result, nil
}

// RescoreOpenLeads recomputes every open lead's score. Used by the periodic
// background task; individual failures are logged and skipped so one bad
// lead does not stall the whole run.
func (s *Service) RescoreOpenLeads(ctx context.Context) (int, error) {
	ids, err := s.repo.ListOpenLeadIDs(ctx)
	if err != nil {
		return 0, err
	}

	scored := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return scored, ctx.Err()
		}
		if _, err := s.Score(ctx, id); err != nil {
			s.log.Warn("rescore failed for lead", "leadId", id, "error", err)
			continue
		}
		scored++
	}
	return scored, nil
}

func (s *Service) compute(lead repository.Lead) Result {
	now := s.now()

	recency := recencyScore(lead.LastContactDate, now)
	value := valueScore(lead.ValorPotencial)
	engagement := engagementScore(lead.Engagement)
	stage := stageScore(lead.Etapa)

	total := recency + value + engagement + stage
	classification := classify(total)

	return Result{
		LeadID: lead.ID,
		Score:  total,
		Breakdown: Breakdown{
			RecencyScore:    recency,
			ValueScore:      value,
			EngagementScore: engagement,
			StageScore:      stage,
		},
		Classification: classification,
		NextAction:     nextActions[classification],
		Reasoning: fmt.Sprintf(
			"Score basado en: Recencia (%d/%d), Valor (%d/%d), Engagement (%d/%d), Etapa (%d/%d)",
			recency, maxRecencyScore, value, maxValueScore,
			engagement, maxEngagementScore, stage, maxStageScore,
		),
		ScoredAt: now.UTC(),
	}
}

// recencyScore rewards recent contact. A lead that was never contacted gets
// a small benefit of the doubt (5) while a lead gone quiet for more than 30
// days gets nothing.
func recencyScore(lastContact *time.Time, now time.Time) int {
	if lastContact == nil {
		return 5
	}

	days := int(math.Floor(now.Sub(*lastContact).Hours() / 24))
	switch {
	case days <= 1:
		return 25
	case days <= 3:
		return 20
	case days <= 7:
		return 15
	case days <= 14:
		return 10
	case days <= 30:
		return 5
	default:
		return 0
	}
}

// valueScore maps the potential deal value in euros to score points.
// Every lead gets at least 5, including those with no recorded value.
func valueScore(valorPotencial float64) int {
	switch {
	case valorPotencial >= 50000:
		return 30
	case valorPotencial >= 25000:
		return 25
	case valorPotencial >= 10000:
		return 20
	case valorPotencial >= 5000:
		return 15
	case valorPotencial >= 1000:
		return 10
	default:
		return 5
	}
}

// engagementScore doubles the 0-10 engagement level, capped at 20.
// Inputs outside the scale are clamped before doubling.
func engagementScore(engagement *int) int {
	level := defaultEngagement
	if engagement != nil {
		level = *engagement
		if level < 0 {
			level = 0
		}
		if level > 10 {
			level = 10
		}
	}
	return min(maxEngagementScore, level*2)
}

func stageScore(etapa domain.Etapa) int {
	switch etapa {
	case domain.EtapaProspecto:
		return 5
	case domain.EtapaContactado:
		return 10
	case domain.EtapaCualificado:
		return 15
	case domain.EtapaPropuesta:
		return 20
	case domain.EtapaEnNegociacion:
		return 25
	default:
		// Closed stages (ganado, perdido) and unknown values score zero.
		return 0
	}
}

func classify(total int) domain.Classification {
	switch {
	case total >= 80:
		return domain.ClassificationHot
	case total >= 60:
		return domain.ClassificationSQL
	case total >= 40:
		return domain.ClassificationMQL
	case total >= 20:
		return domain.ClassificationWarm
	default:
		return domain.ClassificationCold
	}
}

var nextActions = map[domain.Classification]string{
	domain.ClassificationHot:  "🔥 Contactar AHORA - Prioridad máxima. Agendar demo o llamada de cierre.",
	domain.ClassificationSQL:  "💼 Enviar propuesta personalizada. Agendar reunión con stakeholders.",
	domain.ClassificationMQL:  "📊 Nutrir con contenido relevante. Agendar discovery call.",
	domain.ClassificationWarm: "🌡️ Mantener contacto periódico. Enviar recursos educativos.",
	domain.ClassificationCold: "❄️ Bajo prioridad. Incluir en campañas de nurturing automático.",
}
