package obvs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"novahub_backend/internal/adapters/storage"
	"novahub_backend/internal/events"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	StatusPendiente = "pendiente"
	StatusValidado  = "validado"
	StatusRechazado = "rechazado"

	// participantTolerance absorbs float rounding when shares are split
	// three ways (33.33 + 33.33 + 33.34).
	participantTolerance = 0.01

	minTituloLength = 3
)

// ProjectGuard checks project membership before OBV access.
type ProjectGuard interface {
	RequireMember(ctx context.Context, projectID, userID uuid.UUID) error
}

// Input is a new OBV before derived metrics are computed.
type Input struct {
	ProjectID      uuid.UUID
	Titulo         string
	Descripcion    *string
	Cantidad       float64
	PrecioUnitario float64
	Costes         float64
	Participants   []Participant
}

// Metrics are the derived financials of an OBV.
type Metrics struct {
	Facturacion      float64
	Margen           float64
	MargenPorcentual float64
}

type Service struct {
	repo   *Repository
	guard  ProjectGuard
	bus    events.Bus
	store  storage.StorageService
	bucket string
	log    *logger.Logger
}

func NewService(repo *Repository, guard ProjectGuard, bus events.Bus, store storage.StorageService, bucket string, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		bus:    bus,
		store:  store,
		bucket: bucket,
		log:    log.WithModule("obvs"),
	}
}

// ComputeMetrics derives revenue and margin from the raw inputs.
// Facturacion is cantidad times precio unitario; margen is what remains
// after costs. The percentage is rounded to two decimals.
func ComputeMetrics(cantidad, precioUnitario, costes float64) (Metrics, error) {
	if cantidad <= 0 {
		return Metrics{}, apperr.Validation("cantidad must be greater than zero")
	}
	if precioUnitario <= 0 {
		return Metrics{}, apperr.Validation("precio unitario must be greater than zero")
	}
	if costes < 0 {
		return Metrics{}, apperr.Validation("costes cannot be negative")
	}

	facturacion := cantidad * precioUnitario
	if costes > facturacion {
		return Metrics{}, apperr.Validation("costes cannot exceed facturacion")
	}

	margen := facturacion - costes
	margenPct := 0.0
	if facturacion > 0 {
		margenPct = math.Round(margen/facturacion*100*100) / 100
	}

	return Metrics{
		Facturacion:      facturacion,
		Margen:           margen,
		MargenPorcentual: margenPct,
	}, nil
}

// ValidateParticipants checks that every share is positive and the total
// is 100 percent, within tolerance.
func ValidateParticipants(participants []Participant) error {
	if len(participants) == 0 {
		return apperr.Validation("at least one participant is required")
	}

	seen := make(map[uuid.UUID]bool, len(participants))
	total := 0.0
	for _, p := range participants {
		if p.UserID == uuid.Nil {
			return apperr.Validation("participant userId is required")
		}
		if seen[p.UserID] {
			return apperr.Validation("duplicate participant: " + p.UserID.String())
		}
		seen[p.UserID] = true
		if p.Porcentaje <= 0 {
			return apperr.Validation("participant share must be greater than zero")
		}
		total += p.Porcentaje
	}

	if math.Abs(total-100) > participantTolerance {
		return apperr.Validation(fmt.Sprintf("participant shares must sum to 100, got %.2f", total))
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, in Input) (OBV, error) {
	if len(strings.TrimSpace(in.Titulo)) < minTituloLength {
		return OBV{}, apperr.Validation("titulo must be at least 3 characters")
	}
	if err := s.guard.RequireMember(ctx, in.ProjectID, actorID); err != nil {
		return OBV{}, err
	}

	metrics, err := ComputeMetrics(in.Cantidad, in.PrecioUnitario, in.Costes)
	if err != nil {
		return OBV{}, err
	}
	if err := ValidateParticipants(in.Participants); err != nil {
		return OBV{}, err
	}

	obv, err := s.repo.Create(ctx, CreateParams{
		ProjectID:        in.ProjectID,
		Titulo:           strings.TrimSpace(in.Titulo),
		Descripcion:      in.Descripcion,
		Cantidad:         in.Cantidad,
		PrecioUnitario:   in.PrecioUnitario,
		Costes:           in.Costes,
		Facturacion:      metrics.Facturacion,
		Margen:           metrics.Margen,
		MargenPorcentual: metrics.MargenPorcentual,
		CreatedBy:        actorID,
		Participants:     in.Participants,
	})
	if err != nil {
		return OBV{}, err
	}

	s.bus.Publish(ctx, events.OBVCreated{
		BaseEvent: events.NewBaseEvent(),
		OBVID:     obv.ID,
		ProjectID: obv.ProjectID,
		CreatedBy: actorID,
		Titulo:    obv.Titulo,
		Margen:    obv.Margen,
	})
	s.log.Info("obv created", "obvId", obv.ID, "margen", obv.Margen)

	return obv, nil
}

func (s *Service) Get(ctx context.Context, actorID, obvID uuid.UUID) (OBV, []Participant, error) {
	obv, err := s.repo.Get(ctx, obvID)
	if err != nil {
		return OBV{}, nil, err
	}
	if err := s.guard.RequireMember(ctx, obv.ProjectID, actorID); err != nil {
		return OBV{}, nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, obvID)
	if err != nil {
		return OBV{}, nil, err
	}
	return obv, participants, nil
}

func (s *Service) List(ctx context.Context, actorID, projectID uuid.UUID) ([]OBV, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, projectID)
}

func (s *Service) Delete(ctx context.Context, actorID, obvID uuid.UUID) error {
	obv, err := s.repo.Get(ctx, obvID)
	if err != nil {
		return err
	}
	if obv.CreatedBy != actorID {
		return apperr.Forbidden("only the creator can delete an obv")
	}
	if obv.Status == StatusValidado {
		return apperr.Conflict("validated obvs cannot be deleted")
	}
	return s.repo.Delete(ctx, obvID)
}

// Validate records a peer validation outcome. Creators cannot validate
// their own OBVs.
func (s *Service) Validate(ctx context.Context, actorID, obvID uuid.UUID, approve bool) (OBV, error) {
	obv, err := s.repo.Get(ctx, obvID)
	if err != nil {
		return OBV{}, err
	}
	if err := s.guard.RequireMember(ctx, obv.ProjectID, actorID); err != nil {
		return OBV{}, err
	}
	if obv.CreatedBy == actorID {
		return OBV{}, apperr.Forbidden("cannot validate your own obv")
	}

	status := StatusValidado
	if !approve {
		status = StatusRechazado
	}
	validated, err := s.repo.SetValidationStatus(ctx, obvID, actorID, status)
	if err != nil {
		return OBV{}, err
	}

	s.bus.Publish(ctx, events.OBVValidated{
		BaseEvent:   events.NewBaseEvent(),
		OBVID:       validated.ID,
		ProjectID:   validated.ProjectID,
		CreatedBy:   validated.CreatedBy,
		ValidatedBy: actorID,
		Titulo:      validated.Titulo,
		Approved:    approve,
	})

	return validated, nil
}

// UploadEvidence stores an evidence file for the OBV. For images the EXIF
// capture timestamp is extracted and stored alongside the object key.
func (s *Service) UploadEvidence(ctx context.Context, actorID, obvID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	obv, err := s.repo.Get(ctx, obvID)
	if err != nil {
		return "", err
	}
	if err := s.guard.RequireMember(ctx, obv.ProjectID, actorID); err != nil {
		return "", err
	}

	if err := s.store.ValidateContentType(contentType); err != nil {
		return "", apperr.Validation(err.Error())
	}
	if err := s.store.ValidateFileSize(size); err != nil {
		return "", apperr.Validation(err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(reader, size))
	if err != nil {
		return "", apperr.Internal(fmt.Sprintf("read evidence failed: %v", err))
	}

	folder := fmt.Sprintf("%s/%s", obv.ProjectID, obvID)
	key, err := s.store.UploadFile(ctx, s.bucket, folder, fileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Internal(fmt.Sprintf("upload evidence failed: %v", err))
	}

	var captured *time.Time
	if storage.IsImageContentType(contentType) {
		captured = storage.ExtractCaptureTime(data)
	}

	if err := s.repo.AttachEvidence(ctx, obvID, key, captured); err != nil {
		return "", err
	}
	return key, nil
}

// EvidenceURL returns a presigned download link for the OBV's evidence.
func (s *Service) EvidenceURL(ctx context.Context, actorID, obvID uuid.UUID) (*storage.PresignedURL, error) {
	obv, err := s.repo.Get(ctx, obvID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireMember(ctx, obv.ProjectID, actorID); err != nil {
		return nil, err
	}
	if obv.EvidenceKey == nil {
		return nil, apperr.NotFound("obv has no evidence attached")
	}
	return s.store.GenerateDownloadURL(ctx, s.bucket, *obv.EvidenceKey)
}
