package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"novahub_backend/internal/events"
	"novahub_backend/internal/leads/domain"
	"novahub_backend/internal/leads/repository"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	lead       repository.Lead
	getErr     error
	writeErr   error
	written    bool
	wroteScore int
	wroteClass domain.Classification
	openIDs    []uuid.UUID
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	if f.getErr != nil {
		return repository.Lead{}, f.getErr
	}
	return f.lead, nil
}

func (f *fakeRepo) WriteScore(ctx context.Context, id uuid.UUID, score int, classification domain.Classification, scoredAt time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = true
	f.wroteScore = score
	f.wroteClass = classification
	return nil
}

func (f *fakeRepo) ListOpenLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f.openIDs, nil
}

func newTestService(repo *fakeRepo, now time.Time) *Service {
	log := logger.New("development")
	svc := New(repo, events.NewInMemoryBus(log), log)
	svc.now = func() time.Time { return now }
	return svc
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func daysAgo(now time.Time, d int) *time.Time {
	t := now.Add(-time.Duration(d) * 24 * time.Hour)
	return &t
}

func TestScore_ProposalStageExample(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{lead: repository.Lead{
		ID:              uuid.New(),
		Etapa:           domain.EtapaPropuesta,
		ValorPotencial:  12000,
		Engagement:      intPtr(8),
		LastContactDate: daysAgo(now, 2),
	}}
	svc := newTestService(repo, now)

	result, err := svc.Score(context.Background(), repo.lead.ID)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if result.Breakdown.RecencyScore != 20 {
		t.Errorf("recency = %d, want 20", result.Breakdown.RecencyScore)
	}
	if result.Breakdown.ValueScore != 20 {
		t.Errorf("value = %d, want 20", result.Breakdown.ValueScore)
	}
	if result.Breakdown.EngagementScore != 16 {
		t.Errorf("engagement = %d, want 16", result.Breakdown.EngagementScore)
	}
	if result.Breakdown.StageScore != 20 {
		t.Errorf("stage = %d, want 20", result.Breakdown.StageScore)
	}
	if result.Score != 76 {
		t.Errorf("total = %d, want 76", result.Score)
	}
	if result.Classification != domain.ClassificationSQL {
		t.Errorf("classification = %q, want sql", result.Classification)
	}
}

func TestScore_NegotiationStageExample(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{lead: repository.Lead{
		ID:              uuid.New(),
		Etapa:           domain.EtapaEnNegociacion,
		ValorPotencial:  60000,
		LastContactDate: timePtr(now.Add(-2 * time.Hour)),
	}}
	svc := newTestService(repo, now)

	result, err := svc.Score(context.Background(), repo.lead.ID)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if result.Score != 90 {
		t.Errorf("total = %d, want 90 (25+30+10+25)", result.Score)
	}
	if result.Classification != domain.ClassificationHot {
		t.Errorf("classification = %q, want hot", result.Classification)
	}
}

func TestRecencyScore(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		lastContact *time.Time
		want        int
	}{
		{"never contacted", nil, 5},
		{"same day", timePtr(now.Add(-6 * time.Hour)), 25},
		{"one day ago", daysAgo(now, 1), 25},
		{"three days ago", daysAgo(now, 3), 20},
		{"seven days ago", daysAgo(now, 7), 15},
		{"fourteen days ago", daysAgo(now, 14), 10},
		{"thirty days ago", daysAgo(now, 30), 5},
		{"thirty-one days ago", daysAgo(now, 31), 0},
		{"half a year ago", daysAgo(now, 180), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recencyScore(tt.lastContact, now); got != tt.want {
				t.Errorf("recencyScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueScore(t *testing.T) {
	tests := []struct {
		valor float64
		want  int
	}{
		{0, 5},
		{999, 5},
		{1000, 10},
		{4999.99, 10},
		{5000, 15},
		{10000, 20},
		{25000, 25},
		{49999, 25},
		{50000, 30},
		{250000, 30},
	}

	for _, tt := range tests {
		if got := valueScore(tt.valor); got != tt.want {
			t.Errorf("valueScore(%v) = %d, want %d", tt.valor, got, tt.want)
		}
	}
}

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name       string
		engagement *int
		want       int
	}{
		{"unset defaults to 5", nil, 10},
		{"zero", intPtr(0), 0},
		{"mid scale", intPtr(7), 14},
		{"max scale", intPtr(10), 20},
		{"above scale clamps", intPtr(15), 20},
		{"negative clamps", intPtr(-3), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engagementScore(tt.engagement); got != tt.want {
				t.Errorf("engagementScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStageScore(t *testing.T) {
	tests := []struct {
		etapa domain.Etapa
		want  int
	}{
		{domain.EtapaProspecto, 5},
		{domain.EtapaContactado, 10},
		{domain.EtapaCualificado, 15},
		{domain.EtapaPropuesta, 20},
		{domain.EtapaEnNegociacion, 25},
		{domain.EtapaGanado, 0},
		{domain.EtapaPerdido, 0},
		{domain.Etapa("desconocida"), 0},
	}

	for _, tt := range tests {
		if got := stageScore(tt.etapa); got != tt.want {
			t.Errorf("stageScore(%q) = %d, want %d", tt.etapa, got, tt.want)
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		total int
		want  domain.Classification
	}{
		{100, domain.ClassificationHot},
		{80, domain.ClassificationHot},
		{79, domain.ClassificationSQL},
		{60, domain.ClassificationSQL},
		{59, domain.ClassificationMQL},
		{40, domain.ClassificationMQL},
		{39, domain.ClassificationWarm},
		{20, domain.ClassificationWarm},
		{19, domain.ClassificationCold},
		{0, domain.ClassificationCold},
	}

	for _, tt := range tests {
		if got := classify(tt.total); got != tt.want {
			t.Errorf("classify(%d) = %q, want %q", tt.total, got, tt.want)
		}
	}
}

func TestScore_ReasoningAndNextAction(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{lead: repository.Lead{
		ID:              uuid.New(),
		Etapa:           domain.EtapaPropuesta,
		ValorPotencial:  12000,
		Engagement:      intPtr(8),
		LastContactDate: daysAgo(now, 2),
	}}
	svc := newTestService(repo, now)

	result, err := svc.Score(context.Background(), repo.lead.ID)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	wantReasoning := "Score basado en: Recencia (20/25), Valor (20/30), Engagement (16/20), Etapa (20/25)"
	if result.Reasoning != wantReasoning {
		t.Errorf("reasoning = %q, want %q", result.Reasoning, wantReasoning)
	}
	if result.NextAction != nextActions[domain.ClassificationSQL] {
		t.Errorf("nextAction = %q, want sql action", result.NextAction)
	}
}

func TestScore_PersistsTotalAndClassification(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{lead: repository.Lead{
		ID:             uuid.New(),
		Etapa:          domain.EtapaContactado,
		ValorPotencial: 2000,
	}}
	svc := newTestService(repo, now)

	result, err := svc.Score(context.Background(), repo.lead.ID)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if !repo.written {
		t.Fatal("expected score to be written to the lead metadata")
	}
	if repo.wroteScore != result.Score {
		t.Errorf("persisted score = %d, want %d", repo.wroteScore, result.Score)
	}
	if repo.wroteClass != result.Classification {
		t.Errorf("persisted classification = %q, want %q", repo.wroteClass, result.Classification)
	}
}

func TestScore_WriteFailureFailsRequest(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		lead:     repository.Lead{ID: uuid.New(), Etapa: domain.EtapaProspecto},
		writeErr: errors.New("connection reset"),
	}
	svc := newTestService(repo, now)

	if _, err := svc.Score(context.Background(), repo.lead.ID); err == nil {
		t.Fatal("expected error when metadata write fails")
	}
}

func TestScore_TotalNeverExceedsHundred(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{lead: repository.Lead{
		ID:              uuid.New(),
		Etapa:           domain.EtapaEnNegociacion,
		ValorPotencial:  1000000,
		Engagement:      intPtr(10),
		LastContactDate: timePtr(now),
	}}
	svc := newTestService(repo, now)

	result, err := svc.Score(context.Background(), repo.lead.ID)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("max total = %d, want 100", result.Score)
	}
}
