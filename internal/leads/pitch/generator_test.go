package pitch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"novahub_backend/internal/leads/domain"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"
)

type stubDrafter struct {
	body string
	err  error
}

func (s *stubDrafter) Draft(ctx context.Context, prompt string) (string, error) {
	return s.body, s.err
}

func testInput() Input {
	return Input{
		LeadNombre:     "María López",
		LeadEmpresa:    "Acme SL",
		Etapa:          domain.EtapaCualificado,
		ValorPotencial: 12000,
		TemplateType:   TemplateColdOutreach,
		Tone:           ToneProfessional,
		SenderNombre:   "Carlos",
	}
}

func TestGenerate_UsesDrafterWhenAvailable(t *testing.T) {
	g := New(&stubDrafter{body: "Hola María, te escribo porque..."}, logger.New("development"))

	p, err := g.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if p.Source != "ai" {
		t.Errorf("source = %q, want ai", p.Source)
	}
	if p.Subject == "" || p.Body == "" {
		t.Errorf("expected non-empty subject and body, got %+v", p)
	}
}

func TestGenerate_FallsBackToTemplateOnDrafterError(t *testing.T) {
	g := New(&stubDrafter{err: errors.New("upstream timeout")}, logger.New("development"))

	p, err := g.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if p.Source != "template" {
		t.Errorf("source = %q, want template", p.Source)
	}
	if !strings.Contains(p.Body, "Acme SL") {
		t.Errorf("template body should mention the company, got %q", p.Body)
	}
}

func TestGenerate_NilDrafterUsesTemplates(t *testing.T) {
	g := New(nil, logger.New("development"))

	for _, tmpl := range []string{TemplateColdOutreach, TemplateFollowUp, TemplateProposal, TemplateMeetingRequest} {
		in := testInput()
		in.TemplateType = tmpl

		p, err := g.Generate(context.Background(), in)
		if err != nil {
			t.Fatalf("Generate(%s) returned error: %v", tmpl, err)
		}
		if p.Source != "template" {
			t.Errorf("Generate(%s) source = %q, want template", tmpl, p.Source)
		}
		if !strings.Contains(p.Body, "María López") {
			t.Errorf("Generate(%s) body should greet the lead, got %q", tmpl, p.Body)
		}
		if !strings.HasSuffix(p.Body, "Carlos") {
			t.Errorf("Generate(%s) body should end with the sender signature, got %q", tmpl, p.Body)
		}
	}
}

func TestGenerate_RejectsUnknownTemplateAndTone(t *testing.T) {
	g := New(nil, logger.New("development"))

	in := testInput()
	in.TemplateType = "carta_formal"
	if _, err := g.Generate(context.Background(), in); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown template type: got %v, want validation error", err)
	}

	in = testInput()
	in.Tone = "agresivo"
	if _, err := g.Generate(context.Background(), in); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown tone: got %v, want validation error", err)
	}

	in = testInput()
	in.LeadNombre = "  "
	if _, err := g.Generate(context.Background(), in); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank lead name: got %v, want validation error", err)
	}
}

func TestGenerate_DefaultsToneToProfessional(t *testing.T) {
	g := New(nil, logger.New("development"))

	in := testInput()
	in.Tone = ""
	p, err := g.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(p.Body, "Hola María López,") {
		t.Errorf("expected professional greeting, got %q", p.Body)
	}
}
