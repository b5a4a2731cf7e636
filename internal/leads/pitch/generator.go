// Package pitch generates outreach emails for leads, with an LLM-backed
// generator and deterministic templates as fallback.
package pitch

import (
	"context"
	"fmt"
	"strings"

	"novahub_backend/internal/leads/domain"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"
)

const (
	TemplateColdOutreach   = "cold_outreach"
	TemplateFollowUp       = "follow_up"
	TemplateProposal       = "proposal"
	TemplateMeetingRequest = "meeting_request"

	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
)

var templateTypes = map[string]bool{
	TemplateColdOutreach:   true,
	TemplateFollowUp:       true,
	TemplateProposal:       true,
	TemplateMeetingRequest: true,
}

var tones = map[string]bool{
	ToneProfessional: true,
	ToneCasual:       true,
	ToneFriendly:     true,
	ToneFormal:       true,
}

// Input describes the lead and the kind of email to produce.
type Input struct {
	LeadNombre     string
	LeadEmpresa    string
	Etapa          domain.Etapa
	ValorPotencial float64
	TemplateType   string
	Tone           string
	SenderNombre   string
	Contexto       string
}

// Pitch is a generated email. Source records whether the LLM or the
// template fallback produced it.
type Pitch struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Source  string `json:"source"`
}

// Drafter produces an email draft from a prompt. Implemented by the ADK agent.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

type Generator struct {
	drafter Drafter
	log     *logger.Logger
}

// New creates a generator. A nil drafter means AI is disabled and every
// pitch comes from the templates.
func New(drafter Drafter, log *logger.Logger) *Generator {
	return &Generator{drafter: drafter, log: log.WithModule("leads.pitch")}
}

func (g *Generator) Generate(ctx context.Context, in Input) (Pitch, error) {
	if err := validate(in); err != nil {
		return Pitch{}, err
	}
	if in.Tone == "" {
		in.Tone = ToneProfessional
	}

	if g.drafter != nil {
		body, err := g.drafter.Draft(ctx, buildPrompt(in))
		if err == nil && strings.TrimSpace(body) != "" {
			return Pitch{
				Subject: subjectFor(in),
				Body:    strings.TrimSpace(body),
				Source:  "ai",
			}, nil
		}
		if err != nil {
			g.log.Warn("ai pitch generation failed, using template", "error", err)
		}
	}

	return fromTemplate(in), nil
}

func validate(in Input) error {
	if strings.TrimSpace(in.LeadNombre) == "" {
		return apperr.Validation("lead name is required")
	}
	if !templateTypes[in.TemplateType] {
		return apperr.Validation("unknown template type: " + in.TemplateType)
	}
	if in.Tone != "" && !tones[in.Tone] {
		return apperr.Validation("unknown tone: " + in.Tone)
	}
	return nil
}

func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Escribe el cuerpo de un email de ventas en español.\n")
	fmt.Fprintf(&b, "Tipo: %s. Tono: %s.\n", in.TemplateType, in.Tone)
	fmt.Fprintf(&b, "Destinatario: %s", in.LeadNombre)
	if in.LeadEmpresa != "" {
		fmt.Fprintf(&b, " (%s)", in.LeadEmpresa)
	}
	b.WriteString(".\n")
	if in.Etapa != "" {
		fmt.Fprintf(&b, "Etapa del pipeline: %s.\n", in.Etapa)
	}
	if in.ValorPotencial > 0 {
		fmt.Fprintf(&b, "Valor potencial estimado: %.0f EUR.\n", in.ValorPotencial)
	}
	if in.Contexto != "" {
		fmt.Fprintf(&b, "Contexto adicional: %s\n", in.Contexto)
	}
	if in.SenderNombre != "" {
		fmt.Fprintf(&b, "Firma como: %s.\n", in.SenderNombre)
	}
	b.WriteString("Responde solo con el cuerpo del email, sin asunto.")
	return b.String()
}

func subjectFor(in Input) string {
	empresa := in.LeadEmpresa
	if empresa == "" {
		empresa = in.LeadNombre
	}
	switch in.TemplateType {
	case TemplateFollowUp:
		return "Seguimiento de nuestra conversación - " + empresa
	case TemplateProposal:
		return "Propuesta para " + empresa
	case TemplateMeetingRequest:
		return "¿Agendamos una reunión? - " + empresa
	default:
		return "Una idea para " + empresa
	}
}

func fromTemplate(in Input) Pitch {
	var body strings.Builder
	body.WriteString(greeting(in.Tone, in.LeadNombre))
	body.WriteString("\n\n")
	body.WriteString(templateBody(in))
	body.WriteString("\n\n")
	body.WriteString(closing(in.Tone))
	if in.SenderNombre != "" {
		body.WriteString("\n")
		body.WriteString(in.SenderNombre)
	}

	return Pitch{
		Subject: subjectFor(in),
		Body:    body.String(),
		Source:  "template",
	}
}

func greeting(tone, nombre string) string {
	switch tone {
	case ToneCasual, ToneFriendly:
		return "¡Hola " + nombre + "!"
	case ToneFormal:
		return "Estimado/a " + nombre + ":"
	default:
		return "Hola " + nombre + ","
	}
}

func closing(tone string) string {
	switch tone {
	case ToneCasual, ToneFriendly:
		return "¡Un abrazo!"
	case ToneFormal:
		return "Atentamente,"
	default:
		return "Un saludo,"
	}
}

func templateBody(in Input) string {
	empresa := in.LeadEmpresa
	if empresa == "" {
		empresa = "tu empresa"
	}

	switch in.TemplateType {
	case TemplateFollowUp:
		return "Quería retomar nuestra última conversación sobre cómo podemos ayudar a " + empresa +
			" a alcanzar sus objetivos. ¿Has tenido ocasión de revisar la información que te envié? " +
			"Estaré encantado de resolver cualquier duda."
	case TemplateProposal:
		return "Tal y como hablamos, te adjunto nuestra propuesta para " + empresa +
			". La hemos preparado teniendo en cuenta vuestras necesidades actuales y creemos que " +
			"el retorno puede ser significativo. ¿Te parece si la repasamos juntos esta semana?"
	case TemplateMeetingRequest:
		return "Me gustaría proponerte una breve reunión para conocer mejor los retos de " + empresa +
			" y ver si tiene sentido colaborar. ¿Tienes 30 minutos esta semana o la próxima?"
	default:
		return "Te escribo porque trabajamos con empresas como " + empresa +
			" ayudándolas a mejorar sus resultados, y creo que podríamos aportaros valor. " +
			"¿Te parecería bien una llamada rápida para contártelo?"
	}
}
