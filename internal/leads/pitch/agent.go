package pitch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"novahub_backend/platform/ai/kimi"
)

const pitchAppName = "pitch-writer"

const pitchSystemPrompt = `Eres un redactor comercial senior. Escribes emails de ventas ` +
	`en español: concretos, personalizados y sin tópicos vacíos. Máximo 150 palabras. ` +
	`No inventes datos sobre el destinatario que no se te hayan dado.`

// Agent drafts pitch emails through the Kimi model. Implements Drafter.
type Agent struct {
	runner         *runner.Runner
	sessionService session.Service
	runMu          sync.Mutex
}

func NewAgent(apiKey string) (*Agent, error) {
	model := kimi.NewModel(kimi.Config{APIKey: apiKey})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "PitchWriter",
		Model:       model,
		Description: "Drafts short sales outreach emails in Spanish.",
		Instruction: pitchSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create pitch agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        pitchAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("create pitch runner: %w", err)
	}

	return &Agent{runner: r, sessionService: sessionService}, nil
}

func (a *Agent) Draft(ctx context.Context, prompt string) (string, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	sessionID := uuid.New().String()
	userID := "pitch-" + sessionID

	_, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   pitchAppName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("pitch: create session: %w", err)
	}
	defer func() {
		_ = a.sessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   pitchAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var out strings.Builder
	for event, err := range a.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("pitch: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			out.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(out.String()), nil
}

var _ Drafter = (*Agent)(nil)
