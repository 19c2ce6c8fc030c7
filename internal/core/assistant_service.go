package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

const assistantPersona = "You are PetCare Assistant, a friendly helper for a pet-care services marketplace. " +
	"Answer questions about pet care and about the services listed below. " +
	"If a question is unrelated to pets or the marketplace, politely steer the conversation back."

// ServiceCatalog lists the services the assistant may talk about.
type ServiceCatalog interface {
	ActiveServices(ctx context.Context) ([]*models.Service, error)
}

// AssistantReply is the assistant answer together with the session it belongs to.
type AssistantReply struct {
	Response  string
	SessionID string
}

// AssistantService answers chat messages with a Gemini model through its OpenAI compatible API.
type AssistantService struct {
	llm      ChatCompleter
	sessions SessionStore
	catalog  ServiceCatalog
	model    string
	logger   *zap.Logger
}

// NewAssistantService creates the assistant. llm may be nil when no API key is configured.
func NewAssistantService(llm ChatCompleter, sessions SessionStore, catalog ServiceCatalog, model string, logger *zap.Logger) *AssistantService {
	return &AssistantService{llm: llm, sessions: sessions, catalog: catalog, model: model, logger: logger}
}

// Reply answers a user message with the service catalogue as context.
func (s *AssistantService) Reply(ctx context.Context, req models.AssistantRequest) (*AssistantReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if s.llm == nil {
		return nil, ErrAssistantUnavailable
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Failed to load assistant history, continuing without it", zap.String("sessionID", sessionID), zap.Error(err))
		history = nil
	}

	messages := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt(ctx)}}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{Model: s.model, Messages: messages})
	if err != nil {
		s.logger.Error("Assistant completion failed", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAssistantUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrAssistantUpstream)
	}
	answer := resp.Choices[0].Message.Content

	if err := s.sessions.Append(ctx, sessionID,
		models.ChatTurn{Role: "user", Content: message},
		models.ChatTurn{Role: "assistant", Content: answer},
	); err != nil {
		s.logger.Warn("Failed to store assistant history", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return &AssistantReply{Response: answer, SessionID: sessionID}, nil
}

// systemPrompt lists the active services. Catalogue errors only drop the list.
func (s *AssistantService) systemPrompt(ctx context.Context) string {
	var b strings.Builder
	b.WriteString(assistantPersona)

	services, err := s.catalog.ActiveServices(ctx)
	if err != nil {
		s.logger.Warn("Failed to load services for assistant prompt", zap.Error(err))
		return b.String()
	}
	if len(services) == 0 {
		b.WriteString("\n\nNo services are currently available.")
		return b.String()
	}
	b.WriteString("\n\nAvailable services:")
	for _, svc := range services {
		fmt.Fprintf(&b, "\n- %s", svc.Name)
		if svc.Category != "" {
			fmt.Fprintf(&b, " (%s)", svc.Category)
		}
		fmt.Fprintf(&b, ": $%.2f", svc.Price)
		if svc.Duration != "" {
			fmt.Fprintf(&b, ", %s", svc.Duration)
		}
		if svc.Description != "" {
			fmt.Fprintf(&b, ". %s", svc.Description)
		}
	}
	return b.String()
}
