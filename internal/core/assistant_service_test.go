package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"petcare-backend-go/internal/models"
)

type fakeCompleter struct {
	requests []openai.ChatCompletionRequest
	err      error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	answer := fmt.Sprintf("answer %d", len(f.requests))
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
	}}}, nil
}

type staticCatalog struct {
	services []*models.Service
	err      error
}

func (c staticCatalog) ActiveServices(context.Context) ([]*models.Service, error) {
	return c.services, c.err
}

func TestAssistantService_Reply(t *testing.T) {
	ctx := context.Background()
	llm := &fakeCompleter{}
	catalog := staticCatalog{services: []*models.Service{{Name: "Grooming", Category: "care", Price: 25, Duration: "1h"}}}
	assistant := NewAssistantService(llm, NewMemorySessionStore(0, 0), catalog, "gemini-2.0-flash", zaptest.NewLogger(t))

	first, err := assistant.Reply(ctx, models.AssistantRequest{Message: "How often should I groom my dog?"})
	require.NoError(t, err)
	assert.Equal(t, "answer 1", first.Response)
	assert.NotEmpty(t, first.SessionID)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, "gemini-2.0-flash", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "- Grooming (care): $25.00, 1h")

	second, err := assistant.Reply(ctx, models.AssistantRequest{Message: "And cats?", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	history := llm.requests[1].Messages
	require.Len(t, history, 4, "system, previous user turn, previous answer, new message")
	assert.Equal(t, openai.ChatMessageRoleAssistant, history[2].Role)
	assert.Equal(t, "answer 1", history[2].Content)
	assert.Equal(t, "And cats?", history[3].Content)
}

func TestAssistantService_Errors(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	unconfigured := NewAssistantService(nil, NewMemorySessionStore(0, 0), staticCatalog{}, "m", logger)
	_, err := unconfigured.Reply(ctx, models.AssistantRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrAssistantUnavailable)

	_, err = unconfigured.Reply(ctx, models.AssistantRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	failing := NewAssistantService(&fakeCompleter{err: errors.New("quota exceeded")}, NewMemorySessionStore(0, 0), staticCatalog{}, "m", logger)
	_, err = failing.Reply(ctx, models.AssistantRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrAssistantUpstream)
}

func TestAssistantService_CatalogFailureDropsServiceList(t *testing.T) {
	llm := &fakeCompleter{}
	assistant := NewAssistantService(llm, NewMemorySessionStore(0, 0), staticCatalog{err: errors.New("firestore down")}, "m", zaptest.NewLogger(t))

	_, err := assistant.Reply(context.Background(), models.AssistantRequest{Message: "hi"})
	require.NoError(t, err)
	assert.False(t, strings.Contains(llm.requests[0].Messages[0].Content, "Available services"))
}

func TestMemorySessionStore_Bounds(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(4, 2)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, "a",
			models.ChatTurn{Role: "user", Content: fmt.Sprintf("q%d", i)},
			models.ChatTurn{Role: "assistant", Content: fmt.Sprintf("a%d", i)},
		))
	}
	history, err := store.History(ctx, "a")
	require.NoError(t, err)
	require.Len(t, history, 4, "only the most recent messages are kept")
	assert.Equal(t, "q1", history[0].Content)
	assert.Equal(t, "a2", history[3].Content)

	require.NoError(t, store.Append(ctx, "b", models.ChatTurn{Role: "user", Content: "hi"}))
	require.NoError(t, store.Append(ctx, "c", models.ChatTurn{Role: "user", Content: "hi"}))
	assert.Equal(t, 2, store.Len())

	evicted, err := store.History(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, evicted, "the oldest session is evicted first")

	kept, err := store.History(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
