package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/metrics"
	"github.com/jon4hz/foxtip/pkg/openai"
	"github.com/samber/lo"
)

// SendChatMessage sends an admin message to the assistant and returns the reply.
// Both are persisted only when the completion succeeds.
func (e *Engine) SendChatMessage(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	history, err := e.db.GetRecentChatMessages(ctx, e.cfg.GetChatHistory())
	if err != nil {
		return "", fmt.Errorf("failed to load chat history: %w", err)
	}

	messages := []openai.Message{{Role: openai.RoleSystem, Content: e.cfg.Assistant.ChatPersona}}
	for _, m := range lo.Reverse(history) {
		messages = append(messages, openai.Message{Role: e.chatRole(m.Sender), Content: m.Text})
	}
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: text})

	reply, err := e.completer.Complete(ctx, openai.CompletionRequest{Messages: messages})
	metrics.RecordChatCompletion(err == nil)
	if err != nil {
		log.Error("chat completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	now := e.clock.Now()
	if err := e.db.CreateChatMessage(ctx, &database.ChatMessage{Sender: SenderAdmin, Text: text, Timestamp: now}); err != nil {
		return "", fmt.Errorf("failed to store chat message: %w", err)
	}
	if err := e.db.CreateChatMessage(ctx, &database.ChatMessage{Sender: e.AssistantName(), Text: reply, Timestamp: now}); err != nil {
		return "", fmt.Errorf("failed to store chat reply: %w", err)
	}
	return reply, nil
}

// GetChatLog returns the latest messages in chronological order.
func (e *Engine) GetChatLog(ctx context.Context, limit int) ([]database.ChatMessage, error) {
	msgs, err := e.db.GetRecentChatMessages(ctx, limit)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(msgs), nil
}

func (e *Engine) chatRole(sender string) string {
	if sender == SenderSystem || sender == e.AssistantName() {
		return openai.RoleAssistant
	}
	return openai.RoleUser
}

// AssistantName is the chat sender label of the assistant.
func (e *Engine) AssistantName() string {
	if e.cfg.Assistant == nil || e.cfg.Assistant.Name == "" {
		return "Róka"
	}
	return e.cfg.Assistant.Name
}
