package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/indigobot/server/internal/agent/model"
)

// DefaultMaxTurns bounds the history handed to the answer chain.
const DefaultMaxTurns = 10

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	maxTurns := config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         maxTurns,
	}
}

// LoadHistory returns the last maxTurns exchanges of the thread, dropping
// empty and non-chat messages.
func (cm *MessagesManager) LoadHistory(ctx context.Context, threadID string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, threadID)
	if err != nil {
		return nil, err
	}
	msgs := make([]*schema.Message, 0, len(history.Messages))
	for _, m := range history.Messages {
		if m == nil || m.Content == "" {
			continue
		}
		if m.Role != schema.User && m.Role != schema.Assistant {
			continue
		}
		msgs = append(msgs, m)
	}
	return trimTail(msgs, cm.maxTurns*2), nil
}

// SaveExchange appends one user message and one assistant message, in that order.
func (cm *MessagesManager) SaveExchange(ctx context.Context, threadID, input, answer string) error {
	if err := cm.conversationRepo.AddMessage(ctx, threadID, schema.UserMessage(input)); err != nil {
		return err
	}
	return cm.conversationRepo.AddMessage(ctx, threadID, schema.AssistantMessage(answer, nil))
}

// ResetThread drops the stored history of a thread.
func (cm *MessagesManager) ResetThread(ctx context.Context, threadID string) error {
	return cm.conversationRepo.ClearHistory(ctx, threadID)
}

// MessageCount is the number of stored messages, before any window is applied.
func (cm *MessagesManager) MessageCount(ctx context.Context, threadID string) (int, error) {
	return cm.conversationRepo.GetMessageCount(ctx, threadID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, max int) []*schema.Message {
	if len(messages) <= max {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-max:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
