package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository is the checkpoint store keyed by thread id. It is the
// only component responsible for isolating concurrent conversation threads.
type ConversationRepository interface {
	// AddMessage appends a message to the thread history.
	AddMessage(ctx context.Context, threadID string, message *schema.Message) error

	// LoadHistory retrieves the full message history of a thread, oldest first.
	LoadHistory(ctx context.Context, threadID string) (*ConversationHistory, error)

	// ClearHistory removes all history for a thread.
	ClearHistory(ctx context.Context, threadID string) error

	// GetMessageCount returns the number of messages stored for a thread.
	GetMessageCount(ctx context.Context, threadID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ThreadID string
	Messages []*schema.Message
}
