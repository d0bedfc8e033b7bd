// Package llm adapts eino chat models to the plain text-completion contract
// used by the place fallback, and wraps it with a bounded retry policy.
package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/indigobot/server/internal/agent/model"
	errx "github.com/indigobot/server/internal/core/error"
)

// ChatCompleter sends a single user message and returns the reply text.
type ChatCompleter struct {
	chat      einomodel.BaseChatModel
	modelName string
}

func NewChatCompleter(chat einomodel.BaseChatModel, modelName string) *ChatCompleter {
	return &ChatCompleter{chat: chat, modelName: modelName}
}

func (c *ChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", errx.WrapCollaborator("llm", err)
	}
	if out == nil {
		return "", errx.WrapCollaborator("llm", fmt.Errorf("empty reply"))
	}
	LogUsage(c.modelName, "completer", out)
	return strings.TrimSpace(out.Content), nil
}

var _ model.Completer = (*ChatCompleter)(nil)
