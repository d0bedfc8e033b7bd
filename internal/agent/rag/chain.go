// Package rag is the retrieval+answer collaborator: a history-aware retriever
// feeding a stuff-documents answer prompt, backed by a Qdrant document index.
package rag

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/indigobot/server/internal/agent/graph/parsers"
	"github.com/indigobot/server/internal/agent/graph/prompts"
	"github.com/indigobot/server/internal/agent/llm"
	"github.com/indigobot/server/internal/agent/model"
	errx "github.com/indigobot/server/internal/core/error"
	logx "github.com/indigobot/server/pkg/logger"
)

const documentSeparator = "\n\n"

type Chain struct {
	chat          einomodel.BaseChatModel
	modelName     string
	retriever     retriever.Retriever
	answerTpl     prompt.ChatTemplate
	contextualize prompt.ChatTemplate
}

func NewChain(chat einomodel.BaseChatModel, modelName string, r retriever.Retriever) *Chain {
	return &Chain{
		chat:          chat,
		modelName:     modelName,
		retriever:     r,
		answerTpl:     prompts.AnswerTemplate(),
		contextualize: prompts.ContextualizeTemplate(),
	}
}

// Answer rewrites input into a standalone question when there is history,
// retrieves documents for it and answers from them.
func (c *Chain) Answer(ctx context.Context, input string, history []*schema.Message) (*model.ChainResult, error) {
	question := input
	if len(history) > 0 {
		q, err := c.standalone(ctx, input, history)
		if err != nil {
			return nil, err
		}
		question = q
	}

	docs, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, errx.WrapCollaborator("retriever", err)
	}
	contextText := joinDocuments(docs)
	logx.Debug().Str("question", question).Int("documents", len(docs)).Msg("retrieved context")

	msgs, err := c.answerTpl.Format(ctx, map[string]any{
		prompts.KeyContext:     contextText,
		prompts.KeyChatHistory: history,
		prompts.KeyInput:       input,
	})
	if err != nil {
		return nil, fmt.Errorf("answer prompt: %w", err)
	}
	out, err := c.chat.Generate(ctx, msgs)
	if err != nil {
		return nil, errx.WrapCollaborator("llm", err)
	}
	if out == nil {
		return nil, errx.WrapCollaborator("llm", fmt.Errorf("empty reply"))
	}
	llm.LogUsage(c.modelName, "answer", out)

	answer, sufficient := parsers.ParseAnswer(out.Content)
	return &model.ChainResult{
		Answer:     answer,
		Context:    contextText,
		Documents:  docs,
		Sufficient: sufficient,
	}, nil
}

func (c *Chain) standalone(ctx context.Context, input string, history []*schema.Message) (string, error) {
	msgs, err := c.contextualize.Format(ctx, map[string]any{
		prompts.KeyChatHistory: history,
		prompts.KeyInput:       input,
	})
	if err != nil {
		return "", fmt.Errorf("contextualize prompt: %w", err)
	}
	out, err := c.chat.Generate(ctx, msgs)
	if err != nil {
		return "", errx.WrapCollaborator("llm", err)
	}
	llm.LogUsage(c.modelName, "contextualize", out)
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return input, nil
	}
	return strings.TrimSpace(out.Content), nil
}

func joinDocuments(docs []*schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil || strings.TrimSpace(d.Content) == "" {
			continue
		}
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, documentSeparator)
}

var _ model.AnswerChain = (*Chain)(nil)
