package prompts

import (
	_ "embed"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/answer_prompt.txt
var answerSystemPrompt string

//go:embed template/contextualize_prompt.txt
var contextualizeSystemPrompt string

// Template variable keys shared by the answer and contextualize templates.
const (
	KeyContext     = "context"
	KeyChatHistory = "chat_history"
	KeyInput       = "input"
)

// AnswerTemplate answers from stuffed documents: system prompt with {context},
// the prior exchange, then the user question.
func AnswerTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(answerSystemPrompt),
		schema.MessagesPlaceholder(KeyChatHistory, true),
		schema.UserMessage("{input}"),
	)
}

// ContextualizeTemplate rewrites a follow-up into a standalone question.
func ContextualizeTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(contextualizeSystemPrompt),
		schema.MessagesPlaceholder(KeyChatHistory, true),
		schema.UserMessage("{input}"),
	)
}
