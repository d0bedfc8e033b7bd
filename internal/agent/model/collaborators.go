package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Completer is the text-completion collaborator used for extraction and
// answer-improvement prompts.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AnswerChain is the retrieval+answer collaborator.
type AnswerChain interface {
	Answer(ctx context.Context, input string, history []*schema.Message) (*ChainResult, error)
}

// DocumentIndex accepts new retrieval documents. Writes are additive.
type DocumentIndex interface {
	AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) error
}

// PlaceLookup resolves a place name to a formatted information block. found is
// false when info is an error sentinel or "No results found.".
type PlaceLookup interface {
	Lookup(ctx context.Context, placeName string) (info string, found bool)
}

// ResponseCache is the query->answer store consulted before a turn runs.
type ResponseCache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Put(ctx context.Context, query, response string) error
}
