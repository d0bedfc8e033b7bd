package rag

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"

	errx "github.com/indigobot/server/internal/core/error"
)

// GenAIEmbedder implements eino's embedding.Embedder on the Gemini embeddings API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenAIEmbedder(client *genai.Client, model string) *GenAIEmbedder {
	return &GenAIEmbedder{client: client, model: model}
}

func (e *GenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
		if err != nil {
			return nil, errx.WrapCollaborator("embeddings", err)
		}
		if res == nil || len(res.Embeddings) == 0 {
			return nil, errx.WrapCollaborator("embeddings", fmt.Errorf("no embedding returned"))
		}
		values := res.Embeddings[0].Values
		vec := make([]float64, len(values))
		for i, v := range values {
			vec[i] = float64(v)
		}
		out = append(out, vec)
	}
	return out, nil
}

var _ embedding.Embedder = (*GenAIEmbedder)(nil)
