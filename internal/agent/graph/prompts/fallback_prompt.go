package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/extract_prompt.txt
var extractPrompt string

//go:embed template/improve_prompt.txt
var improvePrompt string

// RenderExtract renders the place-name extraction prompt.
func RenderExtract(ctx context.Context, input, answer string) (string, error) {
	return render(ctx, "extract", extractPrompt, map[string]any{
		"Input":  input,
		"Answer": answer,
	})
}

// RenderImprove renders the prompt that merges looked-up place info into an answer.
func RenderImprove(ctx context.Context, answer, placeInfo string) (string, error) {
	return render(ctx, "improve", improvePrompt, map[string]any{
		"Answer":    answer,
		"PlaceInfo": placeInfo,
	})
}

// render goes through the eino prompt component so prompt callbacks fire.
func render(ctx context.Context, name, tpl string, vars map[string]any) (string, error) {
	msgs, err := prompt.FromMessages(schema.GoTemplate, schema.UserMessage(tpl)).Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("%s prompt render: empty result", name)
	}
	return msgs[0].Content, nil
}
