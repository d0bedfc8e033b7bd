// Package fallback implements the place-lookup step taken when an answer
// admits it lacks operating details: extract a place name, look it up, index
// what was found and rewrite the answer with it.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/indigobot/server/internal/agent/graph/prompts"
	"github.com/indigobot/server/internal/agent/model"
	"github.com/indigobot/server/internal/agent/places"
	logx "github.com/indigobot/server/pkg/logger"
)

const (
	// SourcePlacesAPI tags documents written from place lookups.
	SourcePlacesAPI = "google_places_api"

	ApologySuffix = " I'm sorry, I couldn't identify the specific place to look up more details."
)

// Result is the outcome of one Resolve call.
type Result struct {
	Answer    string
	PlaceName string
	PlaceInfo string
	Strategy  string
	// Found reports a successful lookup, whose info was indexed.
	Found bool
}

type Fallback struct {
	extractor *Extractor
	lookup    model.PlaceLookup
	index     model.DocumentIndex
	llm       model.Completer
}

// New wires the step. index may be nil, in which case nothing is persisted.
func New(extractor *Extractor, lookup model.PlaceLookup, index model.DocumentIndex, llm model.Completer) *Fallback {
	return &Fallback{extractor: extractor, lookup: lookup, index: index, llm: llm}
}

// Resolve runs the lookup path exactly once. Only the improvement call can
// fail the step; extraction and indexing failures degrade.
func (f *Fallback) Resolve(ctx context.Context, input, answer string) (*Result, error) {
	name, strategy, ok := f.extractor.Extract(ctx, input, answer)
	if !ok {
		logx.Info().Str("input", input).Msg("no place name identified, skipping lookup")
		return &Result{Answer: answer + ApologySuffix}, nil
	}

	info, found := f.lookup.Lookup(ctx, name)
	res := &Result{PlaceName: name, PlaceInfo: info, Strategy: strategy, Found: found && !places.IsFailure(info)}

	if res.Found {
		f.store(ctx, name, info)
	} else {
		logx.Info().Str("place_name", name).Str("info", info).Msg("place lookup failed, not indexing")
	}

	improved, err := f.improve(ctx, answer, info)
	if err != nil {
		return nil, err
	}
	res.Answer = improved
	return res, nil
}

// store adds a new document; existing documents are never updated.
func (f *Fallback) store(ctx context.Context, name, info string) {
	if f.index == nil {
		return
	}
	err := f.index.AddTexts(ctx,
		[]string{fmt.Sprintf("Information about %s: %s", name, info)},
		[]map[string]any{{"source": SourcePlacesAPI, "place_name": name}},
	)
	if err != nil {
		logx.Error().Err(err).Str("place_name", name).Msg("failed to index place info")
		return
	}
	logx.Debug().Str("place_name", name).Msg("place info indexed")
}

// improve asks the model to rewrite answer with info. Length is bounded by the
// prompt only; the reply is returned whole.
func (f *Fallback) improve(ctx context.Context, answer, info string) (string, error) {
	p, err := prompts.RenderImprove(ctx, answer, info)
	if err != nil {
		return "", err
	}
	out, err := f.llm.Complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("improve answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}
