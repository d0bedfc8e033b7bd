package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/indigobot/server/internal/agent/fallback"
	"github.com/indigobot/server/internal/agent/graph/conversations"
	"github.com/indigobot/server/internal/agent/graph/parsers"
	"github.com/indigobot/server/internal/agent/model"
	logx "github.com/indigobot/server/pkg/logger"
)

// PlaceResolver runs the place-lookup step for an insufficient answer.
type PlaceResolver interface {
	Resolve(ctx context.Context, input, answer string) (*fallback.Result, error)
}

// NewModelAnswerPreHandler seeds the turn state and loads the thread history.
// A session store failure degrades to an empty history.
func NewModelAnswerPreHandler(mm *conversations.MessagesManager) func(context.Context, model.TurnInput, *model.ConversationState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.ConversationState) (model.TurnInput, error) {
		s.ThreadID = in.ThreadID
		s.Input = in.Input

		history, err := mm.LoadHistory(ctx, in.ThreadID)
		if err != nil {
			logx.Warn().Err(err).Str("thread_id", in.ThreadID).Msg("failed to load history, continuing without it")
			history = nil
		}
		s.ChatHistory = history
		return in, nil
	}
}

// NewModelAnswerNode invokes the retrieval+answer chain with the input and history.
func NewModelAnswerNode(chain model.AnswerChain) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (string, error) {
		var history []*schema.Message
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.ConversationState) error {
			history = append(history, s.ChatHistory...)
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		res, err := chain.Answer(ctx, in.Input, history)
		if err != nil {
			return "", err
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.ConversationState) error {
			s.Context = res.Context
			s.Sufficient = res.Sufficient
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}
		return res.Answer, nil
	})
}

// NewModelAnswerPostHandler appends exactly one user and one assistant message
// for the exchange, in that order.
func NewModelAnswerPostHandler() func(context.Context, string, *model.ConversationState) (string, error) {
	return func(ctx context.Context, out string, s *model.ConversationState) (string, error) {
		s.ChatHistory = append(s.ChatHistory,
			schema.UserMessage(s.Input),
			schema.AssistantMessage(out, nil),
		)
		s.Answer = out
		logx.Debug().Str("thread_id", s.ThreadID).Str("node", NodeModelAnswer).Msg("answer ready")
		return out, nil
	}
}

// Decide picks the next state for an answer. The text classifier always runs;
// a "no" sufficiency record from the chain also sends the turn to a lookup.
func Decide(answer string, sufficient *bool) model.Route {
	if strings.TrimSpace(answer) == "" {
		return model.RouteDone
	}
	if parsers.Insufficient(answer) {
		return model.RoutePlacesLookup
	}
	if sufficient != nil && !*sufficient {
		return model.RoutePlacesLookup
	}
	return model.RouteDone
}

// NewRouteCondition routes model_answer to places_lookup or finalize.
func NewRouteCondition() func(context.Context, string) (string, error) {
	return func(ctx context.Context, answer string) (string, error) {
		var route model.Route
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.ConversationState) error {
			route = Decide(answer, s.Sufficient)
			s.Route = route
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		if route == model.RoutePlacesLookup {
			logx.Debug().Str("node", NodeModelAnswer).Msg("Routing to places lookup - answer lacks operating details")
			return NodePlacesLookup, nil
		}
		logx.Debug().Str("node", NodeModelAnswer).Msg("Routing to finalize")
		return NodeFinalize, nil
	}
}

// NewPlacesLookupNode runs the fallback exactly once and merges its result
// into the state.
func NewPlacesLookupNode(resolver PlaceResolver) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, answer string) (string, error) {
		var input string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.ConversationState) error {
			input = s.Input
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		res, err := resolver.Resolve(ctx, input, answer)
		if err != nil {
			return "", err
		}

		err = compose.ProcessState(ctx, func(_ context.Context, s *model.ConversationState) error {
			s.Answer = res.Answer
			s.PlaceName = res.PlaceName
			s.PlaceInfo = res.PlaceInfo
			if n := len(s.ChatHistory); n > 0 && s.ChatHistory[n-1].Role == schema.Assistant {
				s.ChatHistory[n-1] = schema.AssistantMessage(res.Answer, nil)
			}
			if res.Found {
				s.Context = appendPlaceBlock(s.Context, res.PlaceName, res.PlaceInfo)
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().
			Str("node", NodePlacesLookup).
			Str("place_name", res.PlaceName).
			Str("strategy", res.Strategy).
			Bool("found", res.Found).
			Msg("places lookup done")
		return res.Answer, nil
	})
}

func appendPlaceBlock(supportText, name, info string) string {
	block := fmt.Sprintf("Place information for %s:\n%s", name, info)
	if strings.TrimSpace(supportText) == "" {
		return block
	}
	return supportText + "\n\n" + block
}

// NewFinalizeNode persists the exchange and emits a snapshot of the final state.
// Persistence failures are logged only.
func NewFinalizeNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, answer string) (*model.ConversationState, error) {
		var out model.ConversationState
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.ConversationState) error {
			out = *s
			out.ChatHistory = append([]*schema.Message(nil), s.ChatHistory...)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		if out.Route == model.RouteNone {
			out.Route = model.RouteDone
		}

		if err := mm.SaveExchange(ctx, out.ThreadID, out.Input, out.Answer); err != nil {
			logx.Error().
				Str("thread_id", out.ThreadID).
				Err(err).
				Msg("Error saving exchange to session store")
		} else {
			logx.Debug().Str("thread_id", out.ThreadID).Msg("Successfully saved exchange")
		}
		return &out, nil
	})
}
