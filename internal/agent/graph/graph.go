package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/indigobot/server/internal/agent/graph/conversations"
	"github.com/indigobot/server/internal/agent/graph/nodes"
	"github.com/indigobot/server/internal/agent/graph/observers"
	"github.com/indigobot/server/internal/agent/model"
	logx "github.com/indigobot/server/pkg/logger"
)

// ErrorPrefix starts the user-facing text returned when a turn fails.
const ErrorPrefix = "Error invoking indybot: "

const maxRunSteps = 10

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	Chain           model.AnswerChain
	Resolver        nodes.PlaceResolver
	MessagesManager *conversations.MessagesManager
}

// GraphBuilder handles the construction of the conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.TurnInput, *model.ConversationState]
}

// BuildGraph constructs and returns the compiled conversation graph:
// model_answer, then places_lookup at most once, then finalize.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.TurnInput, *model.ConversationState], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Chain == nil {
		return nil, fmt.Errorf("answer chain is nil")
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("place resolver is nil")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *model.ConversationState](
			compose.WithGenLocalState(func(ctx context.Context) *model.ConversationState {
				return &model.ConversationState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeModelAnswer,
		nodes.NewModelAnswerNode(b.config.Chain),
		compose.WithStatePreHandler(nodes.NewModelAnswerPreHandler(b.config.MessagesManager)),
		compose.WithStatePostHandler(nodes.NewModelAnswerPostHandler()),
	); err != nil {
		return fmt.Errorf("error adding %s node: %w", nodes.NodeModelAnswer, err)
	}

	if err := b.graph.AddLambdaNode(nodes.NodePlacesLookup,
		nodes.NewPlacesLookupNode(b.config.Resolver),
	); err != nil {
		return fmt.Errorf("error adding %s node: %w", nodes.NodePlacesLookup, err)
	}

	if err := b.graph.AddLambdaNode(nodes.NodeFinalize,
		nodes.NewFinalizeNode(b.config.MessagesManager),
	); err != nil {
		return fmt.Errorf("error adding %s node: %w", nodes.NodeFinalize, err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeModelAnswer},
		{nodes.NodePlacesLookup, nodes.NodeFinalize},
		{nodes.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	lookupBranch := compose.NewGraphBranch(
		nodes.NewRouteCondition(),
		map[string]bool{
			nodes.NodePlacesLookup: true,
			nodes.NodeFinalize:     true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeModelAnswer, lookupBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding places lookup branch")
		return fmt.Errorf("error adding places lookup branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *model.ConversationState], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// Runner executes one conversation turn, consulting the response cache first.
type Runner struct {
	runnable compose.Runnable[model.TurnInput, *model.ConversationState]
	cache    model.ResponseCache
}

// NewRunner builds the graph and wraps it. cache may be nil.
func NewRunner(ctx context.Context, config *GraphConfig, cache model.ResponseCache) (*Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Conversation graph built successfully")
	return &Runner{runnable: runnable, cache: cache}, nil
}

// Run executes the graph for one turn and returns the final state.
func (r *Runner) Run(ctx context.Context, in model.TurnInput) (state *model.ConversationState, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			state, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("graph returned no state")
	}
	return out, nil
}

// Respond answers one turn. It never fails: a graph error becomes a string
// starting with ErrorPrefix, which is not cached.
func (r *Runner) Respond(ctx context.Context, in model.TurnInput) string {
	threadID, input := in.ThreadID, in.Input
	if r.cache != nil {
		cached, hit, err := r.cache.Get(ctx, input)
		if err != nil {
			logx.Warn().Err(err).Msg("response cache lookup failed")
		} else if hit {
			logx.Debug().Str("thread_id", threadID).Msg("serving cached response")
			return cached
		}
	}

	state, err := r.Run(ctx, in)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("turn failed")
		return ErrorPrefix + err.Error()
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, input, state.Answer); err != nil {
			logx.Warn().Err(err).Msg("response cache store failed")
		}
	}
	return state.Answer
}
