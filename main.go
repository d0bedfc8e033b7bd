package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/indigobot/server/internal/agent/cache"
	"github.com/indigobot/server/internal/agent/fallback"
	"github.com/indigobot/server/internal/agent/graph"
	"github.com/indigobot/server/internal/agent/graph/conversations"
	"github.com/indigobot/server/internal/agent/graph/nodes"
	"github.com/indigobot/server/internal/agent/llm"
	"github.com/indigobot/server/internal/agent/model"
	"github.com/indigobot/server/internal/agent/places"
	"github.com/indigobot/server/internal/agent/rag"
	"github.com/indigobot/server/internal/agent/repo"
	"github.com/indigobot/server/internal/core"
	logx "github.com/indigobot/server/pkg/logger"
	pkgredis "github.com/indigobot/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the bot, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Chat         model.ChatModelConfig
	Embedding    model.EmbeddingConfig
	VectorStore  model.VectorStoreConfig
	Places       model.PlacesConfig
	Cache        model.CacheConfig
	Retry        model.RetryConfig
	Conversation model.ConversationConfig
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to process environment config: %v\n", err)
		os.Exit(1)
	}

	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(envCfg.Environment),
		Level:       envCfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner, mm, threadID, cleanup, err := setup(ctx, envCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to start indybot")
	}
	defer cleanup()

	fmt.Println("Indybot ready. Ask about Portland social services (/reset clears history, /history counts messages, Ctrl+D quits).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		if handleCommand(ctx, mm, threadID, input) {
			continue
		}
		fmt.Println(runner.Respond(ctx, model.TurnInput{ThreadID: threadID, Input: input}))
		if ctx.Err() != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		logx.Error().Err(err).Msg("reading stdin")
	}
}

// handleCommand runs a REPL slash command and reports whether input was one.
func handleCommand(ctx context.Context, mm *conversations.MessagesManager, threadID, input string) bool {
	switch input {
	case "/reset":
		if err := mm.ResetThread(ctx, threadID); err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to clear history")
			fmt.Println("Could not clear the conversation history.")
			return true
		}
		fmt.Println("Conversation history cleared.")
		return true
	case "/history":
		count, err := mm.MessageCount(ctx, threadID)
		if err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to count messages")
			fmt.Println("Could not read the conversation history.")
			return true
		}
		fmt.Printf("%d messages stored for thread %s\n", count, threadID)
		return true
	}
	return false
}

// setup wires every collaborator and returns the runner and the thread id
// this session writes to.
func setup(ctx context.Context, envCfg AppConfig) (*graph.Runner, *conversations.MessagesManager, string, func(), error) {
	closers := []func(){}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	client, err := nodes.NewGenAIClient(ctx, nodes.ClientConfig{APIKey: envCfg.APIKey, BaseURL: envCfg.BaseURL})
	if err != nil {
		return nil, nil, "", cleanup, err
	}
	chat, err := nodes.NewChatModel(ctx, client, envCfg.Chat)
	if err != nil {
		return nil, nil, "", cleanup, err
	}

	// ====================== Retrieval ======================
	qc, err := rag.NewQdrantClient(envCfg.VectorStore)
	if err != nil {
		return nil, nil, "", cleanup, err
	}
	closers = append(closers, func() { _ = qc.Close() })

	store := rag.NewQdrantStore(qc, rag.NewGenAIEmbedder(client, envCfg.Embedding.Model), envCfg.VectorStore)
	if err := store.InitCollection(ctx, envCfg.Embedding.Dimension); err != nil {
		return nil, nil, "", cleanup, err
	}
	chain := rag.NewChain(chat, envCfg.Chat.Model, store)

	// ====================== Places fallback ======================
	clock, err := places.NewClock(envCfg.Places.Timezone)
	if err != nil {
		return nil, nil, "", cleanup, err
	}
	source, err := places.NewGoogleSource(envCfg.Places)
	if err != nil {
		return nil, nil, "", cleanup, err
	}
	lookup := places.NewLookup(source, places.NewFormatter(clock))

	completer, err := llm.NewResilient(llm.NewChatCompleter(chat, envCfg.Chat.Model), envCfg.Retry)
	if err != nil {
		return nil, nil, "", cleanup, err
	}
	resolver := fallback.New(fallback.DefaultExtractor(completer), lookup, store, completer)

	// ====================== Conversation store ======================
	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		return nil, nil, "", cleanup, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", envCfg.Conversation.TTL, err)
	}

	var conversationRepo model.ConversationRepository
	if envCfg.Redis.Enabled() {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			return nil, nil, "", cleanup, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		conversationRepo = repo.NewRedisConversationRepository(rdb, ttl)
		logx.Info().Msg("Connected to Redis successfully")
	} else {
		conversationRepo = repo.NewMemoryConversationRepository()
		logx.Info().Msg("REDIS_URL not set, keeping conversation history in memory")
	}

	var responseCache model.ResponseCache
	if !envCfg.Cache.Disabled {
		responseCache = cache.New(envCfg.Cache)
	}

	mm := conversations.NewMessagesManager(conversationRepo, envCfg.Conversation)
	runner, err := graph.NewRunner(ctx, &graph.GraphConfig{
		Chain:           chain,
		Resolver:        resolver,
		MessagesManager: mm,
	}, responseCache)
	if err != nil {
		return nil, nil, "", cleanup, err
	}

	threadID := envCfg.Conversation.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	logx.Info().Str("thread_id", threadID).Msg("conversation thread")
	return runner, mm, threadID, cleanup, nil
}
