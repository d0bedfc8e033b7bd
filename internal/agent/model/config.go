package model

// ================ Config ================
type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"30m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
	ThreadID string `envconfig:"CONVERSATION_THREAD_ID"`
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0"`
	// ThinkingBudget is the Gemini thinking token budget; 0 disables thinking.
	ThinkingBudget int32 `envconfig:"CHAT_THINKING_BUDGET" default:"0"`
}

type EmbeddingConfig struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	// Dimension must match the embedding model output.
	Dimension uint64 `envconfig:"EMBEDDING_DIMENSION" default:"768"`
}

type VectorStoreConfig struct {
	Host       string `envconfig:"QDRANT_HOST" default:"localhost"`
	Port       int    `envconfig:"QDRANT_PORT" default:"6334"`
	APIKey     string `envconfig:"QDRANT_API_KEY"`
	UseTLS     bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	Collection string `envconfig:"QDRANT_COLLECTION" default:"indigobot"`
	TopK       int    `envconfig:"RETRIEVER_TOP_K" default:"4"`
}

type PlacesConfig struct {
	APIKey     string `envconfig:"GPLACES_API_KEY"`
	Timezone   string `envconfig:"PLACES_TIMEZONE" default:"America/Los_Angeles"`
	Language   string `envconfig:"PLACES_LANGUAGE" default:"en"`
	Region     string `envconfig:"PLACES_REGION" default:"us"`
	MaxRetries int    `envconfig:"PLACES_MAX_RETRIES" default:"0"`
}

type CacheConfig struct {
	Path      string `envconfig:"CACHE_DB" default:"rag_data/cache.db"`
	Threshold int    `envconfig:"CACHE_THRESHOLD" default:"3"`
	Disabled  bool   `envconfig:"CACHE_DISABLED" default:"false"`
}

// RetryConfig controls the bounded retry policy around LLM calls. The zero
// value disables retries and timeouts.
type RetryConfig struct {
	MaxRetries int    `envconfig:"LLM_MAX_RETRIES" default:"0"`
	BaseDelay  string `envconfig:"LLM_RETRY_BASE_DELAY" default:"500ms"`
	Timeout    string `envconfig:"LLM_TIMEOUT" default:"0s"`
}
