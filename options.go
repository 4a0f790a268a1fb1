package archiveagent

import (
	"time"

	"go.uber.org/zap"
)

type clientConfig struct {
	addrs     []string
	password  string
	indexName string
	keyPrefix string

	apiKey         string
	baseURL        string
	embeddingModel string
	model          string
	fallbackModel  string

	topK         int
	minScore     float64
	denseWeight  float64
	sparseWeight float64

	temperature float64
	maxTokens   int
	sessionTTL  time.Duration

	logger *zap.Logger
}

// Option configures the embedded client.
type Option func(*clientConfig)

// WithRedis sets the archive index connection.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithIndex overrides the RediSearch index name and key prefix.
func WithIndex(name, prefix string) Option {
	return func(c *clientConfig) {
		c.indexName = name
		c.keyPrefix = prefix
	}
}

// WithOpenAI sets the completion/embedding provider credentials. baseURL may
// be empty for the default endpoint.
func WithOpenAI(apiKey, baseURL string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
	}
}

// WithModels overrides the chat models.
func WithModels(model, fallback string) Option {
	return func(c *clientConfig) {
		c.model = model
		c.fallbackModel = fallback
	}
}

// WithEmbeddingModel overrides the embedding model.
func WithEmbeddingModel(model string) Option {
	return func(c *clientConfig) {
		c.embeddingModel = model
	}
}

// WithSearchDefaults overrides the retrieval defaults used by chat turns.
func WithSearchDefaults(topK int, minScore float64) Option {
	return func(c *clientConfig) {
		c.topK = topK
		c.minScore = minScore
	}
}

// WithHybridWeights overrides the dense/sparse merge weights.
func WithHybridWeights(dense, sparse float64) Option {
	return func(c *clientConfig) {
		c.denseWeight = dense
		c.sparseWeight = sparse
	}
}

// WithChatDefaults overrides the generation defaults.
func WithChatDefaults(temperature float64, maxTokens int) Option {
	return func(c *clientConfig) {
		c.temperature = temperature
		c.maxTokens = maxTokens
	}
}

// WithSessionTTL bounds how long idle conversations are kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.sessionTTL = ttl
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
