package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Gorse          GorseConfig          `mapstructure:"gorse"`
	Ollama         OllamaConfig         `mapstructure:"ollama"`
	Embedding      EmbeddingConfig      `mapstructure:"embedding"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		InteractionEvents string `mapstructure:"interaction_events"`
	} `mapstructure:"topics"`
}

type GorseConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	Dimensions  int           `mapstructure:"dimensions"`
	CachePrefix string        `mapstructure:"cache_prefix"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// RecommendationConfig carries the fusion, decay and classification
// constants. They are fixed empirical values from the original system, not
// derived from data; there is no tuning loop behind them.
type RecommendationConfig struct {
	CollabWeight       float64       `mapstructure:"collab_weight"`
	CategoryWeight     float64       `mapstructure:"category_weight"`
	SemanticWeight     float64       `mapstructure:"semantic_weight"`
	CategoryBoost      float64       `mapstructure:"category_boost"`
	DecayFactor        float64       `mapstructure:"decay_factor"`
	InitialScore       float64       `mapstructure:"initial_score"`
	MinRelevance       float64       `mapstructure:"min_relevance"`
	ScoreFloor         float64       `mapstructure:"score_floor"`
	OracleBoost        float64       `mapstructure:"oracle_boost"`
	KeywordVoteWeight  float64       `mapstructure:"keyword_vote_weight"`
	SemanticVoteWeight float64       `mapstructure:"semantic_vote_weight"`
	OracleVoteWeight   float64       `mapstructure:"oracle_vote_weight"`
	MaxColdCategories  int           `mapstructure:"max_cold_categories"`
	SearchMinInterest  float64       `mapstructure:"search_min_interest"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topics.interaction_events", "interaction-events")

	// External services
	viper.SetDefault("gorse.url", "http://localhost:8088")
	viper.SetDefault("gorse.timeout", "5s")
	viper.SetDefault("ollama.enabled", false)
	viper.SetDefault("ollama.url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3.2")
	viper.SetDefault("ollama.timeout", "15s")

	// Embedding defaults
	viper.SetDefault("embedding.dimensions", 384)
	viper.SetDefault("embedding.cache_prefix", "embed:text")
	viper.SetDefault("embedding.cache_ttl", "24h")

	// Recommendation defaults
	viper.SetDefault("recommendation.collab_weight", 40.0)
	viper.SetDefault("recommendation.category_weight", 30.0)
	viper.SetDefault("recommendation.semantic_weight", 30.0)
	viper.SetDefault("recommendation.category_boost", 1.2)
	viper.SetDefault("recommendation.decay_factor", 0.95)
	viper.SetDefault("recommendation.initial_score", 10.0)
	viper.SetDefault("recommendation.min_relevance", 0.5)
	viper.SetDefault("recommendation.score_floor", 0.1)
	viper.SetDefault("recommendation.oracle_boost", 0.3)
	viper.SetDefault("recommendation.keyword_vote_weight", 0.3)
	viper.SetDefault("recommendation.semantic_vote_weight", 0.4)
	viper.SetDefault("recommendation.oracle_vote_weight", 0.3)
	viper.SetDefault("recommendation.max_cold_categories", 5)
	viper.SetDefault("recommendation.search_min_interest", 0.5)
	viper.SetDefault("recommendation.cache_ttl", "15m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
