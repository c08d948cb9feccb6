package ml

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/floats"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
)

// Embedder encodes text into a fixed-dimension vector. Implementations must
// be deterministic for identical input.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// TextEmbeddingService is a deterministic hashed bag-of-tokens projection
// into a unit vector, standing in for a sentence-transformer runtime. The
// projection is stable across processes, so category prototypes and post
// embeddings built on different nodes stay comparable. Results are cached
// in Redis under a content hash.
type TextEmbeddingService struct {
	redis       *redis.Client
	logger      *logrus.Logger
	dimensions  int
	cachePrefix string
	cacheTTL    time.Duration
}

func NewTextEmbeddingService(cfg *config.EmbeddingConfig, redisClient *redis.Client, logger *logrus.Logger) *TextEmbeddingService {
	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 384
	}
	cachePrefix := cfg.CachePrefix
	if cachePrefix == "" {
		cachePrefix = "embed:text"
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &TextEmbeddingService{
		redis:       redisClient,
		logger:      logger,
		dimensions:  dimensions,
		cachePrefix: cachePrefix,
		cacheTTL:    cacheTTL,
	}
}

func (s *TextEmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *TextEmbeddingService) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot encode empty text")
	}

	cacheKey := s.cacheKey(text)

	if s.redis != nil {
		if cached := s.redis.Get(ctx, cacheKey).Val(); cached != "" {
			var embedding []float32
			if err := json.Unmarshal([]byte(cached), &embedding); err == nil && len(embedding) == s.dimensions {
				return embedding, nil
			}
		}
	}

	embedding := s.embed(text)

	if s.redis != nil {
		if data, err := json.Marshal(embedding); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.WithError(err).Warn("Failed to cache embedding")
			}
		}
	}

	return embedding, nil
}

func (s *TextEmbeddingService) embed(text string) []float32 {
	tokens := Tokenize(text)

	accum := make([]float64, s.dimensions)
	for _, token := range tokens {
		digest := sha256.Sum256([]byte(token))
		// Each token contributes to a handful of dimensions derived from
		// its hash; sign alternates so unrelated texts stay near-orthogonal.
		for i := 0; i < 4; i++ {
			bucket := binary.BigEndian.Uint32(digest[i*8:]) % uint32(s.dimensions)
			sign := 1.0
			if digest[i*8+4]%2 == 1 {
				sign = -1.0
			}
			weight := float64(digest[i*8+5])/255.0 + 0.5
			accum[bucket] += sign * weight
		}
	}

	if n := floats.Norm(accum, 2); n > 0 {
		floats.Scale(1.0/n, accum)
	}

	embedding := make([]float32, s.dimensions)
	for i, v := range accum {
		embedding[i] = float32(v)
	}
	return embedding
}

func (s *TextEmbeddingService) cacheKey(text string) string {
	digest := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%x", s.cachePrefix, digest[:16])
}

// Tokenize lower-cases, NFKC-normalises and splits text into word tokens.
// Shared with the keyword classifier so both see the same token stream.
func Tokenize(text string) []string {
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)

	var tokens []string
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	}) {
		if field != "" {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '-' || r == '\'' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r > 127
}

// CosineSimilarity computes the cosine of two vectors, zero when either is
// empty or lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	x := make([]float64, len(a))
	y := make([]float64, len(b))
	for i := range a {
		x[i] = float64(a[i])
		y[i] = float64(b[i])
	}

	normX := floats.Norm(x, 2)
	normY := floats.Norm(y, 2)
	if normX == 0 || normY == 0 {
		return 0
	}

	return floats.Dot(x, y) / (normX * normY)
}
