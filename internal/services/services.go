package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/database"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/gorse"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/llm"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/messaging"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/ml"
)

type Services struct {
	Health                     *HealthService
	Embedder                   *ml.TextEmbeddingService
	Oracle                     *gorse.Client
	Classifier                 *CategoryClassifier
	Interests                  *InterestStore
	Retriever                  *Retriever
	Fuser                      *Fuser
	Content                    *ContentService
	User                       *UserService
	Search                     *SearchService
	RecommendationOrchestrator *RecommendationOrchestrator
	Stream                     *messaging.InteractionStream
	Metrics                    *Metrics
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	metrics := NewMetrics(prometheus.DefaultRegisterer)

	embedder := ml.NewTextEmbeddingService(&cfg.Embedding, db.Redis, logger)
	oracle := gorse.NewClient(&cfg.Gorse, logger)

	var llmClient *llm.OllamaClient
	var detector OracleDetector
	if cfg.Ollama.Enabled {
		llmClient = llm.NewOllamaClient(&cfg.Ollama, logger)
		detector = NewLLMDetector(llmClient, logger)
	}

	classifier := NewCategoryClassifier(db.PG, embedder, detector, &cfg.Recommendation, logger)
	classifier.fallbacks = metrics.ClassifierFallbacks
	interests := NewInterestStore(db.PG, oracle, &cfg.Recommendation, logger)
	retriever := NewRetriever(db.PG, oracle, embedder, &cfg.Recommendation, logger)
	fuser := NewFuser(&cfg.Recommendation)

	stream := messaging.NewInteractionStream(cfg, logger)

	content := NewContentService(db.PG, embedder, classifier, oracle, &cfg.Recommendation, logger)
	user := NewUserService(db.PG, interests, logger)
	search := NewSearchService(db.PG, classifier, retriever, interests, fuser, metrics, &cfg.Recommendation, logger)

	orchestrator := NewRecommendationOrchestrator(
		db.PG, interests, retriever, classifier, fuser, oracle, stream, db.Redis, metrics,
		&cfg.Recommendation, logger,
	)

	health := NewHealthService(cfg, logger, db, oracle, llmClient)

	return &Services{
		Health:                     health,
		Embedder:                   embedder,
		Oracle:                     oracle,
		Classifier:                 classifier,
		Interests:                  interests,
		Retriever:                  retriever,
		Fuser:                      fuser,
		Content:                    content,
		User:                       user,
		Search:                     search,
		RecommendationOrchestrator: orchestrator,
		Stream:                     stream,
		Metrics:                    metrics,
	}, nil
}

// Close releases background producers; database handles close separately.
func (s *Services) Close() error {
	if s.Stream != nil {
		return s.Stream.Close()
	}
	return nil
}
