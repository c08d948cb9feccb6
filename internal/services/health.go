package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/database"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/gorse"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/llm"
)

const healthCheckTimeout = 5 * time.Second

type HealthService struct {
	config *config.Config
	logger *logrus.Logger
	db     *database.Database
	oracle *gorse.Client
	llm    *llm.OllamaClient
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Critical    []string          `json:"critical_failures,omitempty"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
}

func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database, oracle *gorse.Client, llmClient *llm.OllamaClient) *HealthService {
	return &HealthService{
		config: cfg,
		logger: logger,
		db:     db,
		oracle: oracle,
		llm:    llmClient,
	}
}

// CheckHealth probes every dependency. PostgreSQL and Redis are critical;
// the oracle and the LLM are optional signal sources, so their failures
// only degrade the status.
func (s *HealthService) CheckHealth() *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string),
	}

	criticalServices := map[string]func() error{
		"postgresql": s.checkPostgreSQL,
		"redis":      s.checkRedis,
	}

	nonCriticalServices := map[string]func() error{
		"gorse":  s.checkOracle,
		"ollama": s.checkLLM,
	}

	allCriticalHealthy := true
	for name, checkFunc := range criticalServices {
		if err := checkFunc(); err != nil {
			status.Services[name] = "unhealthy"
			status.Critical = append(status.Critical, name)
			allCriticalHealthy = false
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", name)
		} else {
			status.Services[name] = "healthy"
		}
	}

	for name, checkFunc := range nonCriticalServices {
		if err := checkFunc(); err != nil {
			status.Services[name] = "unhealthy"
			status.NonCritical = append(status.NonCritical, name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", name)
		} else {
			status.Services[name] = "healthy"
		}
	}

	if allCriticalHealthy {
		if len(status.NonCritical) == 0 {
			status.Status = "healthy"
		} else {
			status.Status = "degraded"
		}
	} else {
		status.Status = "unhealthy"
	}

	return status
}

func (s *HealthService) checkPostgreSQL() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	return s.db.PG.Ping(ctx)
}

func (s *HealthService) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	return s.db.Redis.Ping(ctx).Err()
}

func (s *HealthService) checkOracle() error {
	if s.oracle == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	return s.oracle.Ping(ctx)
}

func (s *HealthService) checkLLM() error {
	if s.llm == nil || !s.config.Ollama.Enabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	if !s.llm.IsAvailable(ctx) {
		return errors.New("ollama is not reachable")
	}
	return nil
}
