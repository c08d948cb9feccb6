package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/services"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/validation"
)

type Handlers struct {
	Health         *HealthHandler
	Content        *ContentHandler
	Interaction    *InteractionHandler
	Recommendation *RecommendationHandler
	Search         *SearchHandler
	User           *UserHandler
}

func New(logger *logrus.Logger, services *services.Services) (*Handlers, error) {
	schemas, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Content:        NewContentHandler(logger, services.Content, schemas),
		Interaction:    NewInteractionHandler(logger, services.RecommendationOrchestrator, schemas),
		Recommendation: NewRecommendationHandler(logger, services.RecommendationOrchestrator),
		Search:         NewSearchHandler(logger, services.Search),
		User:           NewUserHandler(logger, services.User, schemas),
	}, nil
}
