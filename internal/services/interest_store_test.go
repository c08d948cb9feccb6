package services

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

func interestConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		DecayFactor:  0.95,
		InitialScore: 10.0,
	}
}

func TestActionWeights(t *testing.T) {
	assert.Equal(t, 1.0, ActionWeight("view"))
	assert.Equal(t, 2.0, ActionWeight("click"))
	assert.Equal(t, 3.0, ActionWeight("like"))
	assert.Equal(t, 4.0, ActionWeight("share"))
	assert.Equal(t, 5.0, ActionWeight("comment"))
	assert.Equal(t, 2.0, ActionWeight("search"))
	assert.Equal(t, 1.0, ActionWeight("teleport"))
}

func TestApplyEventDecaysThenIncrements(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewInterestStore(mockDB, nil, interestConfig(), logrus.New())

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE user_interests").
		WithArgs(0.95, pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mockDB.ExpectExec("INSERT INTO user_interests").
		WithArgs("user-1", "cricket", 3.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockDB.ExpectCommit()

	err = store.ApplyEvent(context.Background(), "user-1", "cricket", "like")
	require.NoError(t, err)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestApplyEventRollsBackOnIncrementFailure(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewInterestStore(mockDB, nil, interestConfig(), logrus.New())

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE user_interests").
		WithArgs(0.95, pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectExec("INSERT INTO user_interests").
		WithArgs("user-1", "cricket", 1.0, pgxmock.AnyArg()).
		WillReturnError(assert.AnError)
	mockDB.ExpectRollback()

	err = store.ApplyEvent(context.Background(), "user-1", "cricket", "view")
	require.Error(t, err)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestApplyEventNormalizesCategoryAlias(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewInterestStore(mockDB, nil, interestConfig(), logrus.New())

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE user_interests").
		WithArgs(0.95, pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockDB.ExpectExec("INSERT INTO user_interests").
		WithArgs("user-1", "fitness", 2.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockDB.ExpectCommit()

	err = store.ApplyEvent(context.Background(), "user-1", "Gym", "click")
	require.NoError(t, err)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestInitializeRequiresExactlyThreeCategories(t *testing.T) {
	store := NewInterestStore(nil, nil, interestConfig(), logrus.New())

	err := store.Initialize(context.Background(), "user-1", []string{"cricket", "food"})
	assert.ErrorIs(t, err, ErrValidation)

	err = store.Initialize(context.Background(), "user-1", []string{"a", "b", "c", "d"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInitializeSeedsThreeInterests(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewInterestStore(mockDB, nil, interestConfig(), logrus.New())

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO users").
		WithArgs("user-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockDB.ExpectExec("DELETE FROM user_interests").
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	for _, category := range []string{"cricket", "technology", "food"} {
		mockDB.ExpectExec("INSERT INTO user_interests").
			WithArgs("user-1", category, 10.0, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mockDB.ExpectCommit()

	err = store.Initialize(context.Background(), "user-1", []string{"Cricket", "technology", "Food"})
	require.NoError(t, err)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCountInteractions(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewInterestStore(mockDB, nil, interestConfig(), logrus.New())

	mockDB.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.CountInteractions(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestGetReturnsInterestsByScore(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewInterestStore(mockDB, nil, interestConfig(), logrus.New())

	now := time.Now()
	mockDB.ExpectQuery("SELECT category, score").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"category", "score", "interaction_count", "last_updated"}).
			AddRow("cricket", 12.5, 4, now).
			AddRow("food", 3.2, 1, now))

	interests, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, interests, 2)
	assert.Equal(t, models.InterestEntry{Category: "cricket", Score: 12.5, InteractionCount: 4, LastUpdated: now}, interests[0])
}

// Decay and increment compose to S*d + w for the touched category and S*d
// for everything else. The SQL enforces the ordering; this covers the
// arithmetic the transaction encodes.
func TestDecayIncrementArithmetic(t *testing.T) {
	cfg := interestConfig()

	score := 10.0
	score = score*cfg.DecayFactor + ActionWeight("like")
	assert.InDelta(t, 12.5, score, 1e-9)

	untouched := 10.0 * cfg.DecayFactor
	assert.InDelta(t, 9.5, untouched, 1e-9)
}
