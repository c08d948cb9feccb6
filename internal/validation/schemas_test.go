package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionSchema(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	valid := sv.ValidateInteraction([]byte(`{"user_id":"u1","item_id":"p1","action":"like"}`))
	assert.True(t, valid.Valid)

	badAction := sv.ValidateInteraction([]byte(`{"user_id":"u1","item_id":"p1","action":"hover"}`))
	assert.False(t, badAction.Valid)

	missing := sv.ValidateInteraction([]byte(`{"user_id":"u1"}`))
	assert.False(t, missing.Valid)
	assert.NotEmpty(t, missing.Errors)

	garbage := sv.ValidateInteraction([]byte(`{not json`))
	assert.False(t, garbage.Valid)
}

func TestOnboardingSchemaRequiresThreeInterests(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.True(t, sv.ValidateOnboarding([]byte(`{"user_id":"u1","interests":["a","b","c"]}`)).Valid)
	assert.False(t, sv.ValidateOnboarding([]byte(`{"user_id":"u1","interests":["a","b"]}`)).Valid)
	assert.False(t, sv.ValidateOnboarding([]byte(`{"user_id":"u1","interests":["a","b","c","d"]}`)).Valid)
	assert.False(t, sv.ValidateOnboarding([]byte(`{"user_id":"u1","interests":["a","b",""]}`)).Valid)
}

func TestPostSchema(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.True(t, sv.ValidatePost([]byte(`{"id":"p1","title":"Hello","tags":["x"]}`)).Valid)
	assert.False(t, sv.ValidatePost([]byte(`{"id":"p1"}`)).Valid)
	assert.False(t, sv.ValidatePost([]byte(`{"id":"p1","title":"Hello","surprise":true}`)).Valid)
}
