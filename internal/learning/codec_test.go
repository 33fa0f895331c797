package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcoach/internal/models"
)

func TestEncodeDecodeState(t *testing.T) {
	catalog := DefaultCatalog()
	state := Advance(Advance(InitialState(catalog), "timing"), "market_psychology")

	payload, err := EncodeState(state)
	require.NoError(t, err)

	decoded, ok := DecodeState(payload, catalog)
	assert.True(t, ok)
	assert.Equal(t, state, decoded)
}

func TestDecodeState_CorruptPayloadFallsBack(t *testing.T) {
	catalog := DefaultCatalog()
	payloads := []string{
		"",
		"{not json",
		"null",
		"[1,2,3]",
		`{"timing":{"unlocked":false,"interactions":-2,"mastered":false}}`,
		`{"timing":{"unlocked":false,"interactions":3,"mastered":true}}`,
	}
	for _, payload := range payloads {
		state, ok := DecodeState(payload, catalog)
		assert.False(t, ok, payload)
		assert.Equal(t, InitialState(catalog), state, payload)
	}
}

func TestDecodeState_BackfillsCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	state, ok := DecodeState(`{"timing":{"unlocked":true,"interactions":2,"mastered":false}}`, catalog)

	require.True(t, ok)
	assert.Len(t, state, catalog.Len())
	assert.Equal(t, models.ConceptProgress{Unlocked: true, Interactions: 2}, state["timing"])
	assert.Equal(t, models.ConceptProgress{}, state["psychology"])
}
