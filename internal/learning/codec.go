package learning

import (
	"encoding/json"
	"fmt"

	"dcoach/internal/models"
)

// EncodeState serializes a learning state to its persisted JSON form.
func EncodeState(state models.LearningState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encoding learning state: %w", err)
	}
	return string(data), nil
}

// DecodeState restores a persisted learning state. An empty, unparsable or
// inconsistent payload yields InitialState(catalog) and ok=false; it never fails.
// Catalog concepts missing from the payload are added as locked entries and
// ids unknown to the catalog are kept.
func DecodeState(payload string, catalog *Catalog) (state models.LearningState, ok bool) {
	if payload == "" {
		return InitialState(catalog), false
	}

	var decoded models.LearningState
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil || decoded == nil {
		return InitialState(catalog), false
	}
	for _, progress := range decoded {
		if !valid(progress) {
			return InitialState(catalog), false
		}
	}

	for _, concept := range catalog.concepts {
		if _, exists := decoded[concept.ID]; !exists {
			decoded[concept.ID] = models.ConceptProgress{}
		}
	}
	return decoded, true
}

func valid(p models.ConceptProgress) bool {
	if p.Interactions < 0 {
		return false
	}
	if p.Mastered && !p.Unlocked {
		return false
	}
	if p.Unlocked && p.Interactions == 0 {
		return false
	}
	return true
}
