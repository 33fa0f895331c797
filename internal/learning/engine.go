package learning

import (
	"sort"

	"dcoach/internal/models"
)

const (
	// MasteryThreshold is the interaction count at which a concept becomes mastered.
	MasteryThreshold = 3

	unlockedPoints    = 5
	interactionPoints = 3
	masteredPoints    = 10
	maxIQ             = 100
)

// InitialState returns a locked, zero-interaction entry for every catalog concept.
func InitialState(catalog *Catalog) models.LearningState {
	state := make(models.LearningState, catalog.Len())
	for _, concept := range catalog.concepts {
		state[concept.ID] = models.ConceptProgress{}
	}
	return state
}

// Advance records one interaction with id and returns the new state.
// The input state is not modified. Unknown ids are added.
func Advance(state models.LearningState, id models.ConceptID) models.LearningState {
	next := state.Clone()
	current := next[id]
	interactions := current.Interactions + 1
	next[id] = models.ConceptProgress{
		Unlocked:     true,
		Interactions: interactions,
		Mastered:     current.Mastered || interactions >= MasteryThreshold,
	}
	return next
}

// LearnedConceptNames returns the display names of every unlocked concept,
// falling back to the raw id for concepts missing from the catalog.
// Names are ordered by concept id.
func LearnedConceptNames(state models.LearningState, catalog *Catalog) []string {
	ids := make([]models.ConceptID, 0, len(state))
	for id, progress := range state {
		if progress.Unlocked {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = catalog.NameOf(id)
	}
	return names
}

// TradingIQ scores overall progress in [0, 100]. Large states saturate at 100
// and negative interaction counts contribute nothing.
func TradingIQ(state models.LearningState) int {
	iq := 0
	for _, progress := range state {
		if progress.Unlocked {
			iq += unlockedPoints
		}
		if progress.Interactions > 0 {
			if progress.Interactions >= maxIQ/interactionPoints+1 {
				return maxIQ
			}
			iq += progress.Interactions * interactionPoints
		}
		if progress.Mastered {
			iq += masteredPoints
		}
		if iq >= maxIQ {
			return maxIQ
		}
	}
	return iq
}

// ProgressPercent returns how far a concept is toward mastery, capped at 100.
func ProgressPercent(progress models.ConceptProgress) int {
	switch {
	case progress.Interactions <= 0:
		return 0
	case progress.Interactions >= MasteryThreshold:
		return 100
	}
	return progress.Interactions * 100 / MasteryThreshold
}

// MasteredCount returns the number of mastered concepts.
func MasteredCount(state models.LearningState) int {
	n := 0
	for _, progress := range state {
		if progress.Mastered {
			n++
		}
	}
	return n
}
