package learning

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"dcoach/internal/models"
)

// Feature: dcoach, Property 2: Learning progression is monotonic and immutable
//
// Property: For any sequence of concept interactions (catalog ids and ids the
// catalog does not know), Advance never mutates its input, the Trading IQ never
// decreases and stays in [0, 100], mastered never reverts, learned names contain
// each touched concept exactly once, and the state survives an encode/decode round trip.

var conceptPool = []models.ConceptID{
	"trend_analysis", "risk_management", "volatility", "timing",
	"position_sizing", "diversification", "psychology", "entry_signals",
	"market_psychology", "technical_indicators", "",
}

func interactionsGen() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(conceptPool)-1))
}

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())
	return gopter.NewProperties(parameters)
}

func TestProperty_AdvanceIsMonotonic(t *testing.T) {
	catalog := DefaultCatalog()
	properties := newProperties()

	properties.Property("IQ never decreases and stays within [0, 100]", prop.ForAll(
		func(picks []int) bool {
			state := InitialState(catalog)
			prev := TradingIQ(state)
			for _, i := range picks {
				state = Advance(state, conceptPool[i])
				iq := TradingIQ(state)
				if iq < prev || iq < 0 || iq > 100 {
					return false
				}
				prev = iq
			}
			return true
		},
		interactionsGen(),
	))

	properties.Property("progress follows locked -> unlocked -> mastered", prop.ForAll(
		func(picks []int) bool {
			state := InitialState(catalog)
			counts := make(map[models.ConceptID]int)
			for _, i := range picks {
				id := conceptPool[i]
				before := state[id]
				state = Advance(state, id)
				counts[id]++
				after := state[id]

				if !after.Unlocked || after.Interactions != before.Interactions+1 {
					return false
				}
				if before.Mastered && !after.Mastered {
					return false
				}
				if after.Mastered != (counts[id] >= MasteryThreshold) {
					return false
				}
			}
			return true
		},
		interactionsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_AdvanceDoesNotMutateInput(t *testing.T) {
	catalog := DefaultCatalog()
	properties := newProperties()

	properties.Property("input state is unchanged after Advance", prop.ForAll(
		func(picks []int, next int) bool {
			state := InitialState(catalog)
			for _, i := range picks {
				state = Advance(state, conceptPool[i])
			}
			snapshot := state.Clone()

			Advance(state, conceptPool[next])

			if len(snapshot) != len(state) {
				return false
			}
			for id, p := range snapshot {
				if state[id] != p {
					return false
				}
			}
			return true
		},
		interactionsGen(),
		gen.IntRange(0, len(conceptPool)-1),
	))

	properties.TestingRun(t)
}

func TestProperty_LearnedNamesMatchTouchedConcepts(t *testing.T) {
	catalog := DefaultCatalog()
	properties := newProperties()

	properties.Property("each touched concept is named exactly once", prop.ForAll(
		func(picks []int) bool {
			state := InitialState(catalog)
			touched := make(map[string]bool)
			for _, i := range picks {
				state = Advance(state, conceptPool[i])
				touched[catalog.NameOf(conceptPool[i])] = true
			}

			names := LearnedConceptNames(state, catalog)
			if len(names) != len(touched) {
				return false
			}
			seen := make(map[string]bool)
			for _, name := range names {
				if !touched[name] || seen[name] {
					return false
				}
				seen[name] = true
			}
			return true
		},
		interactionsGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_StateRoundTrip(t *testing.T) {
	catalog := DefaultCatalog()
	properties := newProperties()

	properties.Property("encode then decode reproduces the state", prop.ForAll(
		func(picks []int) bool {
			state := InitialState(catalog)
			for _, i := range picks {
				state = Advance(state, conceptPool[i])
			}

			payload, err := EncodeState(state)
			if err != nil {
				return false
			}
			decoded, ok := DecodeState(payload, catalog)
			if !ok || len(decoded) != len(state) {
				return false
			}
			for id, p := range state {
				if decoded[id] != p {
					return false
				}
			}
			return true
		},
		interactionsGen(),
	))

	properties.Property("corrupt payloads decode to the initial state", prop.ForAll(
		func(garbage string) bool {
			decoded, ok := DecodeState("{"+garbage, catalog)
			if ok {
				return false
			}
			initial := InitialState(catalog)
			if len(decoded) != len(initial) {
				return false
			}
			for id, p := range initial {
				if decoded[id] != p {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
