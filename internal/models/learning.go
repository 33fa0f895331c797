package models

// ConceptID identifies a learnable trading concept. Any string is accepted;
// ids outside the catalog are carried through rather than rejected.
type ConceptID string

// Concept is a static catalog entry.
type Concept struct {
	ID          ConceptID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Level       int       `json:"level" yaml:"level"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon" yaml:"icon"`
}

// ConceptProgress is the per-concept learning state.
// Mastered implies Unlocked, and neither flag ever reverts.
type ConceptProgress struct {
	Unlocked     bool `json:"unlocked"`
	Interactions int  `json:"interactions"`
	Mastered     bool `json:"mastered"`
}

// LearningState maps every known concept to its progress.
type LearningState map[ConceptID]ConceptProgress

// Clone returns a shallow copy; ConceptProgress values are copied by value.
func (s LearningState) Clone() LearningState {
	out := make(LearningState, len(s))
	for id, p := range s {
		out[id] = p
	}
	return out
}
