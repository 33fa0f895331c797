// Package learning tracks concept mastery and derives the Trading IQ score.
package learning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "dcoach/internal/errors"
	"dcoach/internal/models"
)

// Catalog is the ordered, read-only list of learnable concepts.
type Catalog struct {
	concepts []models.Concept
	index    map[models.ConceptID]int
}

var levelLabels = map[int]string{
	1: "Fundamentals",
	2: "Intermediate",
	3: "Advanced",
}

// DefaultCatalog returns the built-in concept set.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]models.Concept{
		{ID: "trend_analysis", Name: "Trend Analysis", Level: 1, Description: "Reading market direction before placing a trade", Icon: "📈"},
		{ID: "risk_management", Name: "Risk Management", Level: 1, Description: "Controlling how much you risk per trade", Icon: "🛡️"},
		{ID: "volatility", Name: "Understanding Volatility", Level: 1, Description: "How price movement intensity affects your trades", Icon: "🌊"},
		{ID: "timing", Name: "Entry Timing", Level: 2, Description: "When to enter a trade for the best odds", Icon: "⏱️"},
		{ID: "position_sizing", Name: "Position Sizing", Level: 2, Description: "How much to stake relative to your balance", Icon: "⚖️"},
		{ID: "diversification", Name: "Asset Selection", Level: 2, Description: "Choosing the right market for your strategy", Icon: "🎯"},
		{ID: "psychology", Name: "Trading Psychology", Level: 3, Description: "Managing emotions and avoiding revenge trading", Icon: "🧠"},
		{ID: "entry_signals", Name: "Entry Confirmation", Level: 3, Description: "Using multiple signals to confirm trade direction", Icon: "✅"},
	})
	return c
}

// NewCatalog validates and indexes a concept list. The slice is copied.
func NewCatalog(concepts []models.Concept) (*Catalog, error) {
	c := &Catalog{
		concepts: make([]models.Concept, len(concepts)),
		index:    make(map[models.ConceptID]int, len(concepts)),
	}
	copy(c.concepts, concepts)

	for i, concept := range c.concepts {
		if concept.ID == "" {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidCatalog, "concept %d has an empty id", i)
		}
		if _, dup := c.index[concept.ID]; dup {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidCatalog, "duplicate concept id %q", concept.ID)
		}
		if _, ok := levelLabels[concept.Level]; !ok {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidCatalog, "concept %q has level %d (must be 1, 2 or 3)", concept.ID, concept.Level)
		}
		c.index[concept.ID] = i
	}
	return c, nil
}

type catalogFile struct {
	Concepts []models.Concept `yaml:"concepts"`
}

// LoadCatalog reads a YAML catalog file of the form `concepts: [{id, name, level, description, icon}]`.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCatalog, "parsing %s: %v", path, err)
	}
	if len(file.Concepts) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCatalog, "%s defines no concepts", path)
	}
	return NewCatalog(file.Concepts)
}

// Concepts returns the catalog entries in order.
func (c *Catalog) Concepts() []models.Concept {
	out := make([]models.Concept, len(c.concepts))
	copy(out, c.concepts)
	return out
}

// Len returns the number of concepts.
func (c *Catalog) Len() int {
	return len(c.concepts)
}

// Lookup finds a concept by id.
func (c *Catalog) Lookup(id models.ConceptID) (models.Concept, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Concept{}, false
	}
	return c.concepts[i], true
}

// NameOf returns the display name for id, or the raw id when the catalog has no entry.
func (c *Catalog) NameOf(id models.ConceptID) string {
	if concept, ok := c.Lookup(id); ok && concept.Name != "" {
		return concept.Name
	}
	return string(id)
}

// ByLevel returns the concepts at a difficulty level, in catalog order.
func (c *Catalog) ByLevel(level int) []models.Concept {
	var out []models.Concept
	for _, concept := range c.concepts {
		if concept.Level == level {
			out = append(out, concept)
		}
	}
	return out
}

// Levels returns the difficulty levels in ascending order.
func (c *Catalog) Levels() []int {
	return []int{1, 2, 3}
}

// LevelLabel names a difficulty level.
func LevelLabel(level int) string {
	if label, ok := levelLabels[level]; ok {
		return label
	}
	return fmt.Sprintf("Level %d", level)
}
