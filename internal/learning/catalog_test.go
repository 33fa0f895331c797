package learning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dcoach/internal/errors"
	"dcoach/internal/models"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	assert.Equal(t, 8, catalog.Len())
	assert.Len(t, catalog.ByLevel(1), 3)
	assert.Len(t, catalog.ByLevel(2), 3)
	assert.Len(t, catalog.ByLevel(3), 2)

	concept, ok := catalog.Lookup("psychology")
	require.True(t, ok)
	assert.Equal(t, "Trading Psychology", concept.Name)
	assert.Equal(t, "market_psychology", catalog.NameOf("market_psychology"))
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
concepts:
  - id: spreads
    name: Reading Spreads
    level: 1
    description: Cost of crossing the book
    icon: "💱"
  - id: hedging
    name: Hedging
    level: 3
`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, []models.Concept{{ID: "hedging", Name: "Hedging", Level: 3}}, catalog.ByLevel(3))
	assert.Equal(t, models.LearningState{"spreads": {}, "hedging": {}}, InitialState(catalog))
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := map[string]string{
		"duplicate id": "concepts:\n  - {id: a, name: A, level: 1}\n  - {id: a, name: B, level: 2}\n",
		"bad level":    "concepts:\n  - {id: a, name: A, level: 4}\n",
		"empty id":     "concepts:\n  - {name: A, level: 1}\n",
		"no concepts":  "concepts: []\n",
		"not yaml":     "concepts: [unterminated\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(writeCatalog(t, body))
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCatalog), "got %v", err)
		})
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "Fundamentals", LevelLabel(1))
	assert.Equal(t, "Advanced", LevelLabel(3))
	assert.Equal(t, "Level 7", LevelLabel(7))
}
