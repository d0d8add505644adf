package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEnvelopeSeeds(t *testing.T) {
	path := writeSeedFile(t, `
[[envelopes]]
name = "groceries"
category = "living"
allocation = 400.0
rollover = false

[[envelopes]]
name = "allowance"
category = "personal"
allocation = 100.0
rollover = true
is_individual = true
`)

	seeds, err := config.LoadEnvelopeSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	assert.Equal(t, "groceries", seeds[0].Name)
	assert.Equal(t, "living", seeds[0].Category)
	assert.InDelta(t, 400.0, seeds[0].Allocation, 0.0001)
	assert.False(t, seeds[0].IsIndividual)

	assert.Equal(t, "allowance", seeds[1].Name)
	assert.True(t, seeds[1].Rollover)
	assert.True(t, seeds[1].IsIndividual)
}

func TestLoadEnvelopeSeeds_EmptyName(t *testing.T) {
	path := writeSeedFile(t, `
[[envelopes]]
name = "   "
allocation = 10.0
`)

	_, err := config.LoadEnvelopeSeeds(path)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestLoadEnvelopeSeeds_NegativeAllocation(t *testing.T) {
	path := writeSeedFile(t, `
[[envelopes]]
name = "groceries"
allocation = -5.0
`)

	_, err := config.LoadEnvelopeSeeds(path)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestLoadEnvelopeSeeds_MissingFile(t *testing.T) {
	_, err := config.LoadEnvelopeSeeds(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}
