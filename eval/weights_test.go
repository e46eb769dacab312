package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.Man = 0
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.King = w.Man - 1
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.Center = -1
	assert.Error(t, w.Validate())
}

func TestLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("man: 120\nking: 400\n"), 0600))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 120, w.Man)
	assert.Equal(t, 400, w.King)
	// Omitted fields keep their defaults.
	assert.Equal(t, DefaultWeights().Center, w.Center)
	assert.Equal(t, DefaultWeights().LoneKingBonus, w.LoneKingBonus)
}

func TestLoadWeightsErrors(t *testing.T) {
	_, err := LoadWeights(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("man: [not a number\n"), 0600))
	_, err = LoadWeights(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("man: -5\n"), 0600))
	_, err = LoadWeights(invalid)
	assert.Error(t, err)
}
