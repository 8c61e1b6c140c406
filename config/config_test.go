package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "da.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 1427\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1427, cfg.Port)
	assert.Equal(t, DefaultAdvertisementPeriodSeconds*time.Second, cfg.AdvertisementPeriod)
	assert.True(t, cfg.Scopes.IsDefault())
}

func TestLoadParsesFullFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "da.yaml")
	content := `
addresses: ["10.0.0.1", "10.0.0.2"]
port: 427
scopes: ["eng", "ops"]
attributes: "(site=hq)"
language: "fr"
advertisementPeriod: 60
expiredServicesPurgePeriod: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Addresses)
	assert.True(t, cfg.Scopes.Contains("eng"))
	assert.True(t, cfg.Scopes.Contains("ops"))
	assert.True(t, cfg.Attributes.Has("site"))
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, 60*time.Second, cfg.AdvertisementPeriod)
	assert.Equal(t, 5*time.Second, cfg.ExpiredServicesPurgePeriod)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/da.yaml")
	assert.Error(t, err)
}

func TestExpandAddressesPassesThroughNonWildcard(t *testing.T) {
	out, err := ExpandAddresses([]string{"10.0.0.1", "10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, out)
}
