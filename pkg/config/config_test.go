package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "inventree:\n  url: http://localhost:8000\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.InvenTreeURL)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, DatasheetLink, cfg.Datasheets)
	assert.False(t, cfg.Interactive)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
inventree:
  url: https://inventree.example.com
  token: secret
interactive: true
max_results: 5
datasheets: upload
currency: USD
suppliers: [DigiKey, Reichelt]
supplier_settings:
  digikey:
    client_id: abc
    client_secret: xyz
stock:
  location: 7
  amount: 25
`))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.InvenTreeToken)
	assert.True(t, cfg.Interactive)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, DatasheetUpload, cfg.Datasheets)
	assert.Equal(t, []string{"DigiKey", "Reichelt"}, cfg.Suppliers)
	assert.Equal(t, "abc", cfg.SupplierSettings["digikey"]["client_id"])
	assert.Equal(t, 7, cfg.StockLocationID)
	assert.Equal(t, 25.0, cfg.StockAmount)
}

func TestLoadRejectsInvalidDatasheetMode(t *testing.T) {
	_, err := Load(writeConfig(t, "datasheets: attach\n"))
	assert.Error(t, err)
}

func TestLoadRejectsBadMaxResults(t *testing.T) {
	_, err := Load(writeConfig(t, "max_results: 0\n"))
	assert.Error(t, err)
}

func TestCategoriesFileRelativeToConfig(t *testing.T) {
	path := writeConfig(t, "categories_file: cats.yaml\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "cats.yaml"), cfg.CategoriesFile)
}
